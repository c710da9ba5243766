package ports

import "context"

// SortField orders Find results by one document field.
type SortField struct {
	Field      string
	Descending bool
}

// FindOptions carries the optional sort and window of a Find call.
// A zero Limit means no limit.
type FindOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

// Filter is an equality filter on document fields. An empty Filter matches
// every document.
type Filter map[string]any

// RecordStore is the boundary to one document collection.
// Implementations return *domain.StorageError on every failure and never
// expose store-internal identifiers in the returned documents.
type RecordStore[T any] interface {
	Insert(ctx context.Context, doc T) error
	Find(ctx context.Context, opts FindOptions) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}
