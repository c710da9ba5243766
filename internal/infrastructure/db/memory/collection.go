// Package memory is a process-local implementation of ports.RecordStore.
// Documents are kept BSON-encoded so reads return copies with the same
// field semantics and time precision as the MongoDB adapter.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
)

// Collection implements ports.RecordStore[T] in memory.
type Collection[T any] struct {
	name string

	mu   sync.RWMutex
	docs []bson.Raw
}

// NewCollection returns an empty collection.
func NewCollection[T any](name string) *Collection[T] {
	return &Collection[T]{name: name}
}

// Insert appends doc.
func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	if err := ctx.Err(); err != nil {
		return c.fail("insert", err)
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return c.fail("insert", err)
	}

	c.mu.Lock()
	c.docs = append(c.docs, raw)
	c.mu.Unlock()
	return nil
}

// Find returns documents ordered by opts.Sort (stable, so ties keep insertion
// order) and windowed by opts.Skip and opts.Limit.
func (c *Collection[T]) Find(ctx context.Context, opts ports.FindOptions) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, c.fail("find", err)
	}

	c.mu.RLock()
	docs := slices.Clone(c.docs)
	c.mu.RUnlock()

	if len(opts.Sort) > 0 {
		slices.SortStableFunc(docs, func(a, b bson.Raw) int {
			return compareDocs(a, b, opts.Sort)
		})
	}

	docs = window(docs, opts.Skip, opts.Limit)
	out := make([]T, 0, len(docs))
	for _, raw := range docs {
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, c.fail("find", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Count returns the number of documents whose fields equal every filter entry.
func (c *Collection[T]) Count(ctx context.Context, filter ports.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, c.fail("count", err)
	}

	want := make(map[string]bson.RawValue, len(filter))
	for k, v := range filter {
		t, data, err := bson.MarshalValue(v)
		if err != nil {
			return 0, c.fail("count", err)
		}
		want[k] = bson.RawValue{Type: t, Value: data}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, raw := range c.docs {
		if matches(raw, want) {
			n++
		}
	}
	return n, nil
}

// Ping always succeeds; it lets the collection stand in for a readiness check.
func (c *Collection[T]) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (c *Collection[T]) fail(op string, err error) error {
	return &domain.StorageError{Op: op, Collection: c.name, Err: err}
}

func window(docs []bson.Raw, skip, limit int64) []bson.Raw {
	if skip >= int64(len(docs)) {
		return nil
	}
	if skip > 0 {
		docs = docs[skip:]
	}
	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

func matches(doc bson.Raw, want map[string]bson.RawValue) bool {
	for k, v := range want {
		if !doc.Lookup(k).Equal(v) {
			return false
		}
	}
	return true
}

func compareDocs(a, b bson.Raw, sort []ports.SortField) int {
	for _, s := range sort {
		c := compareValues(a.Lookup(s.Field), b.Lookup(s.Field))
		if c == 0 {
			continue
		}
		if s.Descending {
			return -c
		}
		return c
	}
	return 0
}

// compareValues orders missing values first, then by value for the BSON
// types the domain uses. Mixed or unsupported types compare equal.
func compareValues(a, b bson.RawValue) int {
	switch {
	case a.Type == 0 || b.Type == 0:
		return cmp.Compare(a.Type, b.Type)
	case a.Type == bsontype.DateTime && b.Type == bsontype.DateTime:
		return cmp.Compare(a.DateTime(), b.DateTime())
	case a.Type == bsontype.String && b.Type == bsontype.String:
		return strings.Compare(a.StringValue(), b.StringValue())
	}

	af, aok := number(a)
	bf, bok := number(b)
	if aok && bok {
		return cmp.Compare(af, bf)
	}
	return 0
}

func number(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bsontype.Int32:
		return float64(v.Int32()), true
	case bsontype.Int64:
		return float64(v.Int64()), true
	case bsontype.Double:
		return v.Double(), true
	}
	return 0, false
}
