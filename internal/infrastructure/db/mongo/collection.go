package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
)

// hideInternalID drops the store-assigned _id from every read.
var hideInternalID = bson.D{{Key: "_id", Value: 0}}

// Collection implements ports.RecordStore[T] over one MongoDB collection.
type Collection[T any] struct {
	col     *mongo.Collection
	timeout time.Duration
}

// NewCollection binds name in db. Every call runs under timeout.
func NewCollection[T any](db *mongo.Database, name string, timeout time.Duration) *Collection[T] {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Collection[T]{col: db.Collection(name), timeout: timeout}
}

// Insert stores doc as a new document.
func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.col.InsertOne(ctx, doc); err != nil {
		return c.fail("insert", err)
	}
	return nil
}

// Find returns every document, sorted and windowed by opts, without _id.
func (c *Collection[T]) Find(ctx context.Context, opts ports.FindOptions) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	findOpts := options.Find().SetProjection(hideInternalID)
	if len(opts.Sort) > 0 {
		sort := make(bson.D, 0, len(opts.Sort))
		for _, s := range opts.Sort {
			dir := 1
			if s.Descending {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		findOpts.SetSort(sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cur, err := c.col.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, c.fail("find", err)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, c.fail("find", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Count returns the number of documents equal to filter on every key.
func (c *Collection[T]) Count(ctx context.Context, filter ports.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	n, err := c.col.CountDocuments(ctx, query)
	if err != nil {
		return 0, c.fail("count", err)
	}
	return n, nil
}

func (c *Collection[T]) fail(op string, err error) error {
	return &domain.StorageError{Op: op, Collection: c.col.Name(), Err: err}
}
