package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
)

const ns = "leads_test.leads"

func leadDoc(id string, at time.Time) bson.D {
	return bson.D{
		{Key: "id", Value: id},
		{Key: "name", Value: "Lead " + id},
		{Key: "email", Value: id + "@example.com"},
		{Key: "company", Value: "Acme"},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(at)},
	}
}

func TestCollection_Insert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		c := NewCollection[domain.Lead](mt.DB, domain.LeadsCollection, time.Second)

		err := c.Insert(context.Background(), domain.Lead{ID: "1", Name: "Ada", Email: "ada@example.com"})
		require.NoError(mt, err)
	})

	mt.Run("duplicate key is a storage error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		c := NewCollection[domain.Lead](mt.DB, domain.LeadsCollection, time.Second)

		err := c.Insert(context.Background(), domain.Lead{ID: "1"})
		var se *domain.StorageError
		require.True(mt, errors.As(err, &se))
		assert.Equal(mt, "insert", se.Op)
		assert.Equal(mt, domain.LeadsCollection, se.Collection)
		assert.True(mt, mongo.IsDuplicateKeyError(err))
		assert.Equal(mt, domain.KindStorage, domain.KindOf(err))
	})
}

func TestCollection_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("decodes documents and sends window", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			leadDoc("b", base.Add(time.Minute)),
			leadDoc("a", base),
		))
		c := NewCollection[domain.Lead](mt.DB, domain.LeadsCollection, time.Second)

		got, err := c.Find(context.Background(), ports.FindOptions{
			Sort:  []ports.SortField{{Field: domain.LeadFieldCreatedAt, Descending: true}},
			Skip:  5,
			Limit: 2,
		})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "b", got[0].ID)
		assert.Equal(mt, "Acme", *got[0].Company)
		assert.Nil(mt, got[0].Phone)
		assert.True(mt, base.Equal(got[1].CreatedAt))

		cmd := mt.GetStartedEvent().Command
		assert.EqualValues(mt, 5, cmd.Lookup("skip").AsInt64())
		assert.EqualValues(mt, 2, cmd.Lookup("limit").AsInt64())
		assert.EqualValues(mt, 0, cmd.Lookup("projection", "_id").AsInt64())
		assert.EqualValues(mt, -1, cmd.Lookup("sort", domain.LeadFieldCreatedAt).AsInt64())
	})

	mt.Run("empty result is an empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		c := NewCollection[domain.Lead](mt.DB, domain.LeadsCollection, time.Second)

		got, err := c.Find(context.Background(), ports.FindOptions{})
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("command error is a storage error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad query",
		}))
		c := NewCollection[domain.Lead](mt.DB, domain.LeadsCollection, time.Second)

		_, err := c.Find(context.Background(), ports.FindOptions{})
		var se *domain.StorageError
		require.True(mt, errors.As(err, &se))
		assert.Equal(mt, "find", se.Op)
	})
}

func TestCollection_Count(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns n", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int64(42)}},
		))
		c := NewCollection[domain.Lead](mt.DB, domain.LeadsCollection, time.Second)

		n, err := c.Count(context.Background(), ports.Filter{})
		require.NoError(mt, err)
		assert.EqualValues(mt, 42, n)
	})

	mt.Run("no matches", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		c := NewCollection[domain.StatusCheck](mt.DB, domain.StatusChecksCollection, time.Second)

		n, err := c.Count(context.Background(), ports.Filter{"client_name": "nobody"})
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})

	mt.Run("error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad pipeline",
		}))
		c := NewCollection[domain.Lead](mt.DB, domain.LeadsCollection, time.Second)

		_, err := c.Count(context.Background(), ports.Filter{})
		assert.Equal(mt, domain.KindStorage, domain.KindOf(err))
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates every collection's indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})

	mt.Run("propagates failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "conflict",
		}))
		err := EnsureIndexes(context.Background(), mt.DB)
		assert.ErrorContains(mt, err, "ensure indexes on")
	})
}

func TestIndexSpecs(t *testing.T) {
	specs := indexSpecs()
	require.Contains(t, specs, domain.LeadsCollection)
	require.Contains(t, specs, domain.StatusChecksCollection)
	assert.Len(t, specs[domain.LeadsCollection], 2)
	assert.True(t, *specs[domain.LeadsCollection][0].Options.Unique)
}
