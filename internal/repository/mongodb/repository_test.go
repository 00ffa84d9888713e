package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockRepository(mt *mtest.T) *MongoDBRepository {
	return &MongoDBRepository{
		client:   mt.Client,
		dbName:   mt.DB.Name(),
		collName: mt.Coll.Name(),
		now:      func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) },
	}
}

func namespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}

func TestMongoDBRepository_Contract(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get existing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, namespace(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "farms"},
			{Key: "payload", Value: `{"farms":[]}`},
		}))

		got, ok, err := newMockRepository(mt).GetItem(context.Background(), "farms")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"farms":[]}`, got)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		got, ok, err := newMockRepository(mt).GetItem(context.Background(), "farms")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, got)
	})

	mt.Run("set upserts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "farms"}}}},
		))

		assert.NoError(t, newMockRepository(mt).SetItem(context.Background(), "farms", `{"farms":[]}`))
	})

	mt.Run("remove missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.NoError(t, newMockRepository(mt).RemoveItem(context.Background(), "never-set"))
	})

	mt.Run("server error is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		err := newMockRepository(mt).SetItem(context.Background(), "farms", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upsert state farms")
	})
}
