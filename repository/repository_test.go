package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/phillip/event-listing-go/models"
	"github.com/phillip/event-listing-go/services"
)

func newMock(t *testing.T) *mtest.T {
	t.Helper()
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// toDoc round-trips v through BSON so mock cursors return what the driver
// would have written.
func toDoc(t *testing.T, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func ns(mt *mtest.T, collection string) string {
	return mt.DB.Name() + "." + collection
}

func sampleEvent() models.Event {
	now := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	return models.Event{
		ID:          primitive.NewObjectID(),
		Title:       "Go Meetup",
		Slug:        "go-meetup",
		Description: "Monthly meetup",
		Overview:    "Talks and pizza",
		Image:       "https://res.cloudinary.com/demo/image/upload/v1/events/meetup.png",
		Venue:       "iHub",
		Location:    "Nairobi",
		Date:        "2025-03-01T00:00:00.000Z",
		Time:        "18:00",
		Mode:        "offline",
		Audience:    "Developers",
		Agenda:      []string{"Welcome", "Talks"},
		Organizer:   "Go Nairobi",
		Tags:        []string{"go"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func duplicateKey() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: events index: slug_unique",
	})
}

func TestEventRepositorySave(t *testing.T) {
	mt := newMock(t)

	mt.Run("insert assigns id", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		ev := sampleEvent()
		ev.ID = primitive.NilObjectID

		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.Save(context.Background(), &ev))
		assert.False(mt, ev.ID.IsZero())
	})

	mt.Run("insert duplicate slug is a conflict", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		ev := sampleEvent()
		ev.ID = primitive.NilObjectID

		mt.AddMockResponses(duplicateKey())

		err := repo.Save(context.Background(), &ev)
		var conflict *services.ConflictError
		require.ErrorAs(mt, err, &conflict)
		assert.Equal(mt, "slug", conflict.Field)
		assert.Equal(mt, "go-meetup", conflict.Value)
		assert.True(mt, ev.ID.IsZero())
	})

	mt.Run("replace existing", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		ev := sampleEvent()

		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 1},
			{Key: "nModified", Value: 1},
		})

		require.NoError(mt, repo.Save(context.Background(), &ev))
	})

	mt.Run("replace missing", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		ev := sampleEvent()

		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 0},
			{Key: "nModified", Value: 0},
		})

		require.ErrorIs(mt, repo.Save(context.Background(), &ev), services.ErrNotFound)
	})

	mt.Run("replace duplicate slug", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		ev := sampleEvent()

		mt.AddMockResponses(duplicateKey())

		var conflict *services.ConflictError
		require.ErrorAs(mt, repo.Save(context.Background(), &ev), &conflict)
	})

	mt.Run("other failures are store errors", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		ev := sampleEvent()
		ev.ID = primitive.NilObjectID

		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    8000,
			Name:    "AtlasError",
			Message: "quota exceeded",
		}))

		var serr *services.StoreError
		require.ErrorAs(mt, repo.Save(context.Background(), &ev), &serr)
		assert.Equal(mt, "insert event", serr.Op)
	})
}

func TestEventRepositoryExists(t *testing.T) {
	mt := newMock(t)

	mt.Run("found", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, EventsCollection), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: id}}))

		ok, err := repo.Exists(context.Background(), id)
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, EventsCollection), mtest.FirstBatch))

		ok, err := repo.Exists(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestEventRepositoryFind(t *testing.T) {
	mt := newMock(t)

	mt.Run("by slug", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		ev := sampleEvent()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, EventsCollection), mtest.FirstBatch, toDoc(mt.T, ev)))

		got, err := repo.FindBySlug(context.Background(), "go-meetup")
		require.NoError(mt, err)
		assert.Equal(mt, ev.ID, got.ID)
		assert.Equal(mt, ev.Agenda, got.Agenda)
		assert.Equal(mt, "18:00", got.Time)
	})

	mt.Run("by id not found", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, EventsCollection), mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID())
		require.ErrorIs(mt, err, services.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		first, second := sampleEvent(), sampleEvent()
		second.Slug = "go-meetup-april"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, EventsCollection), mtest.FirstBatch,
			toDoc(mt.T, first), toDoc(mt.T, second)))

		got, err := repo.List(context.Background(), services.EventFilter{Tag: "go", Query: "meetup (go)"})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "go-meetup-april", got[1].Slug)
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, EventsCollection), mtest.FirstBatch))

		got, err := repo.List(context.Background(), services.EventFilter{})
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})
}

func TestEventRepositoryDelete(t *testing.T) {
	mt := newMock(t)

	mt.Run("deleted", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})

		require.NoError(mt, repo.Delete(context.Background(), primitive.NewObjectID()))
	})

	mt.Run("nothing deleted", func(mt *mtest.T) {
		repo := NewEventRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})

		require.ErrorIs(mt, repo.Delete(context.Background(), primitive.NewObjectID()), services.ErrNotFound)
	})
}

func TestBookingRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("save", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)
		b := models.Booking{EventID: primitive.NewObjectID(), Email: "jane@example.com"}

		mt.AddMockResponses(mtest.CreateSuccessResponse())

		require.NoError(mt, repo.Save(context.Background(), &b))
		assert.False(mt, b.ID.IsZero())
	})

	mt.Run("list by event", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)
		eventID := primitive.NewObjectID()
		b := models.Booking{
			ID:        primitive.NewObjectID(),
			EventID:   eventID,
			Email:     "jane@example.com",
			CreatedAt: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, BookingsCollection), mtest.FirstBatch, toDoc(mt.T, b)))

		got, err := repo.ListByEvent(context.Background(), eventID)
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, "jane@example.com", got[0].Email)
		assert.Equal(mt, eventID, got[0].EventID)
	})

	mt.Run("count by event", func(mt *mtest.T) {
		repo := NewBookingRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, BookingsCollection), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))

		n, err := repo.CountByEvent(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := newMock(t)

	mt.Run("creates both collections' indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})

	mt.Run("surfaces failures", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index exists with different options",
		}))

		require.Error(mt, EnsureIndexes(context.Background(), mt.DB))
	})
}
