package repository

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/event-listing-go/models"
	"github.com/phillip/event-listing-go/services"
)

const (
	EventsCollection   = "events"
	BookingsCollection = "bookings"
)

type EventRepository struct {
	col *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(EventsCollection)}
}

func (r *EventRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := r.col.FindOne(ctx, bson.M{"_id": id}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, &services.StoreError{Op: "exists event", Err: err}
	}
	return true, nil
}

// Save inserts ev when it has no id yet and replaces the stored document
// otherwise. The unique slug index turns collisions into *services.ConflictError.
func (r *EventRepository) Save(ctx context.Context, ev *models.Event) error {
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
		if _, err := r.col.InsertOne(ctx, ev); err != nil {
			ev.ID = primitive.NilObjectID
			return saveError("insert event", ev, err)
		}
		return nil
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": ev.ID}, ev)
	if err != nil {
		return saveError("replace event", ev, err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func saveError(op string, ev *models.Event, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return &services.ConflictError{Field: "slug", Value: ev.Slug}
	}
	return &services.StoreError{Op: op, Err: err}
}

func (r *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *EventRepository) findOne(ctx context.Context, filter bson.M) (*models.Event, error) {
	var ev models.Event
	err := r.col.FindOne(ctx, filter).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, &services.StoreError{Op: "find event", Err: err}
	}
	return &ev, nil
}

// List returns events ordered by date and time, soonest first.
func (r *EventRepository) List(ctx context.Context, f services.EventFilter) ([]models.Event, error) {
	filter := bson.M{}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.Mode != "" {
		filter["mode"] = f.Mode
	}
	if f.Query != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Query), "$options": "i"}
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, &services.StoreError{Op: "list events", Err: err}
	}

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, &services.StoreError{Op: "decode events", Err: err}
	}
	return events, nil
}

func (r *EventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return &services.StoreError{Op: "delete event", Err: err}
	}
	if res.DeletedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}
