package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/event-listing-go/models"
	"github.com/phillip/event-listing-go/services"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(BookingsCollection)}
}

func (r *BookingRepository) Save(ctx context.Context, b *models.Booking) error {
	b.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		b.ID = primitive.NilObjectID
		return &services.StoreError{Op: "insert booking", Err: err}
	}
	return nil
}

// ListByEvent returns the bookings of one event, newest first.
func (r *BookingRepository) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, &services.StoreError{Op: "list bookings", Err: err}
	}

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, &services.StoreError{Op: "decode bookings", Err: err}
	}
	return bookings, nil
}

func (r *BookingRepository) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"eventId": eventID})
	if err != nil {
		return 0, &services.StoreError{Op: "count bookings", Err: err}
	}
	return n, nil
}
