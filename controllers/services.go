package controllers

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-listing-go/models"
	services "github.com/phillip/event-listing-go/services"
)

type EventService interface {
	Create(ctx context.Context, ev *models.Event) error
	Update(ctx context.Context, id primitive.ObjectID, patch services.EventPatch) (*models.Event, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	List(ctx context.Context, filter services.EventFilter) ([]models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
}

type BookingService interface {
	Create(ctx context.Context, b *models.Booking) error
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error)
	CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error)
}

// ImageStore holds uploaded event images. A nil ImageStore disables uploads.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}
