package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/phillip/event-listing-go/models"
)

type BookingStore interface {
	Save(ctx context.Context, b *models.Booking) error
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error)
	CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error)
}

// BookingNotifier is told about every stored booking.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, b *models.Booking, ev *models.Event) error
}

type BookingService struct {
	events   EventStore
	bookings BookingStore
	notifier BookingNotifier // optional
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingService(events EventStore, bookings BookingStore, notifier BookingNotifier, logger *zap.Logger) *BookingService {
	return &BookingService{
		events:   events,
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create validates b, checks that its event exists and stores it.
//
// The existence check and the insert are not atomic: an event deleted in
// between leaves an orphaned booking.
func (s *BookingService) Create(ctx context.Context, b *models.Booking) error {
	if err := PrepareBooking(b); err != nil {
		return err
	}

	exists, err := s.events.Exists(ctx, b.EventID)
	if err != nil {
		return err
	}
	if !exists {
		return &ReferenceError{Field: "eventId", ID: b.EventID.Hex()}
	}

	now := s.now().UTC()
	b.ID = primitive.NilObjectID
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := s.bookings.Save(ctx, b); err != nil {
		return err
	}

	log := s.logger.With(
		zap.String("booking_id", b.ID.Hex()),
		zap.String("event_id", b.EventID.Hex()),
	)
	log.Info("booking created")

	if s.notifier != nil {
		s.notify(ctx, log, b)
	}
	return nil
}

// notify is best effort; a failure never undoes the booking.
func (s *BookingService) notify(ctx context.Context, log *zap.Logger, b *models.Booking) {
	ev, err := s.events.FindByID(ctx, b.EventID)
	if err != nil {
		log.Warn("booking confirmation skipped", zap.Error(err))
		return
	}
	if err := s.notifier.BookingConfirmed(ctx, b, ev); err != nil {
		log.Warn("booking confirmation failed", zap.Error(err))
	}
}

func (s *BookingService) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.bookings.ListByEvent(ctx, eventID)
}

func (s *BookingService) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.bookings.CountByEvent(ctx, eventID)
}
