package services

import (
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/phillip/event-listing-go/models"
)

// EventFilter narrows an event listing. Empty fields do not filter.
type EventFilter struct {
	Tag   string
	Mode  string
	Query string // case-insensitive title search
}

// EventStore persists events. Save inserts when ev.ID is zero and replaces
// otherwise; a duplicate slug must surface as *ConflictError.
type EventStore interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Save(ctx context.Context, ev *models.Event) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	List(ctx context.Context, filter EventFilter) ([]models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// EventPatch carries the fields of a partial update. Nil means untouched.
type EventPatch struct {
	Title       *string
	Description *string
	Overview    *string
	Image       *string
	Venue       *string
	Location    *string
	Date        *string
	Time        *string
	Mode        *string
	Audience    *string
	Agenda      []string
	Organizer   *string
	Tags        []string
}

type EventService struct {
	store  EventStore
	logger *zap.Logger
	now    func() time.Time
}

func NewEventService(store EventStore, logger *zap.Logger) *EventService {
	return &EventService{store: store, logger: logger, now: time.Now}
}

// Create runs the full pipeline on ev and inserts it.
func (s *EventService) Create(ctx context.Context, ev *models.Event) error {
	ev.ID = primitive.NilObjectID
	if err := PrepareEvent(ev, AllFields()); err != nil {
		return err
	}

	now := s.now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if err := s.store.Save(ctx, ev); err != nil {
		return err
	}
	s.logger.Info("event created",
		zap.String("event_id", ev.ID.Hex()),
		zap.String("slug", ev.Slug),
	)
	return nil
}

// Update applies patch to the stored event. Only fields whose value actually
// differs count as changed, so an untouched title keeps its slug.
func (s *EventService) Update(ctx context.Context, id primitive.ObjectID, patch EventPatch) (*models.Event, error) {
	ev, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := Changes{}
	setString := func(field string, dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed[field] = true
		}
	}
	setList := func(field string, dst *[]string, src []string) {
		if src != nil && !slices.Equal(*dst, src) {
			*dst = src
			changed[field] = true
		}
	}

	setString(FieldTitle, &ev.Title, patch.Title)
	setString(FieldDescription, &ev.Description, patch.Description)
	setString(FieldOverview, &ev.Overview, patch.Overview)
	setString(FieldImage, &ev.Image, patch.Image)
	setString(FieldVenue, &ev.Venue, patch.Venue)
	setString(FieldLocation, &ev.Location, patch.Location)
	setString(FieldDate, &ev.Date, patch.Date)
	setString(FieldTime, &ev.Time, patch.Time)
	setString(FieldMode, &ev.Mode, patch.Mode)
	setString(FieldAudience, &ev.Audience, patch.Audience)
	setList(FieldAgenda, &ev.Agenda, patch.Agenda)
	setString(FieldOrganizer, &ev.Organizer, patch.Organizer)
	setList(FieldTags, &ev.Tags, patch.Tags)

	if len(changed) == 0 {
		return ev, nil
	}

	if err := PrepareEvent(ev, changed); err != nil {
		return nil, err
	}
	ev.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, ev); err != nil {
		return nil, err
	}
	s.logger.Info("event updated",
		zap.String("event_id", ev.ID.Hex()),
		zap.Int("changed_fields", len(changed)),
	)
	return ev, nil
}

func (s *EventService) Get(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return s.store.FindByID(ctx, id)
}

func (s *EventService) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return s.store.FindBySlug(ctx, slug)
}

func (s *EventService) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	return s.store.List(ctx, filter)
}

// Delete removes the event and returns what was stored so callers can clean
// up attached assets.
func (s *EventService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	ev, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info("event deleted", zap.String("event_id", id.Hex()))
	return ev, nil
}
