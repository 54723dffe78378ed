package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/event-listing-go/models"
)

var (
	_ EventStore      = (*fakeEventStore)(nil)
	_ BookingStore    = (*fakeBookingStore)(nil)
	_ BookingNotifier = (*fakeNotifier)(nil)
)

// fakeEventStore is an in-memory EventStore with a unique slug index.
type fakeEventStore struct {
	byID  map[primitive.ObjectID]models.Event
	saves int
	err   error // returned by every call when set
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{byID: make(map[primitive.ObjectID]models.Event)}
}

func (f *fakeEventStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeEventStore) Save(ctx context.Context, ev *models.Event) error {
	if f.err != nil {
		return f.err
	}
	for id, other := range f.byID {
		if id != ev.ID && other.Slug == ev.Slug {
			return &ConflictError{Field: "slug", Value: ev.Slug}
		}
	}
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	} else if _, ok := f.byID[ev.ID]; !ok {
		return ErrNotFound
	}
	f.saves++
	f.byID[ev.ID] = *ev
	return nil
}

func (f *fakeEventStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ev, nil
}

func (f *fakeEventStore) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	for _, ev := range f.byID {
		if ev.Slug == slug {
			return &ev, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeEventStore) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	var out []models.Event
	for _, ev := range f.byID {
		if filter.Mode != "" && ev.Mode != filter.Mode {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(ev.Title), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeEventStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeBookingStore struct {
	saved []models.Booking
	err   error
}

func (f *fakeBookingStore) Save(ctx context.Context, b *models.Booking) error {
	if f.err != nil {
		return f.err
	}
	b.ID = primitive.NewObjectID()
	f.saved = append(f.saved, *b)
	return nil
}

func (f *fakeBookingStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.saved {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	out, _ := f.ListByEvent(ctx, eventID)
	return int64(len(out)), nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) BookingConfirmed(ctx context.Context, b *models.Booking, ev *models.Event) error {
	f.sent = append(f.sent, b.Email+"|"+ev.Slug)
	return f.err
}

func fixedClock() time.Time {
	return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
}

func validEvent(title string) *models.Event {
	return &models.Event{
		Title:       title,
		Description: "A talk about things",
		Overview:    "Overview",
		Image:       "https://res.cloudinary.com/demo/image/upload/v1/events/talk.png",
		Venue:       "Main Hall",
		Location:    "Nairobi",
		Date:        "2025-03-01",
		Time:        "2:05 PM",
		Mode:        "offline",
		Audience:    "Developers",
		Agenda:      []string{"Intro", "Talk"},
		Organizer:   "Go Nairobi",
		Tags:        []string{"go", "backend"},
	}
}
