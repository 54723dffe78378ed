package services

import (
	"regexp"
	"strings"

	"github.com/phillip/event-listing-go/models"
)

// Event field names as persisted; used in change sets and error reports.
const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldOverview    = "overview"
	FieldImage       = "image"
	FieldVenue       = "venue"
	FieldLocation    = "location"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldMode        = "mode"
	FieldAudience    = "audience"
	FieldAgenda      = "agenda"
	FieldOrganizer   = "organizer"
	FieldTags        = "tags"
)

// Changes is the set of Event fields touched by a create or update.
type Changes map[string]bool

// AllFields marks every field as changed, which is what a create does.
func AllFields() Changes {
	return Changes{
		FieldTitle: true, FieldDescription: true, FieldOverview: true,
		FieldImage: true, FieldVenue: true, FieldLocation: true,
		FieldDate: true, FieldTime: true, FieldMode: true,
		FieldAudience: true, FieldAgenda: true, FieldOrganizer: true,
		FieldTags: true,
	}
}

type stringField struct {
	name  string
	value string
}

type listField struct {
	name  string
	value []string
}

func eventStrings(ev *models.Event) []stringField {
	return []stringField{
		{FieldTitle, ev.Title},
		{FieldDescription, ev.Description},
		{FieldOverview, ev.Overview},
		{FieldImage, ev.Image},
		{FieldVenue, ev.Venue},
		{FieldLocation, ev.Location},
		{FieldDate, ev.Date},
		{FieldTime, ev.Time},
		{FieldMode, ev.Mode},
		{FieldAudience, ev.Audience},
		{FieldOrganizer, ev.Organizer},
	}
}

// PrepareEvent validates ev and normalises slug, date and time in place.
// The slug is only regenerated when the title changed or no slug is set yet,
// so existing URLs stay stable.
func PrepareEvent(ev *models.Event, changed Changes) error {
	for _, f := range eventStrings(ev) {
		if trimSpace(f.value) == "" {
			return invalid(f.name, "field must be a non-empty string")
		}
	}
	for _, f := range []listField{{FieldAgenda, ev.Agenda}, {FieldTags, ev.Tags}} {
		if !nonEmptyStrings(f.value) {
			return invalid(f.name, "field must be a non-empty array of non-empty strings")
		}
	}

	if changed[FieldTitle] || ev.Slug == "" {
		slug := Slugify(ev.Title)
		if slug == "" {
			return invalid(FieldSlug, "unable to generate slug from title")
		}
		ev.Slug = slug
	}

	if changed[FieldDate] {
		date, err := NormalizeDate(ev.Date)
		if err != nil {
			return err
		}
		ev.Date = date
	}

	if changed[FieldTime] {
		t, err := NormalizeTime(ev.Time)
		if err != nil {
			return err
		}
		ev.Time = t
	}

	return nil
}

func nonEmptyStrings(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if trimSpace(v) == "" {
			return false
		}
	}
	return true
}

var emailPattern = regexp.MustCompile(`^[^@` + whitespace + `]+@[^@` + whitespace + `]+\.[^@` + whitespace + `]+$`)

// PrepareBooking trims and lowercases the email in place and checks its shape.
// The event reference is left to the store check, so a zero id surfaces as
// *ReferenceError like any other unknown event.
func PrepareBooking(b *models.Booking) error {
	b.Email = strings.ToLower(trimSpace(b.Email))
	if b.Email == "" {
		return invalid("email", "email is required")
	}
	if !emailPattern.MatchString(b.Email) {
		return invalid("email", "invalid email address")
	}
	return nil
}
