package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	logging "github.com/phillip/event-listing-go/logging"
	middleware "github.com/phillip/event-listing-go/middleware"
	models "github.com/phillip/event-listing-go/models"
	services "github.com/phillip/event-listing-go/services"
	utils "github.com/phillip/event-listing-go/utils"
)

// eventInput accepts JSON or form data. Agenda and tags may be repeated form
// fields or a single JSON array string.
type eventInput struct {
	Title       string   `form:"title" json:"title"`
	Description string   `form:"description" json:"description"`
	Overview    string   `form:"overview" json:"overview"`
	Image       string   `form:"image" json:"image"`
	Venue       string   `form:"venue" json:"venue"`
	Location    string   `form:"location" json:"location"`
	Date        string   `form:"date" json:"date"`
	Time        string   `form:"time" json:"time"`
	Mode        string   `form:"mode" json:"mode"`
	Audience    string   `form:"audience" json:"audience"`
	Agenda      []string `form:"agenda" json:"agenda"`
	Organizer   string   `form:"organizer" json:"organizer"`
	Tags        []string `form:"tags" json:"tags"`
}

type eventPatchInput struct {
	Title       *string  `form:"title" json:"title"`
	Description *string  `form:"description" json:"description"`
	Overview    *string  `form:"overview" json:"overview"`
	Image       *string  `form:"image" json:"image"`
	Venue       *string  `form:"venue" json:"venue"`
	Location    *string  `form:"location" json:"location"`
	Date        *string  `form:"date" json:"date"`
	Time        *string  `form:"time" json:"time"`
	Mode        *string  `form:"mode" json:"mode"`
	Audience    *string  `form:"audience" json:"audience"`
	Agenda      []string `form:"agenda" json:"agenda"`
	Organizer   *string  `form:"organizer" json:"organizer"`
	Tags        []string `form:"tags" json:"tags"`
}

// expandList unpacks a single JSON array value, as sent by browser forms.
// JSON bodies already carry real arrays and are returned untouched.
func expandList(c *gin.Context, field string, values []string) ([]string, error) {
	if !isFormRequest(c) || len(values) != 1 || !strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		return values, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(values[0]), &out); err != nil {
		return nil, &services.ValidationError{Field: field, Message: "expected a JSON array of strings"}
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func isFormRequest(c *gin.Context) bool {
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return true
	}
	return false
}

// uploadImage stores an "image" file part when one was sent. ok is false when
// a response has already been written.
func uploadImage(c *gin.Context, images ImageStore) (url string, ok bool) {
	fileHeader, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return "", false
	}
	if images == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image uploads are not enabled", "field": "image"})
		return "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open file", "field": "image"})
		return "", false
	}
	defer file.Close()

	url, err = images.Upload(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("image upload failed",
			zap.String("file", fileHeader.Filename), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed", "file": fileHeader.Filename})
		return "", false
	}
	return url, true
}

// discardImage removes an image we uploaded earlier. URLs that did not come
// from the image store are left alone.
func discardImage(c *gin.Context, images ImageStore, url string) {
	if images == nil || url == "" {
		return
	}
	if _, err := utils.ExtractPublicID(url); err != nil {
		return
	}
	if err := images.Delete(c.Request.Context(), url); err != nil {
		logging.FromContext(c.Request.Context()).Warn("image cleanup failed",
			zap.String("image", url), zap.Error(err))
	}
}

func parseEventID(c *gin.Context) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return primitive.NilObjectID, false
	}
	return oid, true
}

// notModified sets the validators and answers 304 when the client copy is
// current. The 304 repeats the validators.
func notModified(c *gin.Context, etag string, lastModified time.Time) bool {
	c.Header("ETag", etag)
	if !lastModified.IsZero() {
		c.Header("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
	}
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// ---------------- CREATE ----------------
func CreateEvent(svc EventService, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input eventInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		agenda, err := expandList(c, services.FieldAgenda, input.Agenda)
		if err != nil {
			respondError(c, err)
			return
		}
		tags, err := expandList(c, services.FieldTags, input.Tags)
		if err != nil {
			respondError(c, err)
			return
		}

		uploaded, ok := uploadImage(c, images)
		if !ok {
			return
		}
		image := input.Image
		if uploaded != "" {
			image = uploaded
		}

		event := models.Event{
			OwnerID:     c.GetString(middleware.ContextUserID),
			Title:       input.Title,
			Description: input.Description,
			Overview:    input.Overview,
			Image:       image,
			Venue:       input.Venue,
			Location:    input.Location,
			Date:        input.Date,
			Time:        input.Time,
			Mode:        input.Mode,
			Audience:    input.Audience,
			Agenda:      agenda,
			Organizer:   input.Organizer,
			Tags:        tags,
		}

		if err := svc.Create(c.Request.Context(), &event); err != nil {
			discardImage(c, images, uploaded)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- LIST ----------------
func ListEvents(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := services.EventFilter{
			Tag:   c.Query("tag"),
			Mode:  c.Query("mode"),
			Query: c.Query("q"),
		}

		events, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		if len(events) == 0 {
			c.JSON(http.StatusOK, []models.Event{})
			return
		}

		// --- Pick the most recently updated event ---
		latest := events[0]
		for _, ev := range events {
			if ev.UpdatedAt.After(latest.UpdatedAt) {
				latest = ev
			}
		}

		etag := utils.GenerateListETag(len(events), latest.ID, latest.UpdatedAt)
		if notModified(c, etag, latest.UpdatedAt) {
			return
		}

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- GET ----------------
func GetEvent(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseEventID(c)
		if !ok {
			return
		}

		event, err := svc.Get(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}

		if notModified(c, utils.GenerateETag(event.ID, event.UpdatedAt), event.UpdatedAt) {
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

// GetEventBySlug serves the public event page: the event and how many
// bookings it has.
func GetEventBySlug(svc EventService, bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}

		count, err := bookings.CountByEvent(c.Request.Context(), event.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"event":    event,
			"bookings": count,
		})
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(svc EventService, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseEventID(c)
		if !ok {
			return
		}

		existing, err := svc.Get(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !middleware.CanManage(c, existing.OwnerID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		var input eventPatchInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		patch := services.EventPatch{
			Title:       input.Title,
			Description: input.Description,
			Overview:    input.Overview,
			Image:       input.Image,
			Venue:       input.Venue,
			Location:    input.Location,
			Date:        input.Date,
			Time:        input.Time,
			Mode:        input.Mode,
			Audience:    input.Audience,
			Organizer:   input.Organizer,
		}
		if patch.Agenda, err = expandList(c, services.FieldAgenda, input.Agenda); err != nil {
			respondError(c, err)
			return
		}
		if patch.Tags, err = expandList(c, services.FieldTags, input.Tags); err != nil {
			respondError(c, err)
			return
		}

		uploaded, ok := uploadImage(c, images)
		if !ok {
			return
		}
		if uploaded != "" {
			patch.Image = &uploaded
		}

		updated, err := svc.Update(c.Request.Context(), eventID, patch)
		if err != nil {
			discardImage(c, images, uploaded)
			respondError(c, err)
			return
		}

		if existing.Image != updated.Image {
			discardImage(c, images, existing.Image)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event updated successfully",
			"event":   updated,
		})
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(svc EventService, images ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseEventID(c)
		if !ok {
			return
		}

		existing, err := svc.Get(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !middleware.CanManage(c, existing.OwnerID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		deleted, err := svc.Delete(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}

		discardImage(c, images, deleted.Image)

		c.JSON(http.StatusOK, gin.H{
			"message": "event deleted successfully",
			"id":      eventID.Hex(),
		})
	}
}
