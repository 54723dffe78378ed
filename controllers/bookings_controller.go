package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	middleware "github.com/phillip/event-listing-go/middleware"
	models "github.com/phillip/event-listing-go/models"
)

// ---------------- CREATE ----------------
func CreateBooking(svc BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			EventID string `json:"eventId" form:"eventId" binding:"required"`
			Email   string `json:"email" form:"email" binding:"required"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(input.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id", "field": "eventId"})
			return
		}

		booking := models.Booking{EventID: eventID, Email: input.Email}
		if err := svc.Create(c.Request.Context(), &booking); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, booking)
	}
}

// ---------------- LIST ----------------
func ListEventBookings(events EventService, bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseEventID(c)
		if !ok {
			return
		}

		event, err := events.Get(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !middleware.CanManage(c, event.OwnerID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		list, err := bookings.ListByEvent(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		if list == nil {
			list = []models.Booking{}
		}

		c.JSON(http.StatusOK, list)
	}
}
