package routes

import (
	"github.com/gin-gonic/gin"
	config "github.com/phillip/event-listing-go/config"
	controllers "github.com/phillip/event-listing-go/controllers"
	middleware "github.com/phillip/event-listing-go/middleware"
)

// Handlers bundles what the routes are served from. Images and
// BookingLimit may be nil.
type Handlers struct {
	Events       controllers.EventService
	Bookings     controllers.BookingService
	Images       controllers.ImageStore
	DB           controllers.Pinger
	BookingLimit gin.HandlerFunc
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, h Handlers) {
	// public
	r.GET("/healthz", controllers.Health(h.DB))
	bookings := []gin.HandlerFunc{controllers.CreateBooking(h.Bookings)}
	if h.BookingLimit != nil {
		bookings = append([]gin.HandlerFunc{h.BookingLimit}, bookings...)
	}
	r.POST("/bookings", bookings...)

	// protected
	auth := middleware.AuthMiddleware(cfg)

	events := r.Group("/events")
	{
		events.GET("", controllers.ListEvents(h.Events))
		events.GET("/slug/:slug", controllers.GetEventBySlug(h.Events, h.Bookings))
		events.GET("/:id", controllers.GetEvent(h.Events))

		events.POST("", auth, controllers.CreateEvent(h.Events, h.Images))
		events.PATCH("/:id", auth, controllers.UpdateEvent(h.Events, h.Images))
		events.DELETE("/:id", auth, controllers.DeleteEvent(h.Events, h.Images))
		events.GET("/:id/bookings", auth, controllers.ListEventBookings(h.Events, h.Bookings))
	}
}
