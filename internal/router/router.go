// Package router registers the API routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/mock-booking-api/internal/handler"
)

// Handlers groups every handler the router needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Booking  *handler.BookingHandler
	Profile  *handler.ProfileHandler
	Realtime *handler.RealtimeHandler
	Health   *handler.HealthHandler
}

// RegisterRoutes maps the public API onto the provided Echo instance.
// uploadLimit caps the request body of profile uploads (e.g. "10M"); an
// empty string disables the cap.
func RegisterRoutes(e *echo.Echo, h Handlers, uploadLimit string) {
	// Liveness plus connection and cache counters for load-test dashboards.
	e.GET("/healthz", h.Health.Health)

	// Credential check; returns a bearer marker token.
	e.POST("/auth", h.Auth.Login)

	// Booking CRUD.  GET is served through the booking cache; PUT and
	// DELETE evict the id once the data file has been rewritten.
	e.POST("/booking", h.Booking.Create)
	e.GET("/booking/:id", h.Booking.Get)
	e.PUT("/booking/:id", h.Booking.Update)
	e.DELETE("/booking/:id", h.Booking.Delete)
	e.POST("/clear-booking-cache", h.Booking.ClearCache)

	// Multipart profile update (email + profile_photo).
	var profileMW []echo.MiddlewareFunc
	if uploadLimit != "" {
		profileMW = append(profileMW, echomw.BodyLimit(uploadLimit))
	}
	e.PUT("/update-profile/:user_id", h.Profile.Update, profileMW...)

	// WebSocket echo channel.
	e.GET("/ws", h.Realtime.Echo)
}
