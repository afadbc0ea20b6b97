package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mock-booking-api/internal/service"
)

// HealthHandler reports liveness plus a few in-process counters.
type HealthHandler struct {
	Svc *service.Service
}

func NewHealthHandler(svc *service.Service) *HealthHandler {
	return &HealthHandler{Svc: svc}
}

// Health returns 200 with the number of open WebSocket connections and
// cached bookings.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":             "ok",
		"active_connections": h.Svc.ActiveConnections(),
		"cached_bookings":    h.Svc.Cache.Len(),
	})
}
