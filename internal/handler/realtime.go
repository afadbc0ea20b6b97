package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mock-booking-api/internal/realtime"
	"github.com/iliyamo/mock-booking-api/internal/service"
)

// RealtimeHandler serves the WebSocket echo channel.
type RealtimeHandler struct {
	Svc *service.Service
}

func NewRealtimeHandler(svc *service.Service) *RealtimeHandler {
	return &RealtimeHandler{Svc: svc}
}

// Echo handles GET /ws.  The connection is hijacked, so the returned error
// only reports a failed upgrade; it is not turned into a response.
func (h *RealtimeHandler) Echo(c echo.Context) error {
	if err := realtime.Echo(h.Svc.Hub, c.Response(), c.Request()); err != nil {
		c.Logger().Warnf("websocket upgrade failed: %v", err)
	}
	return nil
}
