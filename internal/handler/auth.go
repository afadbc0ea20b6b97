package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mock-booking-api/internal/service"
)

// AuthHandler serves POST /auth.
type AuthHandler struct {
	Svc *service.Service
}

func NewAuthHandler(svc *service.Service) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

type loginReq struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// Login: exchange a username/password pair for a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Username == nil || req.Password == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}
	token, err := h.Svc.Authenticate(c.Request().Context(), *req.Username, *req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
