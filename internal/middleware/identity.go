package middleware

// identity.go resolves who is calling from the bearer marker issued by
// /auth.  Requests without a recognisable token are attributed to "anon".

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mock-booking-api/internal/utils"
)

// Identity stores the caller's username under "username" in the context
// when the request carries "Authorization: Bearer fake-token-<username>".
// It never rejects a request.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if name, ok := utils.UsernameFromAuthHeader(c.Request().Header.Get("Authorization")); ok {
				c.Set("username", name)
			}
			return next(c)
		}
	}
}

// currentUser returns the username set by Identity, or "anon".
func currentUser(c echo.Context) string {
	if v, ok := c.Get("username").(string); ok && v != "" {
		return v
	}
	if name, ok := utils.UsernameFromAuthHeader(c.Request().Header.Get("Authorization")); ok {
		return name
	}
	return "anon"
}
