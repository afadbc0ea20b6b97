// Package handler implements the HTTP handlers of the booking API.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mock-booking-api/internal/repository"
)

// pathID parses an integer path parameter.  Any integer is accepted; ids
// with no record are reported as not found by the service.
func pathID(c echo.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, false
	}
	return n, true
}

// fail turns an error from the service into a JSON response.  Client errors
// echo the wrapped message (it names the booking, user id or username); server errors get
// a fixed message so file paths never reach the client.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrCorruptData):
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "data file is corrupt"})
	case errors.Is(err, repository.ErrStorageUnavailable):
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage unavailable"})
	case errors.Is(err, repository.ErrUploadFailed):
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	log.Printf("handler: %s %s: unexpected error: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
