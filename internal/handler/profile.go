package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mock-booking-api/internal/service"
)

const maxEmailBytes = 1024

// ProfileHandler serves profile photo uploads.
type ProfileHandler struct {
	Svc *service.Service
}

func NewProfileHandler(svc *service.Service) *ProfileHandler {
	return &ProfileHandler{Svc: svc}
}

// Update handles PUT /update-profile/:user_id.  The multipart body must carry
// an "email" field and a "profile_photo" file.  Parts are read as a stream:
// the photo goes straight to scratch storage without being buffered, and the
// user record is only updated once the whole body has been consumed.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	mr, err := c.Request().MultipartReader()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart body required"})
	}
	ctx := c.Request().Context()

	var email, ref string
	haveEmail := false
	// discard drops a stored photo when the request turns out to be invalid.
	discard := func() { h.Svc.Photos.Discard(ref) }

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			discard()
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed multipart body"})
		}
		switch part.FormName() {
		case "email":
			raw, err := io.ReadAll(io.LimitReader(part, maxEmailBytes+1))
			if err != nil || len(raw) > maxEmailBytes {
				discard()
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email field"})
			}
			email, haveEmail = strings.TrimSpace(string(raw)), true
		case "profile_photo":
			if ref != "" {
				discard()
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "only one profile_photo allowed"})
			}
			ref, err = h.Svc.StorePhoto(ctx, userID, part.FileName(), part)
			if err != nil {
				_ = part.Close()
				return fail(c, err)
			}
		}
		_ = part.Close()
	}

	if ref == "" || !haveEmail || email == "" {
		discard()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and profile_photo are required"})
	}
	u, err := h.Svc.UpdateProfile(ctx, userID, email, ref)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":           "Profile updated successfully",
		"user_id":           u.ID,
		"new_email":         u.Email,
		"new_profile_photo": u.ProfilePhoto,
	})
}
