package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mock-booking-api/internal/model"
	"github.com/iliyamo/mock-booking-api/internal/service"
)

// BookingHandler exposes booking CRUD and the cache reset endpoint.
type BookingHandler struct {
	Svc *service.Service
}

func NewBookingHandler(svc *service.Service) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// bookingReq uses pointers so a missing field can be told apart from a zero
// value; every field is required on create and on update.
type bookingReq struct {
	Firstname       *string `json:"firstname"`
	Lastname        *string `json:"lastname"`
	TotalPrice      *int    `json:"totalprice"`
	DepositPaid     *bool   `json:"depositpaid"`
	CheckIn         *string `json:"checkin"`
	CheckOut        *string `json:"checkout"`
	AdditionalNeeds *string `json:"additionalneeds"`
}

func (r bookingReq) fields() (model.BookingFields, []string) {
	var missing []string
	str := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}
	f := model.BookingFields{
		Firstname:       str("firstname", r.Firstname),
		Lastname:        str("lastname", r.Lastname),
		CheckIn:         str("checkin", r.CheckIn),
		CheckOut:        str("checkout", r.CheckOut),
		AdditionalNeeds: str("additionalneeds", r.AdditionalNeeds),
	}
	if r.TotalPrice == nil {
		missing = append(missing, "totalprice")
	} else {
		f.TotalPrice = *r.TotalPrice
	}
	if r.DepositPaid == nil {
		missing = append(missing, "depositpaid")
	} else {
		f.DepositPaid = *r.DepositPaid
	}
	return f, missing
}

// bindBooking decodes the JSON body.  A non-empty problem means the request
// is invalid and should be answered with 400.
func bindBooking(c echo.Context) (model.BookingFields, string) {
	var req bookingReq
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return model.BookingFields{}, "invalid request body"
	}
	f, missing := req.fields()
	if len(missing) > 0 {
		return model.BookingFields{}, "missing fields: " + strings.Join(missing, ", ")
	}
	return f, ""
}

// Create handles POST /booking.
func (h *BookingHandler) Create(c echo.Context) error {
	f, problem := bindBooking(c)
	if problem != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": problem})
	}
	b, err := h.Svc.CreateBooking(c.Request().Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking created", "booking": b})
}

// Update handles PUT /booking/:id.
func (h *BookingHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	f, problem := bindBooking(c)
	if problem != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": problem})
	}
	if _, err := h.Svc.UpdateBooking(c.Request().Context(), id, f); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking updated"})
}

// Get handles GET /booking/:id.  Reads are served from the booking cache
// when possible.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /booking/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Svc.DeleteBooking(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking deleted"})
}

// ClearCache handles POST /clear-booking-cache.
func (h *BookingHandler) ClearCache(c echo.Context) error {
	h.Svc.ClearCache(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking cache cleared"})
}
