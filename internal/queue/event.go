// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/iliyamo/mock-booking-api/internal/model"

// Event types published after a mutation has been persisted.
const (
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventBookingDeleted = "booking.deleted"
	EventProfileUpdated = "profile.updated"
)

// BookingEvent is published once a booking or profile mutation has been
// written to the data file.  It carries the resulting record so consumers
// can log or fan out without reading the data file themselves.
type BookingEvent struct {
	Type         string         `json:"type"`
	BookingID    int            `json:"booking_id,omitempty"`
	Booking      *model.Booking `json:"booking,omitempty"`
	UserID       int            `json:"user_id,omitempty"`
	Email        string         `json:"email,omitempty"`
	ProfilePhoto string         `json:"profile_photo,omitempty"`
	OccurredAt   string         `json:"occurred_at"`
}
