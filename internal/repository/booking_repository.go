package repository

import (
	"fmt"

	"github.com/iliyamo/mock-booking-api/internal/model"
)

// The functions below operate on a Dataset already loaded from the Store.
// They never touch the file themselves; callers persist the result with
// ReplaceAll while holding the mutation gate.

// CreateBooking appends a booking whose id is one past the highest existing
// id (1 for an empty collection) and returns it.
func CreateBooking(ds *model.Dataset, f model.BookingFields) model.Booking {
	next := 0
	for _, b := range ds.Bookings {
		if b.ID > next {
			next = b.ID
		}
	}
	b := f.WithID(next + 1)
	ds.Bookings = append(ds.Bookings, b)
	return b
}

// FindBooking returns the booking with the given id.
func FindBooking(ds *model.Dataset, id int) (model.Booking, error) {
	i := bookingIndex(ds, id)
	if i < 0 {
		return model.Booking{}, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return ds.Bookings[i], nil
}

// UpdateBooking overwrites every mutable field of the booking in place.
func UpdateBooking(ds *model.Dataset, id int, f model.BookingFields) (model.Booking, error) {
	i := bookingIndex(ds, id)
	if i < 0 {
		return model.Booking{}, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	ds.Bookings[i] = f.WithID(id)
	return ds.Bookings[i], nil
}

// DeleteBooking removes the booking and returns the removed record.
func DeleteBooking(ds *model.Dataset, id int) (model.Booking, error) {
	i := bookingIndex(ds, id)
	if i < 0 {
		return model.Booking{}, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	removed := ds.Bookings[i]
	ds.Bookings = append(ds.Bookings[:i], ds.Bookings[i+1:]...)
	return removed, nil
}

func bookingIndex(ds *model.Dataset, id int) int {
	for i := range ds.Bookings {
		if ds.Bookings[i].ID == id {
			return i
		}
	}
	return -1
}
