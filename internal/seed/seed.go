// Package seed generates synthetic users and bookings for load testing.
package seed

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/iliyamo/mock-booking-api/internal/model"
)

// Options controls the size and randomness of a generated dataset.
type Options struct {
	Users    int
	Bookings int
	Seed     int64
}

var needs = []string{"Breakfast", "WiFi", "Parking", "Gym", "Extra bed", "None"}

var yearStart = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// Generate builds a dataset: users user<i>/pass<i> and bookings checking in
// during 2025 for 1 to 14 nights at a price between 100 and 500.  Guest
// names and email domains come from gofakeit; the same non-zero Seed always
// yields the same dataset.
func Generate(opts Options) model.Dataset {
	f := gofakeit.New(uint64(opts.Seed))

	users := make([]model.User, 0, opts.Users)
	for i := 1; i <= opts.Users; i++ {
		users = append(users, model.User{
			ID:       i,
			Username: fmt.Sprintf("user%d", i),
			Password: fmt.Sprintf("pass%d", i),
			Email:    fmt.Sprintf("user%d@%s", i, f.DomainName()),
		})
	}

	bookings := make([]model.Booking, 0, opts.Bookings)
	for i := 1; i <= opts.Bookings; i++ {
		checkIn := yearStart.AddDate(0, 0, f.IntRange(0, 365))
		checkOut := checkIn.AddDate(0, 0, f.IntRange(1, 14))
		bookings = append(bookings, model.Booking{
			ID:              i,
			Firstname:       f.FirstName(),
			Lastname:        f.LastName(),
			TotalPrice:      f.IntRange(100, 500),
			DepositPaid:     f.Bool(),
			CheckIn:         checkIn.Format(time.DateOnly),
			CheckOut:        checkOut.Format(time.DateOnly),
			AdditionalNeeds: f.RandomString(needs),
		})
	}
	return model.Dataset{Users: users, Bookings: bookings}
}
