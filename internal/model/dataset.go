package model

// Dataset mirrors the data file layout: {"users": [...], "bookings": [...]}.
type Dataset struct {
	Users    []User    `json:"users"`
	Bookings []Booking `json:"bookings"`
}
