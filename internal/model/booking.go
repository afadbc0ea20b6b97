package model

// Booking is a single reservation record.  The ID is assigned by the store
// on creation and never changes afterwards; every other field is replaced
// wholesale by an update.  Check-in/check-out ordering is not validated.
type Booking struct {
	ID              int    `json:"id"`
	Firstname       string `json:"firstname"`
	Lastname        string `json:"lastname"`
	TotalPrice      int    `json:"totalprice"`
	DepositPaid     bool   `json:"depositpaid"`
	CheckIn         string `json:"checkin"`
	CheckOut        string `json:"checkout"`
	AdditionalNeeds string `json:"additionalneeds"`
}

// BookingFields holds the caller-controlled part of a booking.
type BookingFields struct {
	Firstname       string `json:"firstname"`
	Lastname        string `json:"lastname"`
	TotalPrice      int    `json:"totalprice"`
	DepositPaid     bool   `json:"depositpaid"`
	CheckIn         string `json:"checkin"`
	CheckOut        string `json:"checkout"`
	AdditionalNeeds string `json:"additionalneeds"`
}

// Fields strips the identifier.
func (b Booking) Fields() BookingFields {
	return BookingFields{
		Firstname:       b.Firstname,
		Lastname:        b.Lastname,
		TotalPrice:      b.TotalPrice,
		DepositPaid:     b.DepositPaid,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		AdditionalNeeds: b.AdditionalNeeds,
	}
}

// WithID builds a full booking record from the fields and an identifier.
func (f BookingFields) WithID(id int) Booking {
	return Booking{
		ID:              id,
		Firstname:       f.Firstname,
		Lastname:        f.Lastname,
		TotalPrice:      f.TotalPrice,
		DepositPaid:     f.DepositPaid,
		CheckIn:         f.CheckIn,
		CheckOut:        f.CheckOut,
		AdditionalNeeds: f.AdditionalNeeds,
	}
}
