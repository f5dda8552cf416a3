package model

import (
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/layout"
)

// Gender is the declared gender of a booking party.  The segregation rule
// compares this value against the gender recorded on booked neighbor seats.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the two accepted values.
func (g Gender) Valid() bool { return g == GenderMale || g == GenderFemale }

// SeatStatus is the occupancy state of a seat.  There are only two states:
// a seat is either free or booked; transient client-side selection never
// leaves the owning session.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
)

// Seat combines the fixed grid coordinate of a seat with its current
// occupancy.  The shared store owns Status, Gender and BookedAt; Number and
// the coordinates are configuration from the layout package.
//
// Fields:
//  Number   – unique seat number, 1..44, stable for the coach.
//  Row      – 0-based grid row from the front.
//  Side     – side of the aisle.
//  Column   – 0 or 1 within the side.
//  Status   – available or booked.
//  Gender   – set only while Status is booked.
//  BookedAt – set only while Status is booked.
type Seat struct {
	Number   int         `json:"number"`
	Row      int         `json:"row"`
	Side     string      `json:"side"`
	Column   int         `json:"column"`
	Status   SeatStatus  `json:"status"`
	Gender   Gender      `json:"gender,omitempty"`
	BookedAt *time.Time  `json:"booked_at,omitempty"`
}

// NewSeat returns an available seat for number n with its grid coordinate
// filled in from the layout.  The boolean is false for invalid numbers.
func NewSeat(n int) (Seat, bool) {
	p, ok := layout.PositionOf(n)
	if !ok {
		return Seat{}, false
	}
	return Seat{
		Number: n,
		Row:    p.Row,
		Side:   p.Side.String(),
		Column: p.Column,
		Status: SeatAvailable,
	}, true
}
