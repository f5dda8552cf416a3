package model

import "time"

// Booking is the durable record produced by a successful commit.  It is
// created only by the commit coordinator: either every requested seat was
// transitioned to booked with these attributes, or the booking does not
// exist.  The seat set is immutable once created.
//
// Fields:
//  ID               – primary key in the bookings table (0 until persisted).
//  TransactionID    – opaque token minted at commit time.
//  UserID           – account that booked, 0 for untracked callers.
//  Seats            – committed seat numbers in ascending order.
//  Gender           – gender recorded on every committed seat.
//  TotalAmountCents – seat count times the configured seat price.
//  CreatedAt        – commit timestamp (UTC).
type Booking struct {
	ID               uint64    `json:"id,omitempty"`
	TransactionID    string    `json:"transaction_id"`
	UserID           uint64    `json:"-"`
	Seats            []int     `json:"seats"`
	Gender           Gender    `json:"gender"`
	TotalAmountCents uint32    `json:"total_amount_cents"`
	CreatedAt        time.Time `json:"created_at"`
}

// SeatCount returns the number of committed seats.
func (b *Booking) SeatCount() int { return len(b.Seats) }
