// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// SeatsExchange is the fanout exchange carrying seat-state deltas.  Every
// running client binds its own queue to it so all seat map projections
// converge on the store's state.
const SeatsExchange = "seats.changed"

// SeatDeltaEvent is published after every successful commit.  It carries an
// absolute per-seat state rather than an increment, so consumers can apply
// it idempotently and tolerate duplicate delivery.
type SeatDeltaEvent struct {
	TransactionID string `json:"transaction_id"`
	Seats         []int  `json:"seats"`
	Booked        bool   `json:"booked"`
	Gender        string `json:"gender,omitempty"`
	BookedAt      string `json:"booked_at,omitempty"`    // RFC3339, set when Booked
	PublishedAt   string `json:"published_at,omitempty"` // RFC3339
}

// NewSeatDeltaEvent builds the event for a committed booking.
func NewSeatDeltaEvent(b *model.Booking) SeatDeltaEvent {
	return SeatDeltaEvent{
		TransactionID: b.TransactionID,
		Seats:         b.Seats,
		Booked:        true,
		Gender:        string(b.Gender),
		BookedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
		PublishedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// Deltas converts the wire payload into engine deltas, one per seat.
func (e SeatDeltaEvent) Deltas() []engine.SeatDelta {
	status := model.SeatAvailable
	if e.Booked {
		status = model.SeatBooked
	}
	var bookedAt *time.Time
	if e.Booked && e.BookedAt != "" {
		if t, err := time.Parse(time.RFC3339, e.BookedAt); err == nil {
			u := t.UTC()
			bookedAt = &u
		}
	}
	deltas := make([]engine.SeatDelta, 0, len(e.Seats))
	for _, n := range e.Seats {
		deltas = append(deltas, engine.SeatDelta{
			Number:   n,
			Status:   status,
			Gender:   model.Gender(e.Gender),
			BookedAt: bookedAt,
		})
	}
	return deltas
}
