package queue

import (
	"testing"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

func TestNewSeatDeltaEvent(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := &model.Booking{
		TransactionID:    "abc123",
		Seats:            []int{3, 4},
		Gender:           model.GenderMale,
		TotalAmountCents: 300000,
		CreatedAt:        created,
	}
	ev := NewSeatDeltaEvent(b)
	if ev.TransactionID != "abc123" || !ev.Booked {
		t.Errorf("event = %+v", ev)
	}
	if ev.Gender != "male" || ev.BookedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("gender/booked_at = %q/%q", ev.Gender, ev.BookedAt)
	}
}

func TestDeltasCarryAbsoluteState(t *testing.T) {
	ev := SeatDeltaEvent{
		Seats:    []int{5, 6},
		Booked:   true,
		Gender:   "female",
		BookedAt: "2025-06-01T12:00:00Z",
	}
	deltas := ev.Deltas()
	if len(deltas) != 2 {
		t.Fatalf("got %d deltas", len(deltas))
	}
	for i, d := range deltas {
		if d.Number != ev.Seats[i] {
			t.Errorf("delta %d: seat %d", i, d.Number)
		}
		if d.Status != model.SeatBooked || d.Gender != model.GenderFemale {
			t.Errorf("delta %d: %+v", i, d)
		}
		if d.BookedAt == nil || !d.BookedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("delta %d booked_at = %v", i, d.BookedAt)
		}
	}
}

func TestDeltasRelease(t *testing.T) {
	ev := SeatDeltaEvent{Seats: []int{7}, Booked: false}
	deltas := ev.Deltas()
	if len(deltas) != 1 {
		t.Fatalf("got %d deltas", len(deltas))
	}
	d := deltas[0]
	if d.Status != model.SeatAvailable || d.Gender != "" || d.BookedAt != nil {
		t.Errorf("release delta = %+v", d)
	}
}

func TestDeltasBadTimestampTolerated(t *testing.T) {
	ev := SeatDeltaEvent{Seats: []int{8}, Booked: true, Gender: "male", BookedAt: "not-a-time"}
	d := ev.Deltas()[0]
	if d.Status != model.SeatBooked || d.BookedAt != nil {
		t.Errorf("delta = %+v, want booked with nil timestamp", d)
	}
}
