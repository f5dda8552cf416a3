package engine_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/layout"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

func bookedDelta(n int, g model.Gender) engine.SeatDelta {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return engine.SeatDelta{Number: n, Status: model.SeatBooked, Gender: g, BookedAt: &at}
}

func TestNewSeatMapAllAvailable(t *testing.T) {
	m := engine.NewSeatMap()
	snap := m.Snapshot()
	if len(snap) != layout.SeatCount {
		t.Fatalf("snapshot has %d seats, want %d", len(snap), layout.SeatCount)
	}
	for i, s := range snap {
		if s.Number != i+1 {
			t.Fatalf("snapshot not ordered by number: index %d holds seat %d", i, s.Number)
		}
		if s.Status != model.SeatAvailable {
			t.Errorf("seat %d: want available, got %s", s.Number, s.Status)
		}
	}
	if got := m.AvailableCount(); got != layout.SeatCount {
		t.Errorf("AvailableCount = %d, want %d", got, layout.SeatCount)
	}
}

func TestApplyIdempotent(t *testing.T) {
	m := engine.NewSeatMap()
	d := bookedDelta(7, model.GenderFemale)

	m.Apply(d)
	once := m.Snapshot()
	m.Apply(d)
	twice := m.Snapshot()

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("applying the same delta twice changed the snapshot")
	}
	s, _ := m.Seat(7)
	if s.Status != model.SeatBooked || s.Gender != model.GenderFemale {
		t.Errorf("seat 7 = %+v, want booked female", s)
	}
	if got := m.AvailableCount(); got != layout.SeatCount-1 {
		t.Errorf("AvailableCount = %d, want %d", got, layout.SeatCount-1)
	}
}

func TestApplyReleaseClearsAttributes(t *testing.T) {
	m := engine.NewSeatMap()
	m.Apply(bookedDelta(12, model.GenderMale))
	m.Apply(engine.SeatDelta{Number: 12, Status: model.SeatAvailable})
	s, _ := m.Seat(12)
	if s.Status != model.SeatAvailable || s.Gender != "" || s.BookedAt != nil {
		t.Errorf("released seat still carries booking attributes: %+v", s)
	}
}

func TestApplyUnknownSeatDropped(t *testing.T) {
	m := engine.NewSeatMap()
	m.Apply(bookedDelta(99, model.GenderMale))
	if got := m.AvailableCount(); got != layout.SeatCount {
		t.Errorf("delta for unknown seat mutated the map")
	}
}

func TestLoadMergesStoreState(t *testing.T) {
	m := engine.NewSeatMap()
	s3, _ := model.NewSeat(3)
	s3.Status = model.SeatBooked
	s3.Gender = model.GenderMale
	m.Load([]model.Seat{s3})
	got, _ := m.Seat(3)
	if got.Status != model.SeatBooked || got.Gender != model.GenderMale {
		t.Errorf("seat 3 after Load = %+v", got)
	}
}
