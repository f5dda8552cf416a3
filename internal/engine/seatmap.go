package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/layout"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// SeatDelta is one seat-state change as carried by the realtime stream or
// produced by a local commit.  Applying a delta overwrites the occupancy of
// exactly one seat, so reapplying the same delta is a no-op.
type SeatDelta struct {
	Number   int
	Status   model.SeatStatus
	Gender   model.Gender // meaningful only when Status is booked
	BookedAt *time.Time   // meaningful only when Status is booked
}

// SeatMap is a read-mostly projection of the coach's occupancy.  The shared
// store is the source of truth; a SeatMap converges on it by applying deltas
// in the order they were received.  It performs no I/O and is safe for
// concurrent use, so one instance can back HTTP reads while the realtime
// client feeds it.
type SeatMap struct {
	mu    sync.RWMutex
	seats map[int]model.Seat
}

// NewSeatMap returns a projection with every seat of the fixed layout
// available.
func NewSeatMap() *SeatMap {
	m := &SeatMap{seats: make(map[int]model.Seat, layout.SeatCount)}
	for _, n := range layout.SeatNumbers() {
		s, _ := model.NewSeat(n)
		m.seats[n] = s
	}
	return m
}

// Load replaces the projection's occupancy with the given seats, typically
// the initial read of all rows from the store.  Seats outside the fixed
// layout are ignored.
func (m *SeatMap) Load(seats []model.Seat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range seats {
		if _, ok := m.seats[s.Number]; ok {
			m.seats[s.Number] = s
		}
	}
}

// Apply integrates one or more deltas.  Application is idempotent: a delta
// sets the target seat to an absolute state rather than mutating it
// relative to the current one.  Deltas for unknown seat numbers are
// dropped.
func (m *SeatMap) Apply(deltas ...SeatDelta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range deltas {
		s, ok := m.seats[d.Number]
		if !ok {
			continue
		}
		s.Status = d.Status
		if d.Status == model.SeatBooked {
			s.Gender = d.Gender
			s.BookedAt = d.BookedAt
		} else {
			s.Gender = ""
			s.BookedAt = nil
		}
		m.seats[d.Number] = s
	}
}

// Seat returns the current state of seat n.  The boolean is false for
// numbers outside the layout.
func (m *SeatMap) Seat(n int) (model.Seat, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.seats[n]
	return s, ok
}

// Snapshot returns all seats ordered by number for rendering.
func (m *SeatMap) Snapshot() []model.Seat {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Seat, 0, len(m.seats))
	for _, s := range m.seats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// AvailableCount returns how many seats are currently free.
func (m *SeatMap) AvailableCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.seats {
		if s.Status == model.SeatAvailable {
			n++
		}
	}
	return n
}
