package engine

import (
	"sort"

	"github.com/iliyamo/bus-seat-reservation/internal/layout"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// CheckSeat evaluates the gender segregation rule for a single seat against
// the current occupancy: seat n may be taken by gender g only if every
// booked neighbor (same bench, per the layout's neighbor relation) has the
// same recorded gender.  Free neighbors never block.  When several booked
// neighbors conflict, the lowest-numbered one is reported.  A nil return
// means the seat is selectable by g.
func CheckSeat(m *SeatMap, n int, g model.Gender) error {
	neighbors := layout.Neighbors(n)
	sort.Ints(neighbors)
	for _, nb := range neighbors {
		s, ok := m.Seat(nb)
		if !ok {
			continue
		}
		if s.Status == model.SeatBooked && s.Gender != g {
			return &ConstraintViolation{Seat: n, NeighborSeat: nb, NeighborGender: s.Gender}
		}
	}
	return nil
}

// CheckSelection re-evaluates the rule for a whole selection immediately
// before commit, since occupancy may have changed after the individual
// toggles.  Seats are checked in ascending order so the first reported
// conflict is deterministic.
func CheckSelection(m *SeatMap, seats []int, g model.Gender) error {
	ordered := append([]int(nil), seats...)
	sort.Ints(ordered)
	for _, n := range ordered {
		if err := CheckSeat(m, n, g); err != nil {
			return err
		}
	}
	return nil
}
