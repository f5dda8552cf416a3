package engine_test

import (
	"errors"
	"testing"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

func TestCheckSeatBlockedByOppositeGenderNeighbor(t *testing.T) {
	m := engine.NewSeatMap()
	m.Apply(bookedDelta(1, model.GenderFemale))

	err := engine.CheckSeat(m, 2, model.GenderMale)
	var cv *engine.ConstraintViolation
	if !errors.As(err, &cv) {
		t.Fatalf("want ConstraintViolation, got %v", err)
	}
	if cv.Seat != 2 || cv.NeighborSeat != 1 || cv.NeighborGender != model.GenderFemale {
		t.Errorf("violation = %+v, want seat 2 blocked by seat 1 (female)", cv)
	}
}

func TestCheckSeatSameGenderNeighborAllowed(t *testing.T) {
	m := engine.NewSeatMap()
	m.Apply(bookedDelta(1, model.GenderFemale))
	if err := engine.CheckSeat(m, 2, model.GenderFemale); err != nil {
		t.Errorf("same-gender neighbor must not block: %v", err)
	}
}

func TestCheckSeatFreeNeighborNeverBlocks(t *testing.T) {
	m := engine.NewSeatMap()
	for _, g := range []model.Gender{model.GenderMale, model.GenderFemale} {
		if err := engine.CheckSeat(m, 7, g); err != nil {
			t.Errorf("free neighbors must not block %s: %v", g, err)
		}
	}
}

func TestCheckSelectionReportsLowestSeatFirst(t *testing.T) {
	m := engine.NewSeatMap()
	// Seats 5 and 9 sit on the benches next to 6 and 10 respectively.
	m.Apply(bookedDelta(5, model.GenderMale))
	m.Apply(bookedDelta(9, model.GenderMale))

	// Pass the selection out of order; the check must still report the
	// conflict on the lowest-numbered seat.
	err := engine.CheckSelection(m, []int{10, 6}, model.GenderFemale)
	var cv *engine.ConstraintViolation
	if !errors.As(err, &cv) {
		t.Fatalf("want ConstraintViolation, got %v", err)
	}
	if cv.Seat != 6 || cv.NeighborSeat != 5 {
		t.Errorf("violation = %+v, want seat 6 blocked by seat 5", cv)
	}
}

func TestCheckSelectionClean(t *testing.T) {
	m := engine.NewSeatMap()
	m.Apply(bookedDelta(5, model.GenderMale))
	if err := engine.CheckSelection(m, []int{3, 4, 6}, model.GenderMale); err != nil {
		t.Errorf("want nil, got %v", err)
	}
}
