package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iliyamo/bus-seat-reservation/internal/layout"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// SessionState is the lifecycle position of a selection session.
type SessionState int

const (
	// StateEmpty is a fresh session with nothing selected.
	StateEmpty SessionState = iota
	// StateSelecting has at least one toggle applied (or a failed commit
	// repaired back into seat selection).
	StateSelecting
	// StateReady means gender is set and the whole selection revalidated
	// cleanly; a commit may be requested.
	StateReady
	// StateCommitting means a commit request is in flight and the session
	// may no longer be mutated or cancelled.
	StateCommitting
	// StateCommitted is terminal; the booking is now owned by the store.
	StateCommitted
	// StateCancelled is terminal; reached by explicit cancel from any
	// state except StateCommitting.
	StateCancelled
)

// String names the state for logs and errors.
func (s SessionState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSelecting:
		return "selecting"
	case StateReady:
		return "ready"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Session is the transient, single-party selection state: chosen seats
// bounded by the passenger count, the declared gender, and the lifecycle
// state.  A session is owned by one booking flow and is not safe for
// concurrent use; it reads shared occupancy through the SeatMap it was
// created against.
type Session struct {
	maxSelections int
	selected      []int // insertion order; Selected() returns them sorted
	gender        model.Gender
	state         SessionState
	seats         *SeatMap
}

// NewSession creates a session for up to maxSelections passengers against
// the given occupancy projection.  A non-positive count is rejected with a
// ValidationError.
func NewSession(maxSelections int, seats *SeatMap) (*Session, error) {
	if maxSelections < 1 {
		return nil, &ValidationError{Reason: fmt.Sprintf("passenger count must be at least 1, got %d", maxSelections)}
	}
	if seats == nil {
		return nil, &ValidationError{Reason: "seat map is required"}
	}
	return &Session{maxSelections: maxSelections, seats: seats, state: StateEmpty}, nil
}

// ParsePassengerCount converts a passenger count arriving from the outside
// world (mobile clients send form text, JSON decoders produce float64) into
// a validated int.  Anything non-numeric, fractional or non-positive is a
// ValidationError rather than a silent coercion.
func ParsePassengerCount(v any) (int, error) {
	switch t := v.(type) {
	case int:
		if t >= 1 {
			return t, nil
		}
	case int64:
		if t >= 1 {
			return int(t), nil
		}
	case float64:
		if t == float64(int(t)) && t >= 1 {
			return int(t), nil
		}
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			return n, nil
		}
	}
	return 0, &ValidationError{Reason: fmt.Sprintf("invalid passenger count %v", v)}
}

// Toggle flips seat n in or out of the selection.  The boolean reports
// whether the selection changed.  Toggling on is refused with (false, nil)
// when the selection is already at the passenger count — the cap is silent,
// matching the booking flow where the client simply cannot add more.  It is
// refused with an error when the seat is unknown, already booked, or (once
// a gender is declared) conflicts with a booked neighbor.
func (s *Session) Toggle(n int) (bool, error) {
	switch s.state {
	case StateEmpty, StateSelecting, StateReady:
	default:
		return false, &ValidationError{Reason: "session is " + s.state.String()}
	}
	// Deselect if already chosen.
	for i, sel := range s.selected {
		if sel == n {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			if len(s.selected) == 0 {
				s.state = StateEmpty
			} else {
				s.state = StateSelecting
			}
			return true, nil
		}
	}
	if !layout.Valid(n) {
		return false, &ValidationError{Reason: fmt.Sprintf("seat %d does not exist", n)}
	}
	seat, _ := s.seats.Seat(n)
	if seat.Status != model.SeatAvailable {
		return false, &ValidationError{Reason: fmt.Sprintf("seat %d is not available", n)}
	}
	if len(s.selected) >= s.maxSelections {
		return false, nil // silently capped
	}
	if s.gender != "" {
		if err := CheckSeat(s.seats, n, s.gender); err != nil {
			return false, err
		}
	}
	s.selected = append(s.selected, n)
	s.state = StateSelecting
	return true, nil
}

// SetGender declares the booking party's gender.  It may be set or changed
// any time before a commit is in flight; the full selection is revalidated
// at Ready and again at commit.
func (s *Session) SetGender(g model.Gender) error {
	switch s.state {
	case StateEmpty, StateSelecting, StateReady:
	default:
		return &ValidationError{Reason: "session is " + s.state.String()}
	}
	if !g.Valid() {
		return &ValidationError{Reason: fmt.Sprintf("invalid gender %q", g)}
	}
	s.gender = g
	if s.state == StateReady {
		s.state = StateSelecting
	}
	return nil
}

// Ready revalidates the whole session against current occupancy and, on
// success, moves it to StateReady.  It fails with a ValidationError when no
// seat or no gender is chosen, and with a ConstraintViolation when a booked
// neighbor now conflicts (state may have changed since the toggles).
func (s *Session) Ready() error {
	switch s.state {
	case StateSelecting, StateReady:
	default:
		return &ValidationError{Reason: "session is " + s.state.String()}
	}
	if len(s.selected) == 0 {
		return &ValidationError{Reason: "no seats selected"}
	}
	if s.gender == "" {
		return &ValidationError{Reason: "gender is required"}
	}
	for _, n := range s.Selected() {
		seat, _ := s.seats.Seat(n)
		if seat.Status != model.SeatAvailable {
			return &ValidationError{Reason: fmt.Sprintf("seat %d is no longer available", n)}
		}
	}
	if err := CheckSelection(s.seats, s.selected, s.gender); err != nil {
		return err
	}
	s.state = StateReady
	return nil
}

// Cancel terminates the session.  Once a commit is in flight the session
// cannot be cancelled; the caller must wait for the commit outcome.
func (s *Session) Cancel() error {
	if s.state == StateCommitting {
		return &ValidationError{Reason: "commit in flight, cannot cancel"}
	}
	s.state = StateCancelled
	return nil
}

// Selected returns the chosen seats in ascending order.
func (s *Session) Selected() []int {
	out := append([]int(nil), s.selected...)
	sort.Ints(out)
	return out
}

// Gender returns the declared gender, empty until SetGender succeeds.
func (s *Session) Gender() model.Gender { return s.gender }

// MaxSelections returns the passenger count the session was created with.
func (s *Session) MaxSelections() int { return s.maxSelections }

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return s.state }

// SeatMap returns the occupancy projection the session validates against.
func (s *Session) SeatMap() *SeatMap { return s.seats }

// beginCommit transitions Ready -> Committing.  Only the coordinator calls
// this, after a successful Ready revalidation.
func (s *Session) beginCommit() error {
	if s.state != StateReady {
		return &ValidationError{Reason: "session is " + s.state.String() + ", expected ready"}
	}
	s.state = StateCommitting
	return nil
}

// complete marks the session committed.  The session is discarded by its
// owner afterwards; the booking now lives in the store.
func (s *Session) complete() {
	s.state = StateCommitted
}

// reject repairs the session after a failed commit: the lost seats are
// removed from the selection and the session returns to seat selection so
// the party can pick replacements instead of starting over.  With no lost
// seats (transport failure) the selection is kept intact.
func (s *Session) reject(lost []int) {
	if len(lost) > 0 {
		gone := make(map[int]struct{}, len(lost))
		for _, n := range lost {
			gone[n] = struct{}{}
		}
		kept := s.selected[:0]
		for _, n := range s.selected {
			if _, ok := gone[n]; !ok {
				kept = append(kept, n)
			}
		}
		s.selected = kept
	}
	if len(s.selected) == 0 {
		s.state = StateEmpty
	} else {
		s.state = StateSelecting
	}
}
