// Package engine implements the seat allocation core: the occupancy
// projection of the coach, the gender segregation rule, the per-party
// selection session and the atomic commit coordinator.  Everything in this
// package is deterministic and I/O free except the coordinator, which talks
// to the shared store through the SeatStore interface.
package engine

import (
	"errors"
	"fmt"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// ErrSeatsTaken is the sentinel a SeatStore implementation returns when the
// conditional bulk update was rejected because at least one targeted seat is
// no longer available.  The coordinator translates it into a
// ConcurrencyConflict carrying the exact lost seats.
var ErrSeatsTaken = errors.New("one or more seats are no longer available")

// ValidationError reports locally recoverable input problems: no seats
// selected, no gender chosen, a count outside the allowed range, or a seat
// number that does not exist on the coach.  The session stays in seat
// selection when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// ConstraintViolation reports a gender segregation conflict.  NeighborSeat
// is the lowest-numbered booked neighbor whose recorded gender differs from
// the candidate gender, so repeated checks against the same state name the
// same seat.
type ConstraintViolation struct {
	Seat           int          // the seat the party tried to take
	NeighborSeat   int          // booked neighbor causing the conflict
	NeighborGender model.Gender // gender recorded on that neighbor
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("seat %d conflicts with %s neighbor on seat %d",
		e.Seat, e.NeighborGender, e.NeighborSeat)
}

// ConcurrencyConflict reports a commit rejected by the shared store because
// the listed seats were booked by someone else between selection and commit.
// The owning session has already been repaired: the lost seats are removed
// and the session is back in seat selection.
type ConcurrencyConflict struct {
	Lost []int // seats no longer available, ascending
}

func (e *ConcurrencyConflict) Error() string {
	return fmt.Sprintf("commit rejected, seats lost: %v", e.Lost)
}

// TransportError reports that the shared store was unreachable or did not
// answer within the commit bound.  When OutcomeUnknown is true the request
// may or may not have been applied; the caller must refresh seat state
// before attempting the commit again, and the coordinator never retries on
// its own.
type TransportError struct {
	Op             string // operation that failed, e.g. "commit"
	OutcomeUnknown bool   // true when the store may have applied the update
	Err            error
}

func (e *TransportError) Error() string {
	if e.OutcomeUnknown {
		return fmt.Sprintf("%s: store timeout, outcome unknown: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: store unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
