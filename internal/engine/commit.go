package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// SeatStore is the narrow contract the coordinator needs from the shared
// store.  Implementations must make BookSeats all-or-nothing: every listed
// seat transitions from available to booked with the given attributes, or
// the whole update is rejected with ErrSeatsTaken and no seat changes.  The
// store's own serialization of these conditional updates is the only
// synchronization the engine relies on.
type SeatStore interface {
	// BookSeats performs the conditional bulk update.  It returns
	// ErrSeatsTaken when any targeted seat is no longer available.
	BookSeats(ctx context.Context, numbers []int, gender model.Gender, bookedAt time.Time) error
	// Unavailable returns the members of numbers that are currently
	// booked, in ascending order.  Used after a rejected commit to tell
	// the party exactly which seats were lost.
	Unavailable(ctx context.Context, numbers []int) ([]int, error)
}

// Coordinator turns a validated session into a durable booking through one
// conditional update against the shared store.  It never retries a commit
// on its own: a timed-out commit may have been applied, and retrying
// blindly could double-book.
type Coordinator struct {
	store   SeatStore
	price   uint32        // price per seat in cents
	timeout time.Duration // bound on the store round-trip
	now     func() time.Time
}

// NewCoordinator returns a coordinator charging pricePerSeatCents per seat
// and giving the store at most timeout per commit attempt.
func NewCoordinator(store SeatStore, pricePerSeatCents uint32, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Coordinator{store: store, price: pricePerSeatCents, timeout: timeout, now: time.Now}
}

// Commit drives the session through Ready -> Committing and issues the
// conditional update.  Outcomes:
//
//   - success: the session's seat map is updated, the session becomes
//     Committed, and the Booking (with a freshly minted transaction id) is
//     returned.
//   - ConcurrencyConflict: the store rejected the update; the lost seats
//     are queried, removed from the session, and the session returns to
//     seat selection.
//   - TransportError: the store was unreachable or timed out.  The session
//     returns to seat selection with its seats intact; OutcomeUnknown is
//     set on timeout so the caller refreshes seat state before retrying.
//   - ValidationError / ConstraintViolation: revalidation failed before
//     anything was sent; the session is untouched beyond staying in
//     selection.
func (co *Coordinator) Commit(ctx context.Context, s *Session) (*model.Booking, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}
	if err := s.beginCommit(); err != nil {
		return nil, err
	}

	seats := s.Selected()
	gender := s.Gender()
	bookedAt := co.now().UTC().Truncate(time.Second)

	cctx, cancel := context.WithTimeout(ctx, co.timeout)
	defer cancel()
	err := co.store.BookSeats(cctx, seats, gender, bookedAt)
	switch {
	case err == nil:
		// Flow the result back into the local projection; the realtime
		// delta will reapply it idempotently.
		deltas := make([]SeatDelta, 0, len(seats))
		for _, n := range seats {
			deltas = append(deltas, SeatDelta{
				Number:   n,
				Status:   model.SeatBooked,
				Gender:   gender,
				BookedAt: &bookedAt,
			})
		}
		s.SeatMap().Apply(deltas...)
		s.complete()
		return &model.Booking{
			TransactionID:    newTransactionID(),
			Seats:            seats,
			Gender:           gender,
			TotalAmountCents: uint32(len(seats)) * co.price,
			CreatedAt:        bookedAt,
		}, nil

	case errors.Is(err, ErrSeatsTaken):
		lost, qerr := co.store.Unavailable(ctx, seats)
		if qerr != nil || len(lost) == 0 {
			// Could not learn which seats were lost; drop nothing and
			// let the caller resync before the next attempt.
			s.reject(nil)
			return nil, &ConcurrencyConflict{Lost: seats}
		}
		s.reject(lost)
		return nil, &ConcurrencyConflict{Lost: lost}

	default:
		unknown := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
		s.reject(nil)
		return nil, &TransportError{Op: "commit", OutcomeUnknown: unknown, Err: err}
	}
}

// newTransactionID mints an opaque 32-character hex token for a booking.
func newTransactionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in a bad way; fall
		// back to a timestamp so the commit still completes.
		return hex.EncodeToString([]byte(time.Now().UTC().Format("20060102150405.000000000")))[:32]
	}
	return hex.EncodeToString(b)
}
