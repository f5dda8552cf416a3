package engine_test

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// memStore is an in-memory SeatStore whose BookSeats is all-or-nothing
// under a mutex, mirroring the conditional bulk update the real store does.
type memStore struct {
	mu     sync.Mutex
	booked map[int]model.Gender
	delay  time.Duration // when set, BookSeats blocks until ctx expires
	err    error         // when set, BookSeats fails with this error
}

func newMemStore() *memStore {
	return &memStore{booked: make(map[int]model.Gender)}
}

func (f *memStore) BookSeats(ctx context.Context, numbers []int, g model.Gender, _ time.Time) error {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range numbers {
		if _, taken := f.booked[n]; taken {
			return engine.ErrSeatsTaken
		}
	}
	for _, n := range numbers {
		f.booked[n] = g
	}
	return nil
}

func (f *memStore) Unavailable(_ context.Context, numbers []int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var lost []int
	for _, n := range numbers {
		if _, taken := f.booked[n]; taken {
			lost = append(lost, n)
		}
	}
	sort.Ints(lost)
	return lost, nil
}

func newTestSession(t *testing.T, m *engine.SeatMap, g model.Gender, seats ...int) *engine.Session {
	t.Helper()
	s, err := engine.NewSession(len(seats), m)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetGender(g); err != nil {
		t.Fatal(err)
	}
	for _, n := range seats {
		if added, err := s.Toggle(n); err != nil || !added {
			t.Fatalf("Toggle(%d) = (%v, %v)", n, added, err)
		}
	}
	return s
}

func TestCommitSuccess(t *testing.T) {
	store := newMemStore()
	co := engine.NewCoordinator(store, 150000, time.Second)
	m := engine.NewSeatMap()
	s := newTestSession(t, m, model.GenderMale, 3, 4)

	booking, err := co.Commit(context.Background(), s)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !reflect.DeepEqual(booking.Seats, []int{3, 4}) {
		t.Errorf("booking seats = %v", booking.Seats)
	}
	if booking.Gender != model.GenderMale {
		t.Errorf("booking gender = %s", booking.Gender)
	}
	if booking.TotalAmountCents != 300000 {
		t.Errorf("total = %d, want 300000", booking.TotalAmountCents)
	}
	if len(booking.TransactionID) != 32 {
		t.Errorf("transaction id %q, want 32 hex chars", booking.TransactionID)
	}
	if s.State() != engine.StateCommitted {
		t.Errorf("session state = %v, want committed", s.State())
	}
	// The local projection reflects the commit immediately.
	for _, n := range []int{3, 4} {
		seat, _ := m.Seat(n)
		if seat.Status != model.SeatBooked || seat.Gender != model.GenderMale {
			t.Errorf("seat %d = %+v, want booked male", n, seat)
		}
	}
	// Committed sessions accept no further mutation.
	if _, err := s.Toggle(6); err == nil {
		t.Error("toggle after commit succeeded")
	}
}

func TestCommitConcurrencyConflict(t *testing.T) {
	store := newMemStore()
	co := engine.NewCoordinator(store, 150000, time.Second)

	// Party A books seat 5.  Party B works from a stale projection that
	// still shows 5 available and overlaps on it.
	a := newTestSession(t, engine.NewSeatMap(), model.GenderMale, 5)
	if _, err := co.Commit(context.Background(), a); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	bMap := engine.NewSeatMap()
	b := newTestSession(t, bMap, model.GenderMale, 5, 6)
	_, err := co.Commit(context.Background(), b)
	var cc *engine.ConcurrencyConflict
	if !errors.As(err, &cc) {
		t.Fatalf("want ConcurrencyConflict, got %v", err)
	}
	if !reflect.DeepEqual(cc.Lost, []int{5}) {
		t.Errorf("lost = %v, want [5]", cc.Lost)
	}
	// The losing session is repaired, not destroyed: the lost seat is
	// dropped and the survivor kept for another attempt.
	if got := b.Selected(); !reflect.DeepEqual(got, []int{6}) {
		t.Errorf("selection after conflict = %v, want [6]", got)
	}
	if b.State() != engine.StateSelecting {
		t.Errorf("state after conflict = %v, want selecting", b.State())
	}
	// Store state is all-or-nothing: seat 6 must not have been booked.
	lost, _ := store.Unavailable(context.Background(), []int{6})
	if len(lost) != 0 {
		t.Errorf("seat 6 booked despite rejected commit")
	}
}

func TestCommitConflictEmptiesSession(t *testing.T) {
	store := newMemStore()
	co := engine.NewCoordinator(store, 150000, time.Second)

	a := newTestSession(t, engine.NewSeatMap(), model.GenderFemale, 11)
	if _, err := co.Commit(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	b := newTestSession(t, engine.NewSeatMap(), model.GenderFemale, 11)
	_, err := co.Commit(context.Background(), b)
	var cc *engine.ConcurrencyConflict
	if !errors.As(err, &cc) {
		t.Fatalf("want ConcurrencyConflict, got %v", err)
	}
	if len(b.Selected()) != 0 || b.State() != engine.StateEmpty {
		t.Errorf("after losing its only seat: selected=%v state=%v", b.Selected(), b.State())
	}
}

func TestCommitTimeoutOutcomeUnknown(t *testing.T) {
	store := newMemStore()
	store.delay = time.Second
	co := engine.NewCoordinator(store, 150000, 30*time.Millisecond)
	m := engine.NewSeatMap()
	s := newTestSession(t, m, model.GenderMale, 8)

	_, err := co.Commit(context.Background(), s)
	var te *engine.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want TransportError, got %v", err)
	}
	if !te.OutcomeUnknown {
		t.Error("timed-out commit must flag outcome unknown")
	}
	// The session keeps its seats and the projection is untouched: the
	// party resyncs and retries instead of starting over.
	if got := s.Selected(); !reflect.DeepEqual(got, []int{8}) {
		t.Errorf("selection = %v, want [8]", got)
	}
	if s.State() != engine.StateSelecting {
		t.Errorf("state = %v, want selecting", s.State())
	}
	if seat, _ := m.Seat(8); seat.Status != model.SeatAvailable {
		t.Errorf("projection marked seat 8 %s on a failed commit", seat.Status)
	}
}

func TestCommitStoreErrorNotUnknown(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	co := engine.NewCoordinator(store, 150000, time.Second)
	s := newTestSession(t, engine.NewSeatMap(), model.GenderMale, 8)

	_, err := co.Commit(context.Background(), s)
	var te *engine.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want TransportError, got %v", err)
	}
	if te.OutcomeUnknown {
		t.Error("plain store error must not flag outcome unknown")
	}
}

func TestCommitRequiresReadySession(t *testing.T) {
	co := engine.NewCoordinator(newMemStore(), 150000, time.Second)
	s, _ := engine.NewSession(1, engine.NewSeatMap())
	var ve *engine.ValidationError
	if _, err := co.Commit(context.Background(), s); !errors.As(err, &ve) {
		t.Fatalf("want ValidationError for empty session, got %v", err)
	}
}

// Racing parties over the same seats: the store's conditional update must
// admit exactly one of them.
func TestCommitRaceSingleWinner(t *testing.T) {
	store := newMemStore()
	co := engine.NewCoordinator(store, 150000, time.Second)

	const parties = 8
	var wg sync.WaitGroup
	results := make([]error, parties)
	sessions := make([]*engine.Session, parties)
	for i := range sessions {
		// Each party has its own projection and session; only the store
		// is shared.
		sessions[i] = newTestSession(t, engine.NewSeatMap(), model.GenderFemale, 21, 22)
	}
	for i := 0; i < parties; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = co.Commit(context.Background(), sessions[i])
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var cc *engine.ConcurrencyConflict
		if !errors.As(err, &cc) {
			t.Errorf("loser got %v, want ConcurrencyConflict", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d winners, want exactly 1", wins)
	}
	if g := store.booked[21]; g != model.GenderFemale {
		t.Errorf("seat 21 = %q in store", g)
	}
}
