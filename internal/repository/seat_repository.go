package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/layout"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// SeatRepo provides access to the `seats` table, the single shared mutable
// resource of the system.  Rows are keyed by seat number with columns
// booked, gender and booked_at.  Occupancy is mutated exclusively through
// BookSeats' conditional update; nothing here writes booked
// unconditionally.  SeatRepo satisfies engine.SeatStore.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span repositories.
func (r *SeatRepo) DB() *sql.DB { return r.db }

// EnsureLayout inserts any missing rows for the fixed 44-seat plan.  The
// insert is idempotent (INSERT IGNORE on the primary key), so it is safe to
// run at every startup.
func (r *SeatRepo) EnsureLayout(ctx context.Context) error {
	query := `INSERT IGNORE INTO seats (number, booked) VALUES `
	args := make([]interface{}, 0, layout.SeatCount)
	for i, n := range layout.SeatNumbers() {
		if i > 0 {
			query += ","
		}
		query += "(?, 0)"
		args = append(args, n)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListAll returns every seat ordered by number, merging the stored
// occupancy with the grid coordinates from the layout.  This is the initial
// read a SeatMap is seeded from.
func (r *SeatRepo) ListAll(ctx context.Context) ([]model.Seat, error) {
	const q = `SELECT number, booked, gender, booked_at FROM seats ORDER BY number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0, layout.SeatCount)
	for rows.Next() {
		var (
			number   int
			booked   bool
			gender   sql.NullString
			bookedAt sql.NullTime
		)
		if err := rows.Scan(&number, &booked, &gender, &bookedAt); err != nil {
			return nil, err
		}
		s, ok := model.NewSeat(number)
		if !ok {
			continue // row outside the fixed plan
		}
		if booked {
			s.Status = model.SeatBooked
			if gender.Valid {
				s.Gender = model.Gender(gender.String)
			}
			if bookedAt.Valid {
				t := bookedAt.Time.UTC()
				s.BookedAt = &t
			}
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// BookSeats transitions every listed seat from available to booked in one
// conditional update.  The UPDATE carries the precondition `booked = 0` on
// every target; when the affected row count falls short of the target count
// the transaction is rolled back and engine.ErrSeatsTaken is returned, so
// two parties racing for an overlapping seat set can never both win and a
// booking can never persist with only some of its seats.
func (r *SeatRepo) BookSeats(ctx context.Context, numbers []int, gender model.Gender, bookedAt time.Time) error {
	if len(numbers) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	query := `UPDATE seats SET booked = 1, gender = ?, booked_at = ? WHERE booked = 0 AND number IN (` +
		placeholders(len(numbers)) + `)`
	args := make([]interface{}, 0, len(numbers)+2)
	args = append(args, string(gender), bookedAt.UTC().Format("2006-01-02 15:04:05"))
	for _, n := range numbers {
		args = append(args, n)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != int64(len(numbers)) {
		return engine.ErrSeatsTaken
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Unavailable returns the members of numbers that are currently booked,
// ordered by number.  Called after a rejected commit to report exactly
// which seats were lost to a concurrent booking.
func (r *SeatRepo) Unavailable(ctx context.Context, numbers []int) ([]int, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	query := `SELECT number FROM seats WHERE booked = 1 AND number IN (` +
		placeholders(len(numbers)) + `) ORDER BY number`
	args := make([]interface{}, 0, len(numbers))
	for _, n := range numbers {
		args = append(args, n)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lost []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		lost = append(lost, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lost, nil
}

// placeholders returns n comma-separated `?` markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
