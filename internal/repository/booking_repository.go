package repository

import (
	"context"
	"database/sql"
	"strings"
)

// BookingRepo records committed bookings and their seats.  A booking row
// groups the seats committed under one transaction id; the seat numbers
// live in the booking_seats table.  Timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingRecord mirrors the bookings table plus its seat numbers.  It is
// the shape handlers serialize for booking history endpoints.
type BookingRecord struct {
	ID               uint64  `json:"id"`
	TransactionID    string  `json:"transaction_id"`
	UserID           uint64  `json:"-"`
	Gender           string  `json:"gender"`
	SeatCount        int     `json:"seat_count"`
	TotalAmountCents uint32  `json:"total_amount_cents"`
	CreatedAt        string  `json:"created_at"`
	Seats            []int   `json:"seats"`
}

// Create inserts a booking and its seats in one transaction and populates
// the generated ID on the record.  The seat state itself has already been
// committed through the SeatRepo's conditional update; this is the durable
// history the party and downstream collaborators read back.
func (r *BookingRepo) Create(ctx context.Context, rec *BookingRecord) error {
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
	const q = `INSERT INTO bookings (transaction_id, user_id, gender, seat_count, total_amount_cents) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rec.TransactionID, rec.UserID, rec.Gender, rec.SeatCount, rec.TotalAmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	if len(rec.Seats) > 0 {
		query := `INSERT INTO booking_seats (booking_id, seat_number) VALUES `
		args := make([]interface{}, 0, len(rec.Seats)*2)
		for i, n := range rec.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, rec.ID, n)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	// Query back the creation timestamp set by the database.
	var created string
	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, rec.ID).Scan(&created); err != nil {
		return err
	}
	rec.CreatedAt = created
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByUser returns all bookings for the given user, newest first, with
// their seat numbers populated.  When no bookings exist an empty slice is
// returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingRecord, error) {
	const q = `SELECT id, transaction_id, user_id, gender, seat_count, total_amount_cents, created_at
	           FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]BookingRecord, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var rec BookingRecord
		if err := rows.Scan(&rec.ID, &rec.TransactionID, &rec.UserID, &rec.Gender,
			&rec.SeatCount, &rec.TotalAmountCents, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Seats = []int{}
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}
	// Populate seats for all bookings in a single query.
	ids := make([]interface{}, 0, len(records))
	marks := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
		marks = append(marks, "?")
	}
	seatQ := `SELECT booking_id, seat_number FROM booking_seats
	          WHERE booking_id IN (` + strings.Join(marks, ",") + `)
	          ORDER BY booking_id, seat_number`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var n int
		if err := srows.Scan(&bid, &n); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			records[idx].Seats = append(records[idx].Seats, n)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetByIDForUser returns a single booking with seats, enforcing ownership.
// sql.ErrNoRows is returned when the booking does not exist; ErrForbidden
// when it belongs to another user.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*BookingRecord, error) {
	const q = `SELECT id, transaction_id, user_id, gender, seat_count, total_amount_cents, created_at
	           FROM bookings WHERE id = ?`
	var rec BookingRecord
	if err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&rec.ID, &rec.TransactionID, &rec.UserID,
		&rec.Gender, &rec.SeatCount, &rec.TotalAmountCents, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, ErrForbidden
	}
	rec.Seats = []int{}
	const seatQ = `SELECT seat_number FROM booking_seats WHERE booking_id = ? ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, seatQ, rec.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		rec.Seats = append(rec.Seats, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}
