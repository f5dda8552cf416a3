// Package layout describes the fixed seating plan of the bus.  The plan is
// configuration, not runtime state: seat numbers, grid coordinates and the
// neighbor relation never change for a given coach.  Occupancy lives in the
// engine package; everything here is pure and allocation-light so callers may
// query it on every seat toggle.
package layout

// Side identifies which side of the center aisle a seat sits on.
type Side uint8

const (
	// SideLeft is the driver's side pair of a row.
	SideLeft Side = iota
	// SideRight is the door side pair of a row.
	SideRight
)

// String returns "left" or "right" for logging and JSON payloads.
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Grid dimensions of the executive coach.  Rows 0 and 11 hold only the
// right-side pair (front door clearance and the rear bench cutout), rows 1
// through 10 hold two seats on each side of the aisle.
const (
	SeatCount = 44 // total bookable seats, numbered 1..44
	RowCount  = 12 // grid rows, 0 = front
)

// Position is the grid coordinate of one seat.  Column is 0 or 1 within the
// seat's side; the aisle runs between the two sides.
type Position struct {
	Row    int  // 0-based row from the front of the bus
	Side   Side // side of the aisle
	Column int  // 0 = aisle-adjacent on the left pair, window on the right pair
}

// positions maps seat number (index 1..SeatCount) to its grid coordinate.
// Index 0 is unused so the table reads in seat numbers directly.
var positions [SeatCount + 1]Position

func init() {
	// Front partial row: seats 1 and 2 on the right of the aisle.
	positions[1] = Position{Row: 0, Side: SideRight, Column: 0}
	positions[2] = Position{Row: 0, Side: SideRight, Column: 1}
	// Full rows 1..10: four seats each, numbered left to right.
	n := 3
	for row := 1; row <= 10; row++ {
		positions[n] = Position{Row: row, Side: SideLeft, Column: 0}
		positions[n+1] = Position{Row: row, Side: SideLeft, Column: 1}
		positions[n+2] = Position{Row: row, Side: SideRight, Column: 0}
		positions[n+3] = Position{Row: row, Side: SideRight, Column: 1}
		n += 4
	}
	// Rear partial row: seats 43 and 44 on the right of the aisle.
	positions[43] = Position{Row: 11, Side: SideRight, Column: 0}
	positions[44] = Position{Row: 11, Side: SideRight, Column: 1}
}

// Valid reports whether n is a seat number on this coach.
func Valid(n int) bool { return n >= 1 && n <= SeatCount }

// PositionOf returns the grid coordinate of seat n.  The boolean is false
// when n is not a valid seat number.
func PositionOf(n int) (Position, bool) {
	if !Valid(n) {
		return Position{}, false
	}
	return positions[n], true
}

// Neighbors returns the seats sharing a bench with seat n, in ascending
// order.  Two seats are neighbors only when they occupy the same row on the
// same side of the aisle and differ by one column; seats across the aisle or
// in another row are not neighbors.  Invalid seat numbers yield nil.
func Neighbors(n int) []int {
	p, ok := PositionOf(n)
	if !ok {
		return nil
	}
	var out []int
	for m := 1; m <= SeatCount; m++ {
		if m == n {
			continue
		}
		q := positions[m]
		if q.Row == p.Row && q.Side == p.Side && abs(q.Column-p.Column) == 1 {
			out = append(out, m)
		}
	}
	return out
}

// SeatNumbers returns all seat numbers in ascending order.
func SeatNumbers() []int {
	out := make([]int, 0, SeatCount)
	for n := 1; n <= SeatCount; n++ {
		out = append(out, n)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
