package layout

import "testing"

// Every seat number must map to a coordinate inside the fixed grid, and the
// numbering must cover 1..44 exactly once.
func TestPositionsCoverGrid(t *testing.T) {
	seen := map[Position]int{}
	for n := 1; n <= SeatCount; n++ {
		p, ok := PositionOf(n)
		if !ok {
			t.Fatalf("PositionOf(%d) not ok", n)
		}
		if p.Row < 0 || p.Row >= RowCount {
			t.Errorf("seat %d: row %d out of range", n, p.Row)
		}
		if p.Column != 0 && p.Column != 1 {
			t.Errorf("seat %d: column %d out of range", n, p.Column)
		}
		if prev, dup := seen[p]; dup {
			t.Errorf("seats %d and %d share position %+v", prev, n, p)
		}
		seen[p] = n
	}
	// Partial rows carry only the right-side pair.
	for _, n := range []int{1, 2, 43, 44} {
		p, _ := PositionOf(n)
		if p.Side != SideRight {
			t.Errorf("seat %d: want right side, got %v", n, p.Side)
		}
	}
	if p, _ := PositionOf(1); p.Row != 0 {
		t.Errorf("seat 1: want row 0, got %d", p.Row)
	}
	if p, _ := PositionOf(44); p.Row != RowCount-1 {
		t.Errorf("seat 44: want row %d, got %d", RowCount-1, p.Row)
	}
}

func TestPositionOfInvalid(t *testing.T) {
	for _, n := range []int{0, -1, 45, 100} {
		if _, ok := PositionOf(n); ok {
			t.Errorf("PositionOf(%d) ok for invalid seat", n)
		}
		if nb := Neighbors(n); nb != nil {
			t.Errorf("Neighbors(%d) = %v for invalid seat", n, nb)
		}
	}
}

// Neighbors must stay on the same bench: same row, same side, exactly one
// column apart.  On this coach every seat has exactly one bench mate.
func TestNeighborsSameBenchOnly(t *testing.T) {
	for n := 1; n <= SeatCount; n++ {
		p, _ := PositionOf(n)
		nb := Neighbors(n)
		if len(nb) != 1 {
			t.Fatalf("seat %d: want 1 neighbor, got %v", n, nb)
		}
		q, _ := PositionOf(nb[0])
		if q.Row != p.Row || q.Side != p.Side {
			t.Errorf("seat %d: neighbor %d crosses row or aisle", n, nb[0])
		}
		if d := q.Column - p.Column; d != 1 && d != -1 {
			t.Errorf("seat %d: neighbor %d column delta %d", n, nb[0], d)
		}
		// The relation is symmetric.
		back := Neighbors(nb[0])
		if len(back) != 1 || back[0] != n {
			t.Errorf("seat %d: neighbor relation not symmetric, got %v", n, back)
		}
	}
}

func TestNeighborsKnownPairs(t *testing.T) {
	cases := []struct {
		seat, want int
	}{
		{1, 2}, {2, 1}, // front partial row
		{3, 4}, {4, 3}, // first full row, left bench
		{5, 6}, {6, 5}, // first full row, right bench
		{43, 44}, {44, 43}, // rear partial row
	}
	for _, tc := range cases {
		nb := Neighbors(tc.seat)
		if len(nb) != 1 || nb[0] != tc.want {
			t.Errorf("Neighbors(%d) = %v, want [%d]", tc.seat, nb, tc.want)
		}
	}
	// Aisle mates are never neighbors: 4 (left bench) and 5 (right bench)
	// share row 1 but sit across the aisle.
	if nb := Neighbors(4); nb[0] == 5 {
		t.Errorf("seats 4 and 5 must not be neighbors across the aisle")
	}
}

func TestSeatNumbers(t *testing.T) {
	ns := SeatNumbers()
	if len(ns) != SeatCount {
		t.Fatalf("want %d seats, got %d", SeatCount, len(ns))
	}
	for i, n := range ns {
		if n != i+1 {
			t.Fatalf("SeatNumbers()[%d] = %d, want %d", i, n, i+1)
		}
	}
}
