package model

import "testing"

func TestGenderValid(t *testing.T) {
	cases := []struct {
		g    Gender
		want bool
	}{
		{GenderMale, true},
		{GenderFemale, true},
		{"", false},
		{"Male", false},
		{"other", false},
	}
	for _, tc := range cases {
		if got := tc.g.Valid(); got != tc.want {
			t.Errorf("Gender(%q).Valid() = %v, want %v", tc.g, got, tc.want)
		}
	}
}

func TestNewSeat(t *testing.T) {
	s, ok := NewSeat(5)
	if !ok {
		t.Fatal("NewSeat(5) not ok")
	}
	if s.Number != 5 || s.Status != SeatAvailable {
		t.Errorf("seat = %+v", s)
	}
	if s.Row != 1 || s.Side != "right" || s.Column != 0 {
		t.Errorf("seat 5 coords = row %d side %s col %d", s.Row, s.Side, s.Column)
	}
	if _, ok := NewSeat(0); ok {
		t.Error("NewSeat(0) must fail")
	}
	if _, ok := NewSeat(45); ok {
		t.Error("NewSeat(45) must fail")
	}
}
