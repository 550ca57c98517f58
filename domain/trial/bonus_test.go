package trial

import "testing"

func TestBonusZeroMaxWins(t *testing.T) {
	if got := Bonus(10, 0, DefaultBonusMaxEUR); got != 0.0 {
		t.Fatalf("expected 0.0 when maxWins is 0, got %v", got)
	}
}

func TestBonusPerfectSession(t *testing.T) {
	if got := Bonus(150, 150, DefaultBonusMaxEUR); got != DefaultBonusMaxEUR {
		t.Fatalf("expected full payout, got %v", got)
	}
}

func TestBonusZeroWins(t *testing.T) {
	if got := Bonus(0, 150, DefaultBonusMaxEUR); got != 0.0 {
		t.Fatalf("expected 0.0 for zero wins, got %v", got)
	}
}

func TestBonusSnapsToHalfEuro(t *testing.T) {
	cases := []struct {
		wins, maxWins int
		maxEUR        float64
		want          float64
	}{
		// Exact halves pass through.
		{1, 2, 3.0, 1.5},
		{1, 3, 3.0, 1.0},
		// Ties round half to even: raw 0.25 snaps down, raw 0.75 up.
		{1, 4, 1.0, 0.0},
		{3, 4, 1.0, 1.0},
		{1, 12, 3.0, 0.0},
	}
	for _, c := range cases {
		if got := Bonus(c.wins, c.maxWins, c.maxEUR); got != c.want {
			t.Errorf("Bonus(%d, %d, %v) = %v, want %v", c.wins, c.maxWins, c.maxEUR, got, c.want)
		}
	}
}

func TestBonusMonotone(t *testing.T) {
	const maxWins = 150
	prev := 0.0
	for wins := 0; wins <= maxWins; wins++ {
		got := Bonus(wins, maxWins, DefaultBonusMaxEUR)
		if got < prev {
			t.Fatalf("bonus decreased at wins=%d: %v < %v", wins, got, prev)
		}
		if got < 0 || got > DefaultBonusMaxEUR {
			t.Fatalf("bonus out of range at wins=%d: %v", wins, got)
		}
		prev = got
	}
}

func TestConditionCode(t *testing.T) {
	if ConditionNonSalient.Code() != 0 || ConditionSalient.Code() != 1 || ConditionMissed.Code() != 2 {
		t.Fatal("condition codes must be 0/1/2")
	}
}
