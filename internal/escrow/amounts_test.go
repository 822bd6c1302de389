package escrow

import "testing"

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.005, 1.0},
		{10.005, 10.0},
		{102.4999, 102.5},
		{99.999, 100.0},
		{-1.005, -1.0},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Fatalf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRecalc(t *testing.T) {
	fig := Recalc(100, 2, 100)
	if fig.Display != 102 {
		t.Fatalf("display = %v, want 102", fig.Display)
	}
	if fig.Remaining != 100 {
		t.Fatalf("remaining = %v, want 100", fig.Remaining)
	}
	if fig.Release != 98 {
		t.Fatalf("release = %v, want 98", fig.Release)
	}
}

func TestRecalcClampsReleaseAtZero(t *testing.T) {
	fig := Recalc(100, 2, 1)
	if fig.Release != 0 {
		t.Fatalf("release = %v, want 0", fig.Release)
	}
}
