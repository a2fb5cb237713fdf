package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestScoreBoundarySaturation(t *testing.T) {
	s, err := Score(10, 10, 20)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if s != ScoreCeiling {
		t.Errorf("price at low should score %v, got %v", ScoreCeiling, s)
	}

	s, err = Score(20, 10, 20)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if s != ScoreFloor {
		t.Errorf("price at high should score %v, got %v", ScoreFloor, s)
	}
}

func TestScoreClampsOutsideBand(t *testing.T) {
	below, _ := Score(5, 10, 20)
	if below != ScoreCeiling {
		t.Errorf("price below low should saturate at %v, got %v", ScoreCeiling, below)
	}
	above, _ := Score(95, 10, 20)
	if above != ScoreFloor {
		t.Errorf("price above high should saturate at %v, got %v", ScoreFloor, above)
	}
}

func TestScoreStrictlyDecreasingInPrice(t *testing.T) {
	prev := math.Inf(1)
	for price := 10.5; price < 20; price += 0.5 {
		s, err := Score(price, 10, 20)
		if err != nil {
			t.Fatalf("Score(%v): %v", price, err)
		}
		if s <= 0 || s >= ScoreCeiling {
			t.Errorf("interior price %v scored %v, want strictly inside (0, %v)", price, s, ScoreCeiling)
		}
		if s >= prev {
			t.Errorf("score not strictly decreasing at price %v: %v >= %v", price, s, prev)
		}
		prev = s
	}
}

func TestScoreInvalidRange(t *testing.T) {
	cases := []struct{ low, high float64 }{
		{0, 20},
		{-1, 20},
		{10, 10},
		{20, 10},
	}
	for _, tc := range cases {
		if _, err := Score(15, tc.low, tc.high); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Score(low=%v, high=%v) error = %v, want ErrInvalidRange", tc.low, tc.high, err)
		}
	}
}

func TestPriceAtScoreInvertsScore(t *testing.T) {
	low, high := 10.0, 20.0
	for _, s := range []float64{0, 2, 5, 7, 10} {
		p := PriceAtScore(low, high, s)
		back, err := Score(p, low, high)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if math.Abs(back-s) > 1e-9 {
			t.Errorf("round trip at score %v: price %v scored %v", s, p, back)
		}
	}
	if p := PriceAtScore(low, high, ScoreCeiling); math.Abs(p-low) > 1e-9 {
		t.Errorf("score %v should invert to low, got %v", ScoreCeiling, p)
	}
	if p := PriceAtScore(low, high, ScoreFloor); math.Abs(p-high) > 1e-9 {
		t.Errorf("score %v should invert to high, got %v", ScoreFloor, p)
	}
}

func TestZoneOfThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  Zone
	}{
		{0, 0},
		{1.9, 0},
		{2.0, 1},
		{4.99, 1},
		{5.0, 2},
		{6.99, 2},
		{7.0, 3},
		{10, 3},
	}
	for _, tc := range cases {
		if got := ZoneOf(tc.score); got != tc.want {
			t.Errorf("ZoneOf(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestZoneNames(t *testing.T) {
	if Zone(0).Name() != "Sell Zone" {
		t.Errorf("zone 0 name: %s", Zone(0).Name())
	}
	if Zone(3).Name() != "Buy Zone" {
		t.Errorf("zone 3 name: %s", Zone(3).Name())
	}
	if Zone(9).Name() != "Unknown" {
		t.Errorf("out of range zone should be Unknown, got %s", Zone(9).Name())
	}
}
