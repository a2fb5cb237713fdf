package scoring

import "testing"

func zptr(z Zone) *Zone { return &z }

func TestDetectNoChange(t *testing.T) {
	c := Detect(zptr(2), 2)
	if c.Occurred {
		t.Errorf("same zone should not be a crossing")
	}
	if c.Direction != DirectionFlat {
		t.Errorf("direction = %s, want FLAT", c.Direction)
	}
}

func TestDetectFirstSightingSeedsHistory(t *testing.T) {
	c := Detect(nil, 1)
	if c.Occurred {
		t.Errorf("first-ever observation must not count as a crossing")
	}
}

func TestDetectAdjacentMoves(t *testing.T) {
	// Score rose 1 -> 2: price moved down through the 5 line.
	c := Detect(zptr(1), 2)
	if !c.Occurred || c.Direction != DirectionDown || c.Boundary != 5 {
		t.Errorf("1->2: got %+v", c)
	}

	// Score fell 2 -> 1: price moved up through the 5 line.
	c = Detect(zptr(2), 1)
	if !c.Occurred || c.Direction != DirectionUp || c.Boundary != 5 {
		t.Errorf("2->1: got %+v", c)
	}

	c = Detect(zptr(0), 1)
	if !c.Occurred || c.Direction != DirectionDown || c.Boundary != 2 {
		t.Errorf("0->1: got %+v", c)
	}

	c = Detect(zptr(3), 2)
	if !c.Occurred || c.Direction != DirectionUp || c.Boundary != 7 {
		t.Errorf("3->2: got %+v", c)
	}
}

func TestDetectMultiZoneJumpReportsNearestBoundary(t *testing.T) {
	// 1 -> 3 skips zone 2; only the first boundary from the origin is reported.
	c := Detect(zptr(1), 3)
	if !c.Occurred {
		t.Fatalf("1->3 must be a crossing")
	}
	if c.Boundary != 5 {
		t.Errorf("1->3 boundary = %v, want 5", c.Boundary)
	}

	c = Detect(zptr(3), 0)
	if c.Boundary != 7 {
		t.Errorf("3->0 boundary = %v, want 7", c.Boundary)
	}
}
