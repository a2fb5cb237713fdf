package scoring

// Direction is the PRICE direction of a move, not the zone-index direction.
// A lower zone index means a lower score, which means the price went up.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionFlat Direction = "FLAT"
)

// Crossing describes a zone transition between two observations.
type Crossing struct {
	Occurred bool
	// Boundary is the score threshold crossed, valid only when Occurred.
	// When a move skips several zones in one poll, this is the boundary
	// nearest the originating zone; intermediate boundaries are not walked.
	Boundary  float64
	Direction Direction
}

// Detect compares the previous zone against the new one. A nil from seeds
// history: the first-ever observation of a ticker never counts as a crossing.
func Detect(from *Zone, to Zone) Crossing {
	if from == nil || *from == to {
		return Crossing{Direction: DirectionFlat}
	}

	c := Crossing{Occurred: true}
	if to > *from {
		// Score rose, price fell. First boundary above the origin.
		c.Direction = DirectionDown
		c.Boundary, _ = (*from + 1).LowerEdge()
	} else {
		// Score fell, price rose. Origin's own lower edge.
		c.Direction = DirectionUp
		c.Boundary, _ = (*from).LowerEdge()
	}
	return c
}
