// Package scoring maps a price inside a fixed [low, high] band to a
// normalized 0-10 score on a logarithmic scale and classifies scores into
// alert zones. Low maps to 10 (maximum upside), high maps to 0.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

const (
	// ScoreFloor and ScoreCeiling bound every score. The high line scores
	// ScoreFloor, the low line scores ScoreCeiling.
	ScoreFloor   = 0.0
	ScoreCeiling = 10.0
)

// ErrInvalidRange marks a malformed band (low <= 0 or high <= low). It is a
// caller bug, fatal to that ticker's scoring but never to a batch.
var ErrInvalidRange = errors.New("invalid band range")

// Score computes the log-scale position of price inside [low, high]. Prices
// outside the band saturate at the boundary score.
func Score(price, low, high float64) (float64, error) {
	if low <= 0 || high <= low {
		return 0, fmt.Errorf("score: low=%v high=%v: %w", low, high, ErrInvalidRange)
	}

	p := math.Min(math.Max(price, low), high)
	s := ScoreFloor + (ScoreCeiling-ScoreFloor)*(math.Log(high/p)/math.Log(high/low))

	// Guard against float drift at the edges.
	return math.Max(ScoreFloor, math.Min(ScoreCeiling, s)), nil
}

// PriceAtScore inverts the scoring formula: the price at which a ticker with
// band [low, high] would score exactly s. Used to report the dollar level of
// a crossed boundary line.
func PriceAtScore(low, high, s float64) float64 {
	ratio := high / low
	return high / math.Pow(ratio, s/(ScoreCeiling-ScoreFloor))
}
