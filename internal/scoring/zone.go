package scoring

// Zone is an index into the fixed ordered list of score bands. Higher zone
// index means higher score, which means the price sits closer to the low
// line. Changing the scheme invalidates persisted zone values; flush the
// alert state keys if these thresholds ever change.
type Zone int

// zoneThresholds[i] is the lower score edge of zone i+1. Zone 0 has no lower
// edge (it starts at the score floor).
var zoneThresholds = [...]float64{2, 5, 7}

// Names are price-relative: zone 1 covers scores [2,5), which puts the price
// above the halfway score line.
var zoneNames = [...]string{
	"Sell Zone",
	"Above Halfway Point",
	"Below Halfway Point",
	"Buy Zone",
}

// ZoneCount is the number of zones in the active scheme.
const ZoneCount = len(zoneThresholds) + 1

// ZoneOf classifies a score. Ties at an exact threshold belong to the
// higher zone.
func ZoneOf(score float64) Zone {
	for i := len(zoneThresholds) - 1; i >= 0; i-- {
		if score >= zoneThresholds[i] {
			return Zone(i + 1)
		}
	}
	return 0
}

// Name returns the human-readable band name, or "Unknown" for an index
// outside the scheme (e.g. stale persisted state after a scheme change).
func (z Zone) Name() string {
	if z < 0 || int(z) >= len(zoneNames) {
		return "Unknown"
	}
	return zoneNames[z]
}

// LowerEdge returns the score threshold at the bottom of zone z, and false
// for zone 0 which is bounded by the score floor.
func (z Zone) LowerEdge() (float64, bool) {
	if z <= 0 || int(z) > len(zoneThresholds) {
		return 0, false
	}
	return zoneThresholds[z-1], true
}
