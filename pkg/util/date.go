package util

import "time"

const dayLayout = "2006-01-02"

// DayString formats t as a calendar date (YYYY-MM-DD), the format market
// data feeds use for daily closes.
func DayString(t time.Time) string {
    return t.Format(dayLayout)
}

// ParseDay parses a YYYY-MM-DD date. Returns (t, true) if it parsed.
func ParseDay(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    t, err := time.Parse(dayLayout, s)
    if err != nil {
        return time.Time{}, false
    }
    return t, true
}

// LatestDay returns the lexicographically greatest date key of a set of
// YYYY-MM-DD keys, which for this layout is also the most recent day.
func LatestDay(keys []string) string {
    var latest string
    for _, k := range keys {
        if k > latest {
            latest = k
        }
    }
    return latest
}
