package util

import (
    "testing"
    "time"
)

func TestDayStringRoundTrip(t *testing.T) {
    day := time.Date(2025, 10, 10, 15, 4, 5, 0, time.UTC)
    s := DayString(day)
    if s != "2025-10-10" {
        t.Fatalf("unexpected day string %q", s)
    }
    got, ok := ParseDay(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Year() != 2025 || got.Month() != time.October || got.Day() != 10 {
        t.Fatalf("unexpected date %v", got)
    }
}

func TestParseDayInvalid(t *testing.T) {
    if _, ok := ParseDay(""); ok {
        t.Fatalf("empty string should not parse")
    }
    if _, ok := ParseDay("10/10/2025"); ok {
        t.Fatalf("wrong layout should not parse")
    }
}

func TestLatestDay(t *testing.T) {
    got := LatestDay([]string{"2025-01-02", "2025-10-10", "2024-12-31"})
    if got != "2025-10-10" {
        t.Fatalf("expected 2025-10-10, got %s", got)
    }
    if LatestDay(nil) != "" {
        t.Fatalf("empty input should yield empty string")
    }
}
