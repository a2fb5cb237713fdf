package ratelimit

import "testing"

func TestAllowConsumesCapacity(t *testing.T) {
    l := New(2, 0.0001) // effectively no refill within the test
    if !l.Allow() {
        t.Fatalf("first call should pass")
    }
    if !l.Allow() {
        t.Fatalf("second call should pass")
    }
    if l.Allow() {
        t.Fatalf("bucket should be empty")
    }
}

func TestAllowRefills(t *testing.T) {
    l := New(1, 60)
    if !l.Allow() {
        t.Fatalf("first call should pass")
    }
    // Backdate the last refill instead of sleeping.
    l.mu.Lock()
    l.last = l.last.Add(-2e9) // 2s ago, refill rate is 1/s
    l.mu.Unlock()
    if !l.Allow() {
        t.Fatalf("bucket should have refilled")
    }
}
