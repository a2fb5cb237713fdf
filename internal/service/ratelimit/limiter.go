package ratelimit

import (
    "sync"
    "time"
)

// Limiter is a single token bucket used to pace calls against the market
// data free tier. One upstream, one bucket.
type Limiter struct {
    mu         sync.Mutex
    tokens     float64
    capacity   float64
    refillRate float64 // tokens per second
    last       time.Time
}

// New creates a limiter allowing roughly perMinute requests per minute with
// bursts up to capacity.
func New(capacity, perMinute float64) *Limiter {
    return &Limiter{
        tokens:     capacity,
        capacity:   capacity,
        refillRate: perMinute / 60.0,
        last:       time.Now(),
    }
}

// Allow returns true if one token can be consumed.
func (l *Limiter) Allow() bool {
    now := time.Now()
    l.mu.Lock()
    defer l.mu.Unlock()

    elapsed := now.Sub(l.last).Seconds()
    if elapsed > 0 {
        l.tokens += elapsed * l.refillRate
        if l.tokens > l.capacity {
            l.tokens = l.capacity
        }
        l.last = now
    }
    if l.tokens >= 1 {
        l.tokens -= 1
        return true
    }
    return false
}
