package usecase

import (
	"context"
	"fmt"
	"sync"

	"rrtracker/internal/domain/models"
	drepo "rrtracker/internal/domain/repository"
	xlogger "rrtracker/pkg/logger"
)

func testLogger() *xlogger.Logger {
	l, _ := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	return l
}

type fakeTickers struct {
	specs []models.TickerSpec
	err   error
}

func (f *fakeTickers) List(context.Context) ([]models.TickerSpec, error) {
	return f.specs, f.err
}

type fakeOracle struct {
	prices      map[string]float64
	rateLimited map[string]bool
	calls       []string
}

func (f *fakeOracle) Resolve(_ context.Context, symbol string) (*models.PriceObservation, error) {
	f.calls = append(f.calls, symbol)
	if f.rateLimited[symbol] {
		return nil, fmt.Errorf("throttled %s: %w", symbol, drepo.ErrRateLimited)
	}
	price, ok := f.prices[symbol]
	if !ok {
		return nil, fmt.Errorf("no data %s: %w", symbol, drepo.ErrPriceNotFound)
	}
	return &models.PriceObservation{Symbol: symbol, Price: price, AsOfDate: "2026-08-28"}, nil
}

type memState struct {
	states map[string]*models.AlertState
	cursor int
	getErr error
	setErr error
}

func newMemState() *memState {
	return &memState{states: make(map[string]*models.AlertState)}
}

func (m *memState) GetAlertState(_ context.Context, symbol string) (*models.AlertState, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	st, ok := m.states[symbol]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (m *memState) SetAlertState(_ context.Context, symbol string, st *models.AlertState) error {
	if m.setErr != nil {
		return m.setErr
	}
	cp := *st
	m.states[symbol] = &cp
	return nil
}

func (m *memState) GetCursor(context.Context) (int, error) { return m.cursor, nil }

func (m *memState) SetCursor(_ context.Context, cursor int) error {
	m.cursor = cursor
	return nil
}

type fakeSubs struct {
	active []string
	err    error
}

func (f *fakeSubs) Active(context.Context) ([]string, error) { return f.active, f.err }
func (f *fakeSubs) Add(_ context.Context, e string) (string, error) {
	return e, nil
}
func (f *fakeSubs) Remove(_ context.Context, e string) (string, error)        { return e, nil }
func (f *fakeSubs) Unsubscribe(_ context.Context, e string) (string, error)   { return e, nil }
func (f *fakeSubs) Resubscribe(_ context.Context, e string) (string, error)   { return e, nil }
func (f *fakeSubs) IsUnsubscribed(context.Context, string) (bool, error)      { return false, nil }

type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	lastSub string
	lastHTM string
	failFor map[string]bool
}

func (f *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return fmt.Errorf("bounced %s", to)
	}
	f.sent = append(f.sent, to)
	f.lastSub = subject
	f.lastHTM = html
	return nil
}

type fakePublisher struct {
	events []*models.CrossingEvent
}

func (f *fakePublisher) PublishCrossing(_ context.Context, ev *models.CrossingEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeSink struct {
	records int
}

func (f *fakeSink) Record(context.Context, *models.PriceObservation, float64, int) error {
	f.records++
	return nil
}

func (f *fakeSink) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordTickerChecked(string)              {}
func (nopMetrics) RecordCrossing(string, string)           {}
func (nopMetrics) RecordEmail(string)                      {}
func (nopMetrics) RecordRateLimited()                      {}
func (nopMetrics) RecordError(string)                      {}
func (nopMetrics) RecordObservation(string, float64, float64) {}
func (nopMetrics) RecordRunDuration(float64)               {}
