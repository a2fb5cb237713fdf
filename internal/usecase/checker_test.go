package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"rrtracker/internal/domain/models"
	"rrtracker/internal/service/unsub"
)

func tickerList(n int) []models.TickerSpec {
	specs := make([]models.TickerSpec, n)
	for i := range specs {
		specs[i] = models.TickerSpec{Symbol: fmt.Sprintf("T%d", i), Low: 10, High: 20}
	}
	return specs
}

func priceMap(specs []models.TickerSpec, price float64) map[string]float64 {
	m := make(map[string]float64, len(specs))
	for _, s := range specs {
		m[s.Symbol] = price
	}
	return m
}

func newTestChecker(tickers *fakeTickers, oracle *fakeOracle, state *memState, subs *fakeSubs, mailer *fakeMailer, perRun int, opts ...CheckerOption) *CrossingChecker {
	notifier := NewNotifier(subs, mailer, unsub.NewSigner("test-secret"), nopMetrics{}, testLogger(),
		"https://rr.example.com", 7*24*time.Hour)
	return NewCrossingChecker(tickers, oracle, state, notifier, nopMetrics{}, testLogger(), perRun, opts...)
}

func TestRunCursorWraparound(t *testing.T) {
	specs := tickerList(10)
	oracle := &fakeOracle{prices: priceMap(specs, 15)}
	state := newMemState()
	state.cursor = 8

	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, &fakeSubs{}, &fakeMailer{}, 4)

	sum, err := checker.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantCalls := []string{"T8", "T9", "T0", "T1"}
	if len(oracle.calls) != len(wantCalls) {
		t.Fatalf("oracle calls = %v, want %v", oracle.calls, wantCalls)
	}
	for i, want := range wantCalls {
		if oracle.calls[i] != want {
			t.Errorf("call[%d] = %s, want %s", i, oracle.calls[i], want)
		}
	}

	if sum.Processed != 4 || sum.Total != 10 || sum.NextCursor != 2 || sum.RateLimited {
		t.Errorf("summary = %+v, want processed=4 total=10 nextCursor=2", sum)
	}
	if state.cursor != 2 {
		t.Errorf("persisted cursor = %d, want 2", state.cursor)
	}

	// First sighting seeds state without alerting.
	st := state.states["T8"]
	if st == nil || st.LastZone == nil || *st.LastZone != 1 {
		t.Errorf("T8 state = %+v, want seeded lastZone 1", st)
	}
	if sum.Sent != 0 {
		t.Errorf("sent = %d on seed run, want 0", sum.Sent)
	}
}

func TestRunRateLimitFreezesCursor(t *testing.T) {
	specs := tickerList(6)
	oracle := &fakeOracle{
		prices:      priceMap(specs, 15),
		rateLimited: map[string]bool{"T2": true},
	}
	state := newMemState()

	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, &fakeSubs{}, &fakeMailer{}, 4)

	sum, err := checker.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !sum.RateLimited {
		t.Error("RateLimited = false, want true")
	}
	if sum.Processed != 2 {
		t.Errorf("Processed = %d, want 2", sum.Processed)
	}
	if sum.NextCursor != 0 || state.cursor != 0 {
		t.Errorf("cursor advanced to %d, want frozen at 0", state.cursor)
	}
	if _, touched := state.states["T3"]; touched {
		t.Error("tickers after the rate limit point must not be processed")
	}
}

func TestRunEmptyList(t *testing.T) {
	checker := newTestChecker(&fakeTickers{}, &fakeOracle{}, newMemState(), &fakeSubs{}, &fakeMailer{}, 4)

	sum, err := checker.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 0 || sum.Total != 0 || sum.Sent != 0 {
		t.Errorf("summary = %+v, want all zero", sum)
	}
}

func TestRunForceAll(t *testing.T) {
	specs := tickerList(7)
	oracle := &fakeOracle{prices: priceMap(specs, 15)}
	state := newMemState()
	state.cursor = 5

	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, &fakeSubs{}, &fakeMailer{}, 4)

	sum, err := checker.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 7 {
		t.Errorf("Processed = %d, want 7", sum.Processed)
	}
	if oracle.calls[0] != "T0" {
		t.Errorf("force-all must start at position 0, got %s", oracle.calls[0])
	}
	if sum.NextCursor != 0 {
		t.Errorf("NextCursor = %d, want 0", sum.NextCursor)
	}
}

func TestRunPriceNotFoundContinues(t *testing.T) {
	specs := tickerList(3)
	oracle := &fakeOracle{prices: map[string]float64{"T0": 15, "T2": 15}} // T1 has no data
	state := newMemState()

	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, &fakeSubs{}, &fakeMailer{}, 4)

	sum, err := checker.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 3 || sum.RateLimited {
		t.Errorf("summary = %+v, want processed=3 not rate limited", sum)
	}
	if _, ok := state.states["T1"]; ok {
		t.Error("state must stay untouched for a symbol without data")
	}
	if _, ok := state.states["T2"]; !ok {
		t.Error("symbols after a not-found must still be processed")
	}
}

func TestRunCrossingEndToEnd(t *testing.T) {
	// low=10 high=20, price 13.2 scores just under 6.0 which lands in zone 2.
	specs := []models.TickerSpec{{Symbol: "XYZ", Low: 10, High: 20}}
	oracle := &fakeOracle{prices: map[string]float64{"XYZ": 13.2}}
	state := newMemState()
	prior := 1
	state.states["XYZ"] = &models.AlertState{LastZone: &prior}

	subs := &fakeSubs{active: []string{"a@example.com", "b@example.com"}}
	mailer := &fakeMailer{}
	pub := &fakePublisher{}
	sink := &fakeSink{}

	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, subs, mailer, 4,
		WithAlertPublisher(pub), WithObservationSink(sink))

	sum, err := checker.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Sent != 1 {
		t.Errorf("Sent = %d, want 1", sum.Sent)
	}
	if len(mailer.sent) != 2 {
		t.Errorf("deliveries = %d, want 2", len(mailer.sent))
	}
	if !strings.Contains(mailer.lastSub, "XYZ moved DOWN in price into Below Halfway Point") {
		t.Errorf("subject = %q", mailer.lastSub)
	}
	// Boundary 5 inverts to 20 / 2^0.5.
	if !strings.Contains(mailer.lastHTM, "5-line near ~$14.14") {
		t.Errorf("html missing boundary price: %q", mailer.lastHTM)
	}
	if !strings.Contains(mailer.lastHTM, "/api/unsubscribe?e=") {
		t.Error("html missing unsubscribe link")
	}

	st := state.states["XYZ"]
	if st.LastZone == nil || *st.LastZone != 2 {
		t.Errorf("lastZone = %v, want 2", st.LastZone)
	}
	if st.LastEmailAt == 0 {
		t.Error("lastEmailAt must be set after a successful delivery")
	}

	if len(pub.events) != 1 {
		t.Fatalf("published events = %d, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.FromZone != 1 || ev.ToZone != 2 || ev.Direction != "DOWN" || ev.BoundaryScore != 5 || !ev.EmailSent {
		t.Errorf("event = %+v", ev)
	}
	if sink.records != 1 {
		t.Errorf("sink records = %d, want 1", sink.records)
	}
}

func TestRunSteadyStateRefreshes(t *testing.T) {
	specs := []models.TickerSpec{{Symbol: "XYZ", Low: 10, High: 20}}
	oracle := &fakeOracle{prices: map[string]float64{"XYZ": 15}} // zone 1
	state := newMemState()
	prior := 1
	state.states["XYZ"] = &models.AlertState{LastZone: &prior, LastEmailAt: 123, LastPrice: 14, LastDate: "2026-08-20"}

	mailer := &fakeMailer{}
	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, &fakeSubs{active: []string{"a@example.com"}}, mailer, 4)

	sum, err := checker.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Sent != 0 || len(mailer.sent) != 0 {
		t.Error("steady state must not email")
	}

	st := state.states["XYZ"]
	if st.LastPrice != 15 || st.LastDate != "2026-08-28" {
		t.Errorf("state not refreshed: %+v", st)
	}
	if st.LastEmailAt != 123 {
		t.Errorf("lastEmailAt = %d, want 123 untouched", st.LastEmailAt)
	}
}

func TestRunPreSuppliedPriceSkipsOracle(t *testing.T) {
	specs := []models.TickerSpec{{Symbol: "XYZ", Low: 10, High: 20, Price: 15}}
	oracle := &fakeOracle{}
	state := newMemState()

	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, &fakeSubs{}, &fakeMailer{}, 4)

	if _, err := checker.Run(context.Background(), false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(oracle.calls) != 0 {
		t.Errorf("oracle called %v, want no calls for a pre-supplied price", oracle.calls)
	}
	if st := state.states["XYZ"]; st == nil || st.LastPrice != 15 {
		t.Errorf("state = %+v, want seeded from supplied price", state.states["XYZ"])
	}
}

func TestRunAbortsWhenPersistFails(t *testing.T) {
	// A crossing whose cooldown stamp cannot be written must fail the run,
	// otherwise the same crossing re-emails on every poll.
	specs := []models.TickerSpec{{Symbol: "XYZ", Low: 10, High: 20}}
	oracle := &fakeOracle{prices: map[string]float64{"XYZ": 13.2}}
	state := newMemState()
	prior := 1
	state.states["XYZ"] = &models.AlertState{LastZone: &prior}
	state.setErr = fmt.Errorf("connection reset")

	mailer := &fakeMailer{}
	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, &fakeSubs{active: []string{"a@example.com"}}, mailer, 4)

	sum, err := checker.Run(context.Background(), false)
	if err == nil {
		t.Fatal("Run must fail when the alert state write fails")
	}
	if !strings.Contains(err.Error(), "persist alert state XYZ") {
		t.Errorf("err = %v, want persist failure for XYZ", err)
	}
	if sum != nil {
		t.Errorf("summary = %+v, want nil on a failed run", sum)
	}
}

func TestRunAbortsWhenStateReadFails(t *testing.T) {
	specs := tickerList(3)
	oracle := &fakeOracle{prices: priceMap(specs, 15)}
	state := newMemState()
	state.getErr = fmt.Errorf("connection reset")

	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, state, &fakeSubs{}, &fakeMailer{}, 4)

	if _, err := checker.Run(context.Background(), false); err == nil {
		t.Fatal("Run must fail when the state store cannot be read")
	}
}

func TestRunHook(t *testing.T) {
	specs := tickerList(2)
	oracle := &fakeOracle{prices: priceMap(specs, 15)}

	var got *models.RunSummary
	checker := newTestChecker(&fakeTickers{specs: specs}, oracle, newMemState(), &fakeSubs{}, &fakeMailer{}, 4,
		WithRunHook(func(s *models.RunSummary) { got = s }))

	sum, err := checker.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got == nil || got.Processed != sum.Processed {
		t.Errorf("run hook got %+v, want %+v", got, sum)
	}
}
