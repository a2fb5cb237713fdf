package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"rrtracker/internal/domain/models"
	"rrtracker/internal/scoring"
	"rrtracker/internal/service/unsub"
)

var notifyNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func newTestNotifier(subs *fakeSubs, mailer *fakeMailer) *Notifier {
	n := NewNotifier(subs, mailer, unsub.NewSigner("test-secret"), nopMetrics{}, testLogger(),
		"https://rr.example.com", 7*24*time.Hour)
	n.now = func() time.Time { return notifyNow }
	return n
}

func notifyArgs() (models.TickerSpec, scoring.Zone, scoring.Crossing, *models.PriceObservation) {
	spec := models.TickerSpec{Symbol: "XYZ", Low: 10, High: 20}
	from := scoring.Zone(1)
	cross := scoring.Detect(&from, 2)
	obs := &models.PriceObservation{Symbol: "XYZ", Price: 13.2, AsOfDate: "2026-08-28"}
	return spec, 2, cross, obs
}

func priorState(zone int, lastEmailAt int64) *models.AlertState {
	return &models.AlertState{LastZone: &zone, LastEmailAt: lastEmailAt}
}

func TestMaybeNotifyDelivers(t *testing.T) {
	subs := &fakeSubs{active: []string{"a@example.com", "b@example.com"}}
	mailer := &fakeMailer{}
	n := newTestNotifier(subs, mailer)

	spec, to, cross, obs := notifyArgs()
	sent, updated := n.MaybeNotify(context.Background(), spec, priorState(1, 0), to, cross, obs)

	if !sent {
		t.Fatal("sent = false, want true")
	}
	if len(mailer.sent) != 2 {
		t.Errorf("deliveries = %d, want 2", len(mailer.sent))
	}
	if *updated.LastZone != 2 {
		t.Errorf("lastZone = %d, want 2", *updated.LastZone)
	}
	if updated.LastEmailAt != notifyNow.UnixMilli() {
		t.Errorf("lastEmailAt = %d, want %d", updated.LastEmailAt, notifyNow.UnixMilli())
	}
}

func TestMaybeNotifyCooldown(t *testing.T) {
	sixDaysAgo := notifyNow.Add(-6 * 24 * time.Hour).UnixMilli()
	subs := &fakeSubs{active: []string{"a@example.com"}}
	mailer := &fakeMailer{}
	n := newTestNotifier(subs, mailer)

	spec, to, cross, obs := notifyArgs()
	sent, updated := n.MaybeNotify(context.Background(), spec, priorState(1, sixDaysAgo), to, cross, obs)

	if sent || len(mailer.sent) != 0 {
		t.Error("no send expected inside the cooldown window")
	}
	if *updated.LastZone != 2 {
		t.Error("lastZone must still advance during cooldown")
	}
	if updated.LastEmailAt != sixDaysAgo {
		t.Errorf("lastEmailAt = %d, want untouched %d", updated.LastEmailAt, sixDaysAgo)
	}
}

func TestMaybeNotifyCooldownExpired(t *testing.T) {
	eightDaysAgo := notifyNow.Add(-8 * 24 * time.Hour).UnixMilli()
	subs := &fakeSubs{active: []string{"a@example.com"}}
	mailer := &fakeMailer{}
	n := newTestNotifier(subs, mailer)

	spec, to, cross, obs := notifyArgs()
	sent, updated := n.MaybeNotify(context.Background(), spec, priorState(1, eightDaysAgo), to, cross, obs)

	if !sent {
		t.Fatal("sent = false after cooldown expiry, want true")
	}
	if updated.LastEmailAt != notifyNow.UnixMilli() {
		t.Errorf("lastEmailAt = %d, want refreshed", updated.LastEmailAt)
	}
}

func TestMaybeNotifyPartialDelivery(t *testing.T) {
	subs := &fakeSubs{active: []string{"a@example.com", "b@example.com", "c@example.com"}}
	mailer := &fakeMailer{failFor: map[string]bool{"b@example.com": true}}
	n := newTestNotifier(subs, mailer)

	spec, to, cross, obs := notifyArgs()
	sent, updated := n.MaybeNotify(context.Background(), spec, priorState(1, 0), to, cross, obs)

	if !sent {
		t.Fatal("one failure must not mask two successes")
	}
	if len(mailer.sent) != 2 {
		t.Errorf("deliveries = %d, want 2", len(mailer.sent))
	}
	if updated.LastEmailAt == 0 {
		t.Error("lastEmailAt must be set when at least one delivery succeeds")
	}
}

func TestMaybeNotifyAllFail(t *testing.T) {
	subs := &fakeSubs{active: []string{"a@example.com", "b@example.com"}}
	mailer := &fakeMailer{failFor: map[string]bool{"a@example.com": true, "b@example.com": true}}
	n := newTestNotifier(subs, mailer)

	spec, to, cross, obs := notifyArgs()
	sent, updated := n.MaybeNotify(context.Background(), spec, priorState(1, 0), to, cross, obs)

	if sent {
		t.Fatal("sent = true with zero deliveries")
	}
	// The crossing stays eligible for retry on the next run.
	if updated.LastEmailAt != 0 {
		t.Errorf("lastEmailAt = %d, want 0 so the alert retries", updated.LastEmailAt)
	}
	if *updated.LastZone != 2 {
		t.Error("lastZone must advance even when delivery fails")
	}
}

func TestMaybeNotifyNoSubscribers(t *testing.T) {
	mailer := &fakeMailer{}
	n := newTestNotifier(&fakeSubs{}, mailer)

	spec, to, cross, obs := notifyArgs()
	sent, updated := n.MaybeNotify(context.Background(), spec, priorState(1, 0), to, cross, obs)

	if sent || len(mailer.sent) != 0 {
		t.Error("no send expected with an empty subscriber set")
	}
	if updated.LastEmailAt != 0 {
		t.Error("lastEmailAt must stay untouched with no recipients")
	}
}

func TestMaybeNotifyContent(t *testing.T) {
	subs := &fakeSubs{active: []string{"a@example.com"}}
	mailer := &fakeMailer{}
	n := newTestNotifier(subs, mailer)

	spec, to, cross, obs := notifyArgs()
	n.MaybeNotify(context.Background(), spec, priorState(1, 0), to, cross, obs)

	for _, want := range []string{
		"XYZ moved DOWN in price",
		"Above Halfway Point",
		"Below Halfway Point",
		"5-line near ~$14.14",
		"$13.20",
		"as of 2026-08-28",
		"Max one alert per ticker per 7 days.",
		"https://rr.example.com/api/unsubscribe?e=a%40example.com&t=",
	} {
		if !strings.Contains(mailer.lastHTM, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if !strings.Contains(mailer.lastSub, "R/R alert: XYZ moved DOWN in price into Below Halfway Point") {
		t.Errorf("subject = %q", mailer.lastSub)
	}
}

func TestMaybeNotifyFooterTracksCooldown(t *testing.T) {
	subs := &fakeSubs{active: []string{"a@example.com"}}
	mailer := &fakeMailer{}
	n := NewNotifier(subs, mailer, unsub.NewSigner("test-secret"), nopMetrics{}, testLogger(),
		"https://rr.example.com", 14*24*time.Hour)
	n.now = func() time.Time { return notifyNow }

	spec, to, cross, obs := notifyArgs()
	n.MaybeNotify(context.Background(), spec, priorState(1, 0), to, cross, obs)

	if !strings.Contains(mailer.lastHTM, "Max one alert per ticker per 14 days.") {
		t.Errorf("footer must follow the configured window: %q", mailer.lastHTM)
	}
}

func TestCooldownPhrase(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{7 * 24 * time.Hour, "7 days"},
		{24 * time.Hour, "1 day"},
		{36 * time.Hour, "36h0m0s"},
	}
	for _, c := range cases {
		if got := cooldownPhrase(c.d); got != c.want {
			t.Errorf("cooldownPhrase(%s) = %q, want %q", c.d, got, c.want)
		}
	}
}
