package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	drepo "rrtracker/internal/domain/repository"
	"rrtracker/internal/service/ratelimit"
	xlogger "rrtracker/pkg/logger"
)

func testLogger() *xlogger.Logger {
	l, _ := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	return l
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New("test-key", srv.URL, 5*time.Second, 60, testLogger())
	return c, srv
}

func TestResolveDailySeries(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "TIME_SERIES_DAILY" {
			t.Errorf("function = %q, want TIME_SERIES_DAILY", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "RKLB" {
			t.Errorf("symbol = %q, want RKLB", got)
		}
		w.Write([]byte(`{
			"Time Series (Daily)": {
				"2026-08-27": {"4. close": "41.20"},
				"2026-08-28": {"4. close": "42.50"},
				"2026-08-26": {"4. close": "40.10"}
			}
		}`))
	})

	obs, err := c.Resolve(context.Background(), "RKLB")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if obs.AsOfDate != "2026-08-28" {
		t.Errorf("AsOfDate = %q, want 2026-08-28", obs.AsOfDate)
	}
	if obs.Price != 42.50 {
		t.Errorf("Price = %v, want 42.50", obs.Price)
	}
	if obs.Symbol != "RKLB" {
		t.Errorf("Symbol = %q, want RKLB", obs.Symbol)
	}
}

func TestResolveThrottleNote(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})

	_, err := c.Resolve(context.Background(), "RKLB")
	if !errors.Is(err, drepo.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestResolveInformationField(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Information": "API rate limit reached."}`))
	})

	_, err := c.Resolve(context.Background(), "RKLB")
	if !errors.Is(err, drepo.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestResolveQuoteFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("function") {
		case "TIME_SERIES_DAILY":
			w.Write([]byte(`{"Error Message": "Invalid API call."}`))
		case "GLOBAL_QUOTE":
			w.Write([]byte(`{"Global Quote": {"01. symbol": "BRK.B", "05. price": "471.3200"}}`))
		default:
			t.Errorf("unexpected function %q", r.URL.Query().Get("function"))
		}
	})

	obs, err := c.Resolve(context.Background(), "BRK.B")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if obs.Price != 471.32 {
		t.Errorf("Price = %v, want 471.32", obs.Price)
	}
	if obs.AsOfDate == "" {
		t.Error("AsOfDate empty, want today's date")
	}
}

func TestResolveNoData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.Resolve(context.Background(), "NOPE")
	if !errors.Is(err, drepo.ErrPriceNotFound) {
		t.Fatalf("err = %v, want ErrPriceNotFound", err)
	}
}

func TestResolveLocalPacing(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"Time Series (Daily)": {"2026-08-28": {"4. close": "10.00"}}}`))
	})
	// Empty bucket with near-zero refill so the next call is denied locally.
	c.limiter = ratelimit.New(0, 0.001)

	_, err := c.Resolve(context.Background(), "RKLB")
	if !errors.Is(err, drepo.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if calls != 0 {
		t.Errorf("upstream calls = %d, want 0", calls)
	}
}

func TestQuote(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {"01. symbol": "RKLB", "05. price": "42.0000"}}`))
	})

	price, err := c.Quote(context.Background(), "RKLB")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if price != 42.0 {
		t.Errorf("price = %v, want 42", price)
	}
}
