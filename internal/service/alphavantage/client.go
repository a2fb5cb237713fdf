// Package alphavantage implements the PriceOracle against the Alpha Vantage
// REST API. The free tier throttles hard (about 5 requests a minute), so the
// client paces itself and surfaces upstream throttle notes as ErrRateLimited
// rather than burning the remaining quota.
package alphavantage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rrtracker/internal/domain/models"
	drepo "rrtracker/internal/domain/repository"
	"rrtracker/internal/service/ratelimit"
	xhttp "rrtracker/pkg/http"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/util"
)

const DefaultBaseURL = "https://www.alphavantage.co/query"

// Client implements repository.PriceOracle.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	logger  *xlogger.Logger
	now     func() time.Time
}

// New creates an Alpha Vantage price oracle.
func New(apiKey, baseURL string, timeout time.Duration, requestsPerMinute float64, logger *xlogger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 5
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter: ratelimit.New(requestsPerMinute, requestsPerMinute),
		logger:  logger,
		now:     time.Now,
	}
}

type dailyResponse struct {
	TimeSeries   map[string]dailyRow `json:"Time Series (Daily)"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	ErrorMessage string              `json:"Error Message"`
}

type dailyRow struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

type quoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

// Resolve fetches the latest daily close for symbol, falling back to the
// GLOBAL_QUOTE endpoint when the daily series is unavailable without an
// explicit throttle signal.
func (c *Client) Resolve(ctx context.Context, symbol string) (*models.PriceObservation, error) {
	if !c.limiter.Allow() {
		return nil, fmt.Errorf("local pacing for %s: %w", symbol, drepo.ErrRateLimited)
	}

	var daily dailyResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"function":   {"TIME_SERIES_DAILY"},
			"symbol":     {symbol},
			"apikey":     {c.apiKey},
			"outputsize": {"compact"},
		},
	}, &daily)
	if err != nil {
		return nil, fmt.Errorf("daily series %s: %w", symbol, err)
	}

	if len(daily.TimeSeries) > 0 {
		keys := make([]string, 0, len(daily.TimeSeries))
		for k := range daily.TimeSeries {
			keys = append(keys, k)
		}
		date := util.LatestDay(keys)
		close, perr := strconv.ParseFloat(daily.TimeSeries[date].Close, 64)
		if perr != nil || close <= 0 {
			return nil, fmt.Errorf("daily close for %s on %s: %w", symbol, date, drepo.ErrPriceNotFound)
		}
		return &models.PriceObservation{Symbol: symbol, Price: close, AsOfDate: date}, nil
	}

	if daily.Note != "" || daily.Information != "" {
		c.logger.Warn("alpha vantage throttled",
			xlogger.String("symbol", symbol),
			xlogger.String("note", truncate(firstNonEmpty(daily.Note, daily.Information), 80)),
		)
		return nil, fmt.Errorf("daily series %s: %w", symbol, drepo.ErrRateLimited)
	}

	if daily.ErrorMessage != "" {
		c.logger.Warn("alpha vantage error, trying quote fallback",
			xlogger.String("symbol", symbol),
			xlogger.String("error", truncate(daily.ErrorMessage, 80)),
		)
	}

	// Fallback: GLOBAL_QUOTE works for many symbols where the daily series
	// is missing.
	var quote quoteResponse
	err = c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"function": {"GLOBAL_QUOTE"},
			"symbol":   {symbol},
			"apikey":   {c.apiKey},
		},
	}, &quote)
	if err != nil {
		return nil, fmt.Errorf("global quote %s: %w", symbol, err)
	}

	if quote.Note != "" || quote.Information != "" {
		return nil, fmt.Errorf("global quote %s: %w", symbol, drepo.ErrRateLimited)
	}

	if price, perr := strconv.ParseFloat(quote.GlobalQuote.Price, 64); perr == nil && price > 0 {
		// The quote carries no date; best effort is today.
		return &models.PriceObservation{
			Symbol:   symbol,
			Price:    price,
			AsOfDate: util.DayString(c.now()),
		}, nil
	}

	return nil, fmt.Errorf("no data for %s: %w", symbol, drepo.ErrPriceNotFound)
}

// Quote fetches the spot price only, for the interactive price endpoint.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	var quote quoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"function": {"GLOBAL_QUOTE"},
			"symbol":   {symbol},
			"apikey":   {c.apiKey},
		},
	}, &quote)
	if err != nil {
		return 0, fmt.Errorf("global quote %s: %w", symbol, err)
	}
	if quote.Note != "" || quote.Information != "" {
		return 0, fmt.Errorf("global quote %s: %w", symbol, drepo.ErrRateLimited)
	}
	price, perr := strconv.ParseFloat(quote.GlobalQuote.Price, 64)
	if perr != nil || price <= 0 {
		return 0, fmt.Errorf("global quote %s: %w", symbol, drepo.ErrPriceNotFound)
	}
	return price, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
