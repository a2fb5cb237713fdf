package models

import "time"

// TickerSpec is one tracked instrument with its fixed low/high reference
// lines. Sourced from the sheet; immutable for the duration of a batch run.
type TickerSpec struct {
	Symbol   string  `json:"ticker"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	PickType string  `json:"pickType,omitempty"`
	// Price is an optional pre-supplied reference price from the source
	// record. Zero means "not supplied"; a positive finite value short-circuits
	// the market data lookup.
	Price float64 `json:"price,omitempty"`
}

// PriceObservation is one resolved price for a symbol, fresh per batch step.
type PriceObservation struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	AsOfDate string  `json:"asOfDate"` // YYYY-MM-DD
}

// AlertState is the persisted per-ticker record, keyed "alert:<SYMBOL>".
// LastZone nil means the ticker has never been observed.
type AlertState struct {
	LastZone    *int    `json:"lastZone"`
	LastEmailAt int64   `json:"lastEmailAt"` // unix ms, 0 = never
	LastPrice   float64 `json:"lastPrice,omitempty"`
	LastDate    string  `json:"lastDate,omitempty"`
}

// RunSummary is the result of one batch invocation.
type RunSummary struct {
	Processed   int  `json:"processed"`
	Total       int  `json:"total"`
	Sent        int  `json:"sent"`
	NextCursor  int  `json:"nextCursor"`
	RateLimited bool `json:"rateLimited"`
}

// CrossingEvent is emitted whenever a ticker changes zone, whether or not an
// email went out. Published to the audit stream and the live feed.
type CrossingEvent struct {
	Symbol        string    `json:"symbol"`
	FromZone      int       `json:"fromZone"`
	ToZone        int       `json:"toZone"`
	FromZoneName  string    `json:"fromZoneName"`
	ToZoneName    string    `json:"toZoneName"`
	Direction     string    `json:"direction"` // price direction: UP, DOWN
	BoundaryScore float64   `json:"boundaryScore"`
	BoundaryPrice float64   `json:"boundaryPrice"`
	Price         float64   `json:"price"`
	AsOfDate      string    `json:"asOfDate"`
	EmailSent     bool      `json:"emailSent"`
	DetectedAt    time.Time `json:"detectedAt"`
}
