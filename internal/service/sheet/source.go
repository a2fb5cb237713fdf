// Package sheet reads the watchlist from a public Google Sheets CSV export.
// The sheet is maintained by hand, so the parser sniffs header names instead
// of trusting column positions and drops rows it cannot make sense of.
package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"rrtracker/internal/domain/models"
	xhttp "rrtracker/pkg/http"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/util"
)

// Source implements repository.TickerSource over a CSV export URL.
type Source struct {
	csvURL string
	http   *xhttp.Client
	cache  *tickerCache
	logger *xlogger.Logger
}

// New creates a sheet-backed ticker source with an in-memory TTL cache.
func New(csvURL string, timeout, cacheTTL time.Duration, logger *xlogger.Logger) *Source {
	return &Source{
		csvURL: csvURL,
		http:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cache:  newTickerCache(cacheTTL),
		logger: logger,
	}
}

// List fetches and parses the sheet, serving from cache when fresh.
func (s *Source) List(ctx context.Context) ([]models.TickerSpec, error) {
	if specs, ok := s.cache.get(); ok {
		return specs, nil
	}

	var raw []byte
	err := s.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.csvURL,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}

	specs, err := parseCSV(raw)
	if err != nil {
		return nil, fmt.Errorf("parse sheet: %w", err)
	}

	s.logger.Debug("sheet refreshed", xlogger.Int("tickers", len(specs)))
	s.cache.put(specs)
	return specs, nil
}

// Invalidate drops the cached list so the next List refetches.
func (s *Source) Invalidate() {
	s.cache.invalidate()
}

func parseCSV(raw []byte) ([]models.TickerSpec, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("empty sheet")
	}

	idx := sniffHeader(rows[0])
	if idx.ticker < 0 || idx.low < 0 || idx.high < 0 {
		return nil, fmt.Errorf("header missing ticker/low/high columns: %v", rows[0])
	}

	specs := make([]models.TickerSpec, 0, len(rows)-1)
	for _, row := range rows[1:] {
		symbol := util.SanitizeSymbol(field(row, idx.ticker))
		low, lerr := strconv.ParseFloat(strings.TrimSpace(field(row, idx.low)), 64)
		high, herr := strconv.ParseFloat(strings.TrimSpace(field(row, idx.high)), 64)
		if symbol == "" || lerr != nil || herr != nil || !isFinite(low) || !isFinite(high) {
			continue
		}
		specs = append(specs, models.TickerSpec{
			Symbol:   symbol,
			Low:      low,
			High:     high,
			PickType: strings.ToUpper(strings.TrimSpace(field(row, idx.pick))),
		})
	}

	sort.SliceStable(specs, func(i, j int) bool {
		ri, rj := pickRank(specs[i].PickType), pickRank(specs[j].PickType)
		if ri != rj {
			return ri < rj
		}
		return specs[i].Symbol < specs[j].Symbol
	})

	return specs, nil
}

type columnIndex struct {
	ticker, low, high, pick int
}

// Headers look like: LONGS | Green L | Red L | PICK TYPE.
func sniffHeader(header []string) columnIndex {
	idx := columnIndex{ticker: -1, low: -1, high: -1, pick: -1}
	for i, h := range header {
		h = strings.ToLower(h)
		switch {
		case idx.ticker < 0 && strings.Contains(h, "longs"):
			idx.ticker = i
		case idx.low < 0 && (strings.Contains(h, "green") || strings.Contains(h, "low")):
			idx.low = i
		case idx.high < 0 && (strings.Contains(h, "red") || strings.Contains(h, "high")):
			idx.high = i
		case idx.pick < 0 && strings.Contains(h, "pick"):
			idx.pick = i
		}
	}
	return idx
}

// pickRank orders exact OFFICIAL picks first, other OFFICIAL variants next,
// everything else last.
func pickRank(pickType string) int {
	switch {
	case pickType == "OFFICIAL":
		return 0
	case strings.Contains(pickType, "OFFICIAL"):
		return 1
	default:
		return 2
	}
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
