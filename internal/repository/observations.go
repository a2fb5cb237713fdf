package repository

import (
	"context"
	"fmt"
	"time"

	"rrtracker/internal/domain/models"
	"rrtracker/pkg/clickhouse"
)

// ObservationSchema creates the score history table.
var ObservationSchema = []string{
	`CREATE TABLE IF NOT EXISTS score_observations (
		symbol      LowCardinality(String),
		price       Float64,
		score       Float64,
		zone        Int32,
		as_of_date  Date,
		recorded_at DateTime64(3)
	) ENGINE = MergeTree()
	ORDER BY (symbol, recorded_at)
	TTL toDateTime(recorded_at) + INTERVAL 365 DAY`,
}

// ClickHouseObservationSink appends one row per scored observation. Used for
// offline chart backfills and score drift analysis.
type ClickHouseObservationSink struct {
	client *clickhouse.Client
}

func NewClickHouseObservationSink(ctx context.Context, client *clickhouse.Client) (*ClickHouseObservationSink, error) {
	if err := client.InitSchema(ctx, ObservationSchema); err != nil {
		return nil, err
	}
	return &ClickHouseObservationSink{client: client}, nil
}

func (s *ClickHouseObservationSink) Record(ctx context.Context, obs *models.PriceObservation, score float64, zone int) error {
	asOf, err := time.Parse("2006-01-02", obs.AsOfDate)
	if err != nil {
		asOf = time.Now().UTC()
	}
	_, err = s.client.DB().ExecContext(ctx,
		`INSERT INTO score_observations (symbol, price, score, zone, as_of_date, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		obs.Symbol, obs.Price, score, int32(zone), asOf, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record observation %s: %w", obs.Symbol, err)
	}
	return nil
}

func (s *ClickHouseObservationSink) Close() error {
	return s.client.Close()
}
