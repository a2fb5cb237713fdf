// Package repository holds the Redis, ClickHouse and Kafka backed
// implementations of the domain interfaces.
package repository

import (
	"context"
	"errors"
	"fmt"

	"rrtracker/internal/domain/models"
	"rrtracker/pkg/kv"
)

const (
	alertKeyPrefix = "alert:"
	cursorKey      = "alert:cursor"
)

// RedisStateStore persists per-ticker alert state and the batch cursor.
type RedisStateStore struct {
	store *kv.Store
}

func NewRedisStateStore(store *kv.Store) *RedisStateStore {
	return &RedisStateStore{store: store}
}

// GetAlertState returns (nil, nil) for a symbol that has never been observed.
func (r *RedisStateStore) GetAlertState(ctx context.Context, symbol string) (*models.AlertState, error) {
	var st models.AlertState
	err := r.store.Get(ctx, alertKeyPrefix+symbol, &st)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert state %s: %w", symbol, err)
	}
	return &st, nil
}

func (r *RedisStateStore) SetAlertState(ctx context.Context, symbol string, st *models.AlertState) error {
	if err := r.store.Set(ctx, alertKeyPrefix+symbol, st); err != nil {
		return fmt.Errorf("set alert state %s: %w", symbol, err)
	}
	return nil
}

// GetCursor returns 0 when no cursor has been written yet.
func (r *RedisStateStore) GetCursor(ctx context.Context) (int, error) {
	var cursor int
	err := r.store.Get(ctx, cursorKey, &cursor)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get cursor: %w", err)
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor, nil
}

func (r *RedisStateStore) SetCursor(ctx context.Context, cursor int) error {
	if err := r.store.Set(ctx, cursorKey, cursor); err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	return nil
}
