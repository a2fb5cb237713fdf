package repository

import "errors"

var (
	// ErrRateLimited means the price source throttled us. The batch runner
	// stops its slice and freezes the cursor.
	ErrRateLimited = errors.New("price source rate limited")

	// ErrPriceNotFound means the source has no data for the symbol. The
	// batch runner skips it and continues.
	ErrPriceNotFound = errors.New("price not found")
)
