package storage

import "errors"

// Sentinel errors shared by every store implementation. Runs, observations,
// components, and forecasts are write-once, so a key collision is always an
// error rather than an update.
var (
	// ErrNotFound reports that no record matches the requested ID.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey reports an insert whose key is already present,
	// either in the store or earlier in the same batch.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput reports a nil record or one missing a required key.
	ErrInvalidInput = errors.New("invalid input")
)
