package embedcache

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when the retry budget is < 1.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrInvalidBatchSize is returned when the batch size is < 1.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrEmbeddingMismatch is returned when the backend returns a different
	// number of vectors than texts it was given.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")
)
