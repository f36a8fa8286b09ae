package embedcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	errTemporary := errors.New("temporary error")

	tests := []struct {
		name         string
		failFirst    int
		maxAttempts  int
		wantErr      error
		wantAttempts int
	}{
		{"first try", 0, 3, nil, 1},
		{"eventual success", 2, 5, nil, 3},
		{"all attempts fail", 10, 3, errTemporary, 3},
		{"single attempt", 10, 1, errTemporary, 1},
		{"invalid attempts", 0, 0, ErrInvalidMaxAttempts, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := RetryWithBackoff(t.Context(), nil, tt.maxAttempts, time.Millisecond, func() error {
				attempts++
				if attempts <= tt.failFirst {
					return errTemporary
				}
				return nil
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
		})
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	attempts := 0
	err := RetryWithBackoff(ctx, nil, 10, 10*time.Millisecond, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_Backoff(t *testing.T) {
	start := time.Now()
	_ = RetryWithBackoff(t.Context(), nil, 3, 10*time.Millisecond, func() error {
		return errors.New("error")
	})
	// 10ms + 20ms between three attempts
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
