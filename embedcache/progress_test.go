package embedcache

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Add(5)
	assert.Empty(t, buf.String(), "below the report interval")

	tracker.Add(20)
	assert.Contains(t, buf.String(), "25/100 (25.0%)")

	tracker.Add(500)
	assert.Equal(t, 100, tracker.Done(), "capped at total")

	tracker.Finish()
	assert.Contains(t, buf.String(), "100/100 (100.0%)")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestProgressTracker_Concurrent(t *testing.T) {
	tracker := NewProgressTracker(nil, 1000, 0)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				tracker.Add(1)
			}
		}()
	}
	wg.Wait()
	tracker.Finish()
	assert.Equal(t, 1000, tracker.Done())
}
