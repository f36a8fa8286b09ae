package embedcache

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints a single updating progress line while skills are
// embedded. It is safe for use from pool workers.
type ProgressTracker struct {
	mu           sync.Mutex
	writer       io.Writer
	total        int
	done         int
	interval     int
	lastReported int
	started      time.Time
}

// NewProgressTracker reports to writer every interval items out of total.
// A nil writer disables output.
func NewProgressTracker(writer io.Writer, total, interval int) *ProgressTracker {
	if interval < 1 {
		interval = 1
	}
	return &ProgressTracker{
		writer:   writer,
		total:    total,
		interval: interval,
		started:  time.Now(),
	}
}

// Add records n more finished items.
func (p *ProgressTracker) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = min(p.done+n, p.total)
	if p.done-p.lastReported >= p.interval {
		p.report()
		p.lastReported = p.done
	}
}

// Done returns the number of finished items.
func (p *ProgressTracker) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Finish prints the final line. The count is left as recorded so a failed
// run does not claim completion.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	if p.writer != nil {
		fmt.Fprintln(p.writer)
	}
}

// report writes the progress line. Must be called with lock held.
func (p *ProgressTracker) report() {
	if p.writer == nil {
		return
	}
	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.done) / elapsed
	}
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100
	}
	fmt.Fprintf(p.writer, "\rEmbedding skills: %d/%d (%.1f%%) - %.1f skills/s",
		p.done, p.total, percentage, rate)
}
