package indexing

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports progress of a long-running stage to a writer.
// It is safe for concurrent use; pool workers call Increment as batches
// complete.
type ProgressTracker struct {
	label          string
	total          int
	current        int
	startTime      time.Time
	lastReport     int
	reportInterval int
	writer         io.Writer
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker that labels its output with label and
// reports every reportInterval records.
func NewProgressTracker(writer io.Writer, label string, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		label:          label,
		total:          total,
		reportInterval: reportInterval,
		writer:         writer,
	}
}

// Start records the start time.
func (pt *ProgressTracker) Start() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.startTime = time.Now()
}

// Increment adds n completed records and reports if the interval has passed.
func (pt *ProgressTracker) Increment(n int) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.current += n
	if pt.current > pt.total {
		pt.current = pt.total
	}

	if pt.current-pt.lastReport >= pt.reportInterval || pt.current == pt.total {
		pt.report()
		pt.lastReport = pt.current
	}
}

// Finish reports the final count and terminates the progress line.
func (pt *ProgressTracker) Finish() {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.current = pt.total
	pt.report()
	fmt.Fprintln(pt.writer)
}

// Elapsed returns the time since Start.
func (pt *ProgressTracker) Elapsed() time.Duration {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return time.Since(pt.startTime)
}

// report writes the progress line. Callers must hold the lock.
func (pt *ProgressTracker) report() {
	if pt.startTime.IsZero() {
		return
	}

	percent := 0.0
	if pt.total > 0 {
		percent = float64(pt.current) / float64(pt.total) * 100
	}

	rate := 0.0
	if elapsed := time.Since(pt.startTime).Seconds(); elapsed > 0 {
		rate = float64(pt.current) / elapsed
	}

	fmt.Fprintf(pt.writer, "\r%s: %d/%d (%.1f%%) - %.1f records/s",
		pt.label, pt.current, pt.total, percent, rate)
}
