package pipeline

import (
	"sync"
	"time"
)

// Stats is a point-in-time copy of a batch's statistics.
type Stats struct {
	BatchID     string
	Processed   int      // Successful conversions.
	Failed      int      // Failed or interrupted files.
	FailedFiles []string // Input paths in file order.
	InputBytes  int64    // Summed over successful conversions.
	OutputBytes int64
	Elapsed     time.Duration
}

// Total returns the number of files accounted for.
func (s Stats) Total() int {
	return s.Processed + s.Failed
}

// SpaceSaved returns input minus output bytes. Negative means outputs grew.
func (s Stats) SpaceSaved() int64 {
	return s.InputBytes - s.OutputBytes
}

// Collector accumulates Stats. All methods are safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	stats   Stats
	started time.Time
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Reset clears all counters, the failed list and the batch ID, and restarts
// the elapsed clock.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = Stats{}
	c.started = time.Now()
}

// SetBatchID tags the current batch.
func (c *Collector) SetBatchID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.BatchID = id
}

// RecordSuccess counts one converted file.
func (c *Collector) RecordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Processed++
}

// RecordFailure counts one failed file and appends its path.
func (c *Collector) RecordFailure(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Failed++
	c.stats.FailedFiles = append(c.stats.FailedFiles, path)
}

// RecordBytes adds to the byte totals.
func (c *Collector) RecordBytes(in, out int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.InputBytes += in
	c.stats.OutputBytes += out
}

// Record applies one task outcome.
func (c *Collector) Record(o Outcome) {
	if !o.OK() {
		c.RecordFailure(o.Input)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Processed++
	c.stats.InputBytes += o.InputBytes
	c.stats.OutputBytes += o.OutputBytes
}

// Finish freezes Elapsed at the time since the last Reset.
func (c *Collector) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started.IsZero() {
		c.stats.Elapsed = time.Since(c.started)
	}
}

// Snapshot returns a copy that later mutations do not affect.
func (c *Collector) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.FailedFiles = append([]string(nil), c.stats.FailedFiles...)
	return s
}
