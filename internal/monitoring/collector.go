// Package monitoring counts briefing outcomes and alerts when the failure
// rate crosses a threshold.
package monitoring

import (
	"sync"
	"time"

	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/pipeline"
)

// MetricsSnapshot holds a point-in-time view of briefing outcomes.
type MetricsSnapshot struct {
	Total             int     `json:"total"`
	Succeeded         int     `json:"succeeded"`
	Failed            int     `json:"failed"`
	Rejected          int     `json:"rejected"`
	FallbackBriefings int     `json:"fallback_briefings"`
	PersistenceFailed int     `json:"persistence_failed"`
	DegradedIntel     int     `json:"degraded_intel"`
	FailRate          float64 `json:"fail_rate"`
	AvgProcessingSecs float64 `json:"avg_processing_seconds"`

	Since       time.Time `json:"since"`
	CollectedAt time.Time `json:"collected_at"`

	processingSecs float64
}

func (s *MetricsSnapshot) record(resp *pipeline.Response, err error) {
	s.Total++
	switch {
	case err == nil:
		s.Succeeded++
	case model.KindOf(err) == model.KindValidation:
		s.Rejected++
	default:
		s.Failed++
	}
	if resp == nil || resp.Metadata == nil {
		return
	}
	md := resp.Metadata
	if err == nil {
		if md.FallbackBriefing {
			s.FallbackBriefings++
		}
		if !md.DatabaseUpdated {
			s.PersistenceFailed++
		}
	}
	if len(md.ExtractionErrors) > 0 {
		s.DegradedIntel++
	}
	s.processingSecs += md.ProcessingTimeSeconds
}

func (s MetricsSnapshot) finish(at time.Time) MetricsSnapshot {
	s.CollectedAt = at
	// Rejected requests never reach the model, so they do not count as failures.
	if attempted := s.Succeeded + s.Failed; attempted > 0 {
		s.FailRate = float64(s.Failed) / float64(attempted)
	}
	if s.Total > 0 {
		s.AvgProcessingSecs = s.processingSecs / float64(s.Total)
	}
	return s
}

// Collector accumulates outcomes since startup and since the last Window call.
// It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	total  MetricsSnapshot
	window MetricsSnapshot
	now    func() time.Time
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	c := &Collector{now: func() time.Time { return time.Now().UTC() }}
	start := c.now()
	c.total.Since = start
	c.window.Since = start
	return c
}

// Record counts one pipeline run.
func (c *Collector) Record(resp *pipeline.Response, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total.record(resp, err)
	c.window.record(resp, err)
}

// Snapshot returns the totals since startup.
func (c *Collector) Snapshot() MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total.finish(c.now())
}

// Window returns the outcomes since the previous Window call and starts a
// new window.
func (c *Collector) Window() MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := c.now()
	snap := c.window.finish(at)
	c.window = MetricsSnapshot{Since: at}
	return snap
}
