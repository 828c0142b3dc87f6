// Package admission keeps the recent request statistics an admission
// controller needs in order to decide whether to shed load.
//
// A Controller records the outcome (success or failure) of every
// request handled by its owner, and answers two questions about the
// trailing sampling window: how many requests were seen and how many of
// them succeeded, and what the average request rate over the window was.
//
// Outcomes are kept in one bucket per second. Seconds that saw no
// requests take no space. Stale buckets are dropped when the controller
// is queried and whenever a new bucket is started, so recording a
// request is a comparison and an increment in the common case.
//
// Controllers do no locking. Create one per worker goroutine and never
// share it; anything that needs a process wide picture should combine
// the results of several Controllers itself.
package admission

import (
	"math"
	"time"

	"github.com/lestrrat/go-admission-control/admission/internal/window"
	pdebug "github.com/lestrrat/go-pdebug"
)

// Failures returns the number of requests that did not succeed
func (d RequestData) Failures() uint32 {
	return d.Requests - d.Successes
}

// New creates a controller that tracks outcomes over samplingWindow,
// which must be a positive whole number of seconds no larger than
// math.MaxUint32 seconds. The window cannot be changed afterwards.
//
// Possible optional parameters:
// * WithClock: specify the clock used to timestamp outcomes
func New(samplingWindow time.Duration, options ...Option) (*LocalController, error) {
	if samplingWindow <= 0 || samplingWindow%window.Granularity != 0 || samplingWindow/window.Granularity > math.MaxUint32 {
		return nil, invalidWindowErr{window: samplingWindow}
	}

	var c LocalController
	for _, option := range options {
		switch option.Name() {
		case "Clock":
			c.clock = option.Get().(Clock)
		}
	}

	if c.clock == nil {
		c.clock = SystemClock
	}

	// buckets are counted from here, keeping the monotonic reading
	c.history = window.New(c.clock.Now())
	c.window = samplingWindow
	return &c, nil
}

// RecordSuccess records a successful request
func (c *LocalController) RecordSuccess() {
	c.record(true)
}

// RecordFailure records a failed request
func (c *LocalController) RecordFailure() {
	c.record(false)
}

func (c *LocalController) record(success bool) {
	now := c.clock.Now()
	if c.history.Record(success, now) {
		// at most once per second; keeps a write-only owner from
		// accumulating buckets nobody will ever read
		c.history.Evict(now, c.window)
	}
}

// RequestCounts returns the number of requests and successes recorded
// within the sampling window. The counts can go down between two calls
// without anything being recorded, simply because time has passed.
func (c *LocalController) RequestCounts() RequestData {
	c.evict(c.clock.Now())

	var rd RequestData
	rd.Requests, rd.Successes = c.history.Aggregate()
	return rd
}

// SamplingWindow returns the sampling window given to New
func (c *LocalController) SamplingWindow() time.Duration {
	return c.window
}

// AverageRPS returns the number of requests in the sampling window
// divided by the window length in seconds, rounded down.
//
// The rate is only reported once the oldest retained outcome is at
// least one second short of a full window old. Before that point
// dividing by the full window would understate the real rate, so 0 is
// returned instead.
func (c *LocalController) AverageRPS() uint32 {
	now := c.clock.Now()
	c.evict(now)

	oldest, ok := c.history.Oldest()
	if !ok || now.Sub(oldest) < c.window-window.Granularity {
		if pdebug.Enabled {
			pdebug.Printf("AverageRPS: history does not span %s yet", c.window)
		}
		return 0
	}

	requests, _ := c.history.Aggregate()
	return requests / uint32(c.window/window.Granularity)
}

// Reset drops all recorded outcomes
func (c *LocalController) Reset() {
	c.history.Reset()
}

func (c *LocalController) evict(now time.Time) {
	n := c.history.Evict(now, c.window)
	if pdebug.Enabled && n > 0 {
		pdebug.Printf("evicted %d stale buckets, %d left", n, c.history.Len())
	}
}
