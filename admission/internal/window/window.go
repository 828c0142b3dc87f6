// Package window implements the per-second outcome history used by
// admission controllers.
package window

import (
	"math"
	"time"

	"github.com/gammazero/deque"
)

// Timestamp returns the start of the second this bucket covers
func (b *Bucket) Timestamp() time.Time {
	return b.timestamp
}

// Requests returns the number of outcomes recorded in this bucket
func (b *Bucket) Requests() uint32 {
	return b.requests
}

// Successes returns the number of successful outcomes recorded in this bucket
func (b *Bucket) Successes() uint32 {
	return b.successes
}

func (b *Bucket) add(success bool) {
	if b.requests == math.MaxUint32 {
		return
	}
	b.requests++
	if success {
		b.successes++
	}
}

// New creates an empty history. Buckets start at whole seconds counted
// from base, and are computed with base.Add so that they keep the
// monotonic clock reading of base, if it has one.
func New(base time.Time) *History {
	return &History{
		base:    base,
		buckets: deque.New[*Bucket](),
	}
}

// Record adds an outcome to the bucket for the second containing now,
// creating the bucket if this is the first outcome of that second.
// Calls must arrive in non-decreasing time order. The return value
// reports whether a new bucket was started.
func (h *History) Record(success bool, now time.Time) bool {
	ts := h.base.Add(now.Sub(h.base).Truncate(Granularity))
	if h.buckets.Len() > 0 {
		if b := h.buckets.Back(); !ts.After(b.timestamp) {
			b.add(success)
			return false
		}
	}

	b := &Bucket{timestamp: ts}
	b.add(success)
	h.buckets.PushBack(b)
	return true
}

// Evict drops every bucket that is at least window old, that is every
// bucket whose timestamp is at or before now - window.
func (h *History) Evict(now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	var evicted int
	for h.buckets.Len() > 0 && !h.buckets.Front().timestamp.After(cutoff) {
		h.buckets.PopFront()
		evicted++
	}
	return evicted
}

// Aggregate sums the requests and successes of all retained buckets,
// saturating at math.MaxUint32. Callers are expected to Evict first.
func (h *History) Aggregate() (requests, successes uint32) {
	var r, s uint64
	for i := 0; i < h.buckets.Len(); i++ {
		b := h.buckets.At(i)
		r += uint64(b.requests)
		s += uint64(b.successes)
	}
	return saturate(r), saturate(s)
}

func saturate(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// Oldest returns the timestamp of the earliest retained bucket. The
// boolean is false if the history is empty.
func (h *History) Oldest() (time.Time, bool) {
	if h.buckets.Len() == 0 {
		return time.Time{}, false
	}
	return h.buckets.Front().timestamp, true
}

// Len returns the number of retained buckets
func (h *History) Len() int {
	return h.buckets.Len()
}

// Reset drops all buckets
func (h *History) Reset() {
	h.buckets.Clear()
}
