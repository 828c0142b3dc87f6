package window

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Unix(0, 0)

func at(d time.Duration) time.Time {
	return epoch.Add(d)
}

func TestRecordSameSecond(t *testing.T) {
	h := New(epoch)
	assert.True(t, h.Record(true, at(0)), "first record starts a bucket")
	assert.False(t, h.Record(false, at(300*time.Millisecond)), "same second reuses the bucket")
	assert.False(t, h.Record(true, at(999*time.Millisecond)), "same second reuses the bucket")

	if !assert.Equal(t, 1, h.Len(), "expected a single bucket") {
		return
	}

	requests, successes := h.Aggregate()
	assert.Equal(t, uint32(3), requests)
	assert.Equal(t, uint32(2), successes)

	b := h.buckets.Front()
	assert.Equal(t, at(0), b.Timestamp())
	assert.Equal(t, uint32(3), b.Requests())
	assert.Equal(t, uint32(2), b.Successes())
}

func TestRecordIsSparse(t *testing.T) {
	h := New(epoch)
	h.Record(true, at(0))
	h.Record(true, at(time.Second))
	h.Record(true, at(4*time.Second))

	assert.Equal(t, 3, h.Len(), "seconds without outcomes must not get a bucket")
	requests, successes := h.Aggregate()
	assert.Equal(t, uint32(3), requests)
	assert.Equal(t, uint32(3), successes)
}

func TestRecordTruncatesToSecond(t *testing.T) {
	h := New(epoch)
	h.Record(true, at(2500*time.Millisecond))

	oldest, ok := h.Oldest()
	if !assert.True(t, ok, "history should not be empty") {
		return
	}
	assert.Equal(t, at(2*time.Second), oldest)
}

func TestEvictBoundary(t *testing.T) {
	const w = 5 * time.Second

	testcases := []struct {
		name     string
		now      time.Duration
		retained int
	}{
		{"fresh", 0, 1},
		{"one second short", 4 * time.Second, 1},
		{"just short", 4900 * time.Millisecond, 1},
		{"exactly window old", 5 * time.Second, 0},
		{"older than window", 5900 * time.Millisecond, 0},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			h := New(epoch)
			h.Record(true, at(0))
			h.Evict(at(tc.now), w)
			assert.Equal(t, tc.retained, h.Len())
		})
	}
}

func TestEvictRemovesOldestPrefix(t *testing.T) {
	h := New(epoch)
	for i := 0; i < 6; i++ {
		h.Record(i%2 == 0, at(time.Duration(i)*time.Second))
	}

	evicted := h.Evict(at(7*time.Second), 5*time.Second)
	assert.Equal(t, 3, evicted, "buckets at 0, 1 and 2 are stale")
	assert.Equal(t, 3, h.Len())

	oldest, ok := h.Oldest()
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, at(3*time.Second), oldest)

	requests, successes := h.Aggregate()
	assert.Equal(t, uint32(3), requests)
	assert.Equal(t, uint32(1), successes, "only the bucket at 4 was a success")
}

func TestEvictIsIdempotent(t *testing.T) {
	h := New(epoch)
	h.Record(true, at(0))
	h.Record(false, at(3*time.Second))

	now := at(5 * time.Second)
	h.Evict(now, 5*time.Second)
	r1, s1 := h.Aggregate()
	h.Evict(now, 5*time.Second)
	r2, s2 := h.Aggregate()

	assert.Equal(t, r1, r2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, uint32(1), r2)
}

func TestEmptyHistory(t *testing.T) {
	h := New(epoch)

	_, ok := h.Oldest()
	assert.False(t, ok, "empty history has no oldest bucket")

	requests, successes := h.Aggregate()
	assert.Zero(t, requests)
	assert.Zero(t, successes)
	assert.Zero(t, h.Evict(at(time.Hour), time.Second))
}

func TestReset(t *testing.T) {
	h := New(epoch)
	h.Record(true, at(0))
	h.Record(true, at(time.Second))
	h.Reset()

	assert.Zero(t, h.Len())
	assert.True(t, h.Record(true, at(2*time.Second)), "a record after Reset starts a new bucket")
}

func TestRecordKeepsMonotonicReading(t *testing.T) {
	base := time.Now()
	h := New(base)
	h.Record(true, base.Add(1500*time.Millisecond))

	oldest, ok := h.Oldest()
	if !assert.True(t, ok, "history should not be empty") {
		return
	}
	assert.True(t, strings.Contains(oldest.String(), "m="), "bucket start should carry a monotonic reading, got %s", oldest)
	assert.Equal(t, time.Second, oldest.Sub(base))
}

func TestAggregateSaturates(t *testing.T) {
	h := New(epoch)
	h.buckets.PushBack(&Bucket{timestamp: at(0), requests: math.MaxUint32 - 1, successes: math.MaxUint32 - 1})
	h.buckets.PushBack(&Bucket{timestamp: at(time.Second), requests: 10, successes: 5})

	requests, successes := h.Aggregate()
	assert.Equal(t, uint32(math.MaxUint32), requests)
	assert.Equal(t, uint32(math.MaxUint32), successes)
}

func TestBucketSaturates(t *testing.T) {
	b := &Bucket{requests: math.MaxUint32, successes: 7}
	b.add(true)
	assert.Equal(t, uint32(math.MaxUint32), b.Requests())
	assert.Equal(t, uint32(7), b.Successes(), "successes never exceed requests")
}
