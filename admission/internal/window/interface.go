package window

import (
	"time"

	"github.com/gammazero/deque"
)

// Granularity is the width of a single bucket. It is fixed.
const Granularity = time.Second

// Bucket holds the outcomes recorded within one second. Counts stop at
// math.MaxUint32 instead of wrapping.
type Bucket struct {
	timestamp time.Time
	requests  uint32
	successes uint32
}

// History is a sparse, time ordered list of buckets. Only seconds that
// saw at least one outcome get a bucket, so a quiet owner does not pay
// for the empty seconds in its window.
//
// History does no locking. It must only be used by the goroutine that
// owns it.
type History struct {
	base    time.Time
	buckets *deque.Deque[*Bucket]
}
