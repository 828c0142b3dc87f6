package admission

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lestrrat/go-admission-control/admission/internal/window"
	"github.com/lestrrat/go-admission-control/internal/option"
)

// Clock is an interface that defines a pluggable clock (as opposed to
// using the `time` package directly). This interface lists the only
// methods that this package cares about. You can either use your own
// implementation, or use a another library such as github.com/facebookgo/clock
type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

type systemClock struct{}

// SystemClock is a simple clock using the time package
var SystemClock = systemClock{}

// DefaultSamplingWindow is the sampling window used when none is
// configured, 30 seconds.
const DefaultSamplingWindow = 30 * time.Second

// ErrInvalidWindow is returned by New when the sampling window is not a
// positive whole number of seconds.
var ErrInvalidWindow = errors.New("invalid sampling window")

// RequestData is the number of requests and successful requests seen
// within the current sampling window.
type RequestData struct {
	Requests  uint32
	Successes uint32
}

// Controller tracks request outcomes over a trailing sampling window.
//
// A Controller is owned by exactly one goroutine. None of its methods
// are safe for concurrent use, and none of them need to be: give each
// worker its own Controller and combine their results above this layer
// if a global view is needed.
type Controller interface {
	// RecordSuccess records a successful request at the current time
	RecordSuccess()
	// RecordFailure records a failed request at the current time
	RecordFailure()
	// RequestCounts returns the totals over the sampling window
	RequestCounts() RequestData
	// SamplingWindow returns the configured window length
	SamplingWindow() time.Duration
	// AverageRPS returns the average number of requests per second over
	// the sampling window, or 0 if the history does not yet span it.
	AverageRPS() uint32
}

// LocalController is the Controller implementation. See New.
type LocalController struct {
	clock   Clock
	history *window.History
	window  time.Duration
}

// Event indicates the type of event received over an event channel
type Event int

const (
	// TrafficEvent is sent when an outcome is recorded while the
	// controller was idle
	TrafficEvent Event = iota + 1

	// DrainedEvent is sent when every recorded outcome has aged out of
	// the sampling window
	DrainedEvent

	// RateReadyEvent is sent when AverageRPS starts reporting a non-zero rate
	RateReadyEvent

	// RateWithheldEvent is sent when AverageRPS goes back to reporting 0
	RateWithheldEvent
)

// DefaultEventBuffer is the number of events an EventEmitter or
// EventSubscription holds before it starts dropping them
const DefaultEventBuffer = 16

// EventSubscription describes a subscription to an EventEmitter
type EventSubscription struct {
	C       chan Event
	emitter *eventEmitter
}

// EventEmitter is used to wrap a Controller so that state transitions
// observed by its owner can be received elsewhere.
type EventEmitter interface {
	Controller
	Emitting() <-chan struct{}
	Emit(context.Context)
	Events() chan Event
	Subscribe(context.Context) *EventSubscription
}

type eventEmitter struct {
	controller  Controller
	emitting    chan struct{}
	events      chan Event
	mutex       sync.RWMutex
	subscribers map[*EventSubscription]struct{}

	// only touched by the owner of controller
	active    bool
	rateReady bool
}

// Option is the interface used to provide optional arguments
type Option = option.Interface

// Map represents a map of controllers, such as one per worker or one
// per upstream host
type Map interface {
	Get(string) (Controller, bool)
	Set(string, Controller)
}

type simpleMap struct {
	mutex       sync.RWMutex
	controllers map[string]Controller
}
