package admission

import (
	"context"
	"strconv"
	"time"

	pdebug "github.com/lestrrat/go-pdebug"
)

func (e Event) String() string {
	switch e {
	case TrafficEvent:
		return "traffic"
	case DrainedEvent:
		return "drained"
	case RateReadyEvent:
		return "rate-ready"
	case RateWithheldEvent:
		return "rate-withheld"
	}
	return "(unknown:" + strconv.Itoa(int(e)) + ")"
}

// NewEventEmitter wraps Controller and creates an EventEmitter
// (which also satisfies the Controller interface) that can
// generate events.
//
// Transitions are detected as a side effect of the owner calling the
// Controller methods, so the EventEmitter has the same single owner
// rule as the Controller it wraps. Only Emit and Subscribe may be
// called from other goroutines.
func NewEventEmitter(c Controller) EventEmitter {
	return &eventEmitter{
		controller:  c,
		emitting:    make(chan struct{}),
		events:      make(chan Event, DefaultEventBuffer),
		subscribers: make(map[*EventSubscription]struct{}),
	}
}

func (e *eventEmitter) Events() chan Event {
	return e.events
}

func emitEvent(e EventEmitter, ev Event) {
	select {
	case e.Events() <- ev:
	default:
	}
}

func (e *eventEmitter) RecordSuccess() {
	e.controller.RecordSuccess()
	e.recorded()
}

func (e *eventEmitter) RecordFailure() {
	e.controller.RecordFailure()
	e.recorded()
}

func (e *eventEmitter) recorded() {
	if !e.active {
		e.active = true
		emitEvent(e, TrafficEvent)
	}
}

func (e *eventEmitter) RequestCounts() RequestData {
	rd := e.controller.RequestCounts()
	if e.active && rd.Requests == 0 {
		e.active = false
		emitEvent(e, DrainedEvent)
	}
	return rd
}

func (e *eventEmitter) SamplingWindow() time.Duration {
	return e.controller.SamplingWindow()
}

func (e *eventEmitter) AverageRPS() uint32 {
	rps := e.controller.AverageRPS()
	switch {
	case rps > 0 && !e.rateReady:
		e.rateReady = true
		emitEvent(e, RateReadyEvent)
	case rps == 0 && e.rateReady:
		e.rateReady = false
		emitEvent(e, RateWithheldEvent)
	}
	return rps
}

func (e *eventEmitter) Emitting() <-chan struct{} {
	return e.emitting
}

// Emit does a fan-out of Controller events. It returns when ctx is done.
func (e *eventEmitter) Emit(ctx context.Context) {
	close(e.emitting)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.events:
			if pdebug.Enabled {
				pdebug.Printf("Received event %s", ev)
			}

			e.mutex.RLock()
			for s := range e.subscribers {
				select {
				case s.C <- ev:
				default:
				}
			}
			e.mutex.RUnlock()
		}
	}
}

// Subscribe starts a new subscription. The subscription is removed
// when ctx is done or Stop is called, whichever comes first.
func (e *eventEmitter) Subscribe(ctx context.Context) *EventSubscription {
	s := &EventSubscription{
		C:       make(chan Event, DefaultEventBuffer),
		emitter: e,
	}
	e.mutex.Lock()
	e.subscribers[s] = struct{}{}
	e.mutex.Unlock()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return s
}

func (e *eventEmitter) remove(s *EventSubscription) {
	e.mutex.Lock()
	delete(e.subscribers, s)
	e.mutex.Unlock()
}

// Stop removes the subscription from the associated EventEmitter
// and stops receiving events
func (s *EventSubscription) Stop() {
	s.emitter.remove(s)
}
