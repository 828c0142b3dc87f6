package http

import (
	"time"

	"github.com/cenk/backoff"
	"github.com/lestrrat/go-admission-control/admission"
	"github.com/lestrrat/go-admission-control/internal/option"
)

// WithClient specifies the HTTPClient that requests are sent with.
// By default a zero value *http.Client is used.
func WithClient(c HTTPClient) Option {
	return option.NewValue("Client", c)
}

// WithClock specifies the clock used to time out requests. Normally,
// this is only used for testing
func WithClock(c admission.Clock) Option {
	return option.NewValue("Clock", c)
}

// WithTimeout specifies how long an attempt may take before it is
// abandoned and recorded as a failure. 0 disables the timeout.
func WithTimeout(d time.Duration) Option {
	return option.NewValue("Timeout", d)
}

// WithBackOff specifies the policy used to retry failed attempts. Every
// attempt is recorded as a separate outcome. Requests to hosts without
// a controller are retried the same way, without being recorded. By
// default failed requests are not retried.
func WithBackOff(b backoff.BackOff) Option {
	return option.NewValue("Backoff", b)
}

// WithErrorOnBadStatus specifies if 5XX responses are failures. The
// default is true.
func WithErrorOnBadStatus(b bool) Option {
	return option.NewValue("ErrorOnBadStatus", b)
}
