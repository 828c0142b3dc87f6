package admission

import "github.com/lestrrat/go-admission-control/internal/option"

// WithClock is used specify the clock used by the controller.
// Normally, this is only used for testing
func WithClock(v Clock) Option {
	return option.NewValue("Clock", v)
}
