package admission

import (
	"errors"
	"strconv"
	"time"
)

type invalidWindowErr struct {
	window time.Duration
}

func (e invalidWindowErr) Error() string {
	return ErrInvalidWindow.Error() + " " + strconv.Quote(e.window.String()) + ": must be a positive whole number of seconds"
}

func (e invalidWindowErr) Unwrap() error {
	return ErrInvalidWindow
}

func (e invalidWindowErr) InvalidWindow() bool {
	return true
}

type invalidWindower interface {
	InvalidWindow() bool
}

// IsInvalidWindow returns true if the error is caused by a sampling
// window that New refused.
func IsInvalidWindow(err error) bool {
	var iw invalidWindower
	if errors.As(err, &iw) {
		return iw.InvalidWindow()
	}
	return false
}
