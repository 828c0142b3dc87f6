package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenk/backoff"
	"github.com/lestrrat/go-admission-control/admission"
	"github.com/lestrrat/go-admission-control/internal/option"
)

// Error codes returned by Client
var (
	ErrBadStatus = errors.New("bad HTTP status")
	ErrTimeout   = errors.New("request timed out")
)

type Option = option.Interface

// HTTPClient is the subset of *http.Client that Client needs
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a wrapper around http.Client that records the outcome of
// every request attempt into an admission.Controller.
//
// Since Controllers are owned by a single goroutine, so is a Client:
// give each worker its own Client and its own Controllers.
type Client struct {
	backoff        backoff.BackOff
	client         HTTPClient
	clock          admission.Clock
	errOnBadStatus bool
	lookup         ControllerLookupper
	timeout        time.Duration
}

// ControllerLookupper picks the controller that a request to the given
// URL should be recorded into. A nil Controller means the request is
// not tracked.
type ControllerLookupper interface {
	ControllerLookup(string) admission.Controller
}

type PerHostLookup struct {
	hosts admission.Map
}
