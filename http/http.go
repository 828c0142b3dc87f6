package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenk/backoff"
	"github.com/lestrrat/go-admission-control/admission"
	pdebug "github.com/lestrrat/go-pdebug"
)

// NewClient creates a new HTTP Client whose requests are recorded into
// the admission controller(s) provided by `l`.
//
// Possible optional parameters:
// * WithClient: specify the HTTP Client instance
// * WithClock: specify the clock used for timeouts
// * WithTimeout: abandon attempts that take longer than this
// * WithBackOff: retry failed attempts using this policy
// * WithErrorOnBadStatus: specify if you want 5XX status codes to be recorded as failures
func NewClient(l ControllerLookupper, options ...Option) *Client {
	var cl HTTPClient
	var clock admission.Clock
	var bo backoff.BackOff
	var timeout time.Duration
	errOnBadStatus := true
	for _, option := range options {
		switch option.Name() {
		case "Client":
			cl = option.Get().(HTTPClient)
		case "Clock":
			clock = option.Get().(admission.Clock)
		case "Timeout":
			timeout = option.Get().(time.Duration)
		case "Backoff":
			bo = option.Get().(backoff.BackOff)
		case "ErrorOnBadStatus":
			errOnBadStatus = option.Get().(bool)
		}
	}
	if cl == nil {
		cl = &http.Client{}
	}
	if clock == nil {
		clock = admission.SystemClock
	}

	return &Client{
		backoff:        bo,
		client:         cl,
		clock:          clock,
		errOnBadStatus: errOnBadStatus,
		lookup:         l,
		timeout:        timeout,
	}
}

// Do wraps http.Client Do(). When retries are enabled the request body
// is rewound with req.GetBody between attempts.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.call(req.URL.String(), func(attempt int) (*http.Response, error) {
		if attempt == 0 {
			return c.client.Do(req)
		}

		r := req.Clone(req.Context())
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			r.Body = body
		}
		return c.client.Do(r)
	})
}

// Get wraps http.Client Get()
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Head wraps http.Client Head()
func (c *Client) Head(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post wraps http.Client Post()
func (c *Client) Post(url string, bodyType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", bodyType)
	return c.Do(req)
}

// PostForm wraps http.Client PostForm()
func (c *Client) PostForm(url string, data url.Values) (*http.Response, error) {
	return c.Post(url, "application/x-www-form-urlencoded", strings.NewReader(data.Encode()))
}

func (c *Client) call(rawURL string, fn func(int) (*http.Response, error)) (res *http.Response, err error) {
	if pdebug.Enabled {
		g := pdebug.Marker("http.Client.call %s", rawURL).BindError(&err)
		defer g.End()
	}

	// a nil controller means the host is not tracked; attempts are
	// still retried, they just are not recorded
	ctl := c.lookup.ControllerLookup(rawURL)

	var attempts int
	op := func() error {
		n := attempts
		attempts++

		var aerr error
		res, aerr = c.attempt(func() (*http.Response, error) { return fn(n) })
		if aerr != nil {
			if pdebug.Enabled {
				pdebug.Printf("attempt %d failed: %s", n, aerr)
			}
			if ctl != nil {
				ctl.RecordFailure()
			}
			return aerr
		}
		if ctl != nil {
			ctl.RecordSuccess()
		}
		return nil
	}

	if c.backoff == nil {
		err = op()
		return res, err
	}

	err = backoff.Retry(op, c.backoff)
	return res, err
}

// attempt runs a single request, enforcing the timeout and the bad
// status rule. A non-nil error always comes with a nil response.
func (c *Client) attempt(fn func() (*http.Response, error)) (*http.Response, error) {
	var res *http.Response
	var err error

	switch c.timeout {
	case 0:
		res, err = fn()
	default:
		type result struct {
			res *http.Response
			err error
		}

		// register the timer before the request can start
		timeout := c.clock.After(c.timeout)
		rc := make(chan result)
		done := make(chan struct{})
		defer close(done)

		go func() {
			r, e := fn()
			select {
			case rc <- result{res: r, err: e}:
			case <-done:
				if r != nil {
					r.Body.Close()
				}
			}
		}()

		select {
		case r := <-rc:
			res, err = r.res, r.err
		case <-timeout:
			return nil, ErrTimeout
		}
	}

	if err != nil {
		return nil, err
	}

	if c.errOnBadStatus && res.StatusCode >= http.StatusInternalServerError {
		res.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, res.Status)
	}
	return res, nil
}
