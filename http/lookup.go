package http

import (
	"net/url"

	"github.com/lestrrat/go-admission-control/admission"
)

// DefaultControllerName is the entry PerHostLookup falls back to when
// a URL cannot be parsed
const DefaultControllerName = "_default"

// NewPerHostLookup creates a lookup that keys controllers by URL host
func NewPerHostLookup(hosts admission.Map) *PerHostLookup {
	return &PerHostLookup{
		hosts: hosts,
	}
}

func (l *PerHostLookup) ControllerLookup(rawURL string) admission.Controller {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		c, _ := l.hosts.Get(DefaultControllerName)
		return c
	}

	c, ok := l.hosts.Get(parsedURL.Host)
	if !ok {
		return nil
	}
	return c
}
