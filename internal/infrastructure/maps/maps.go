// Package maps turns a memo's free-text location into links an external map
// viewer can open.
package maps

import (
	"context"
	"fmt"
	"memocal/internal/pkg/logger"
	"net/url"
	"strings"

	appErrors "memocal/internal/pkg/errors"
)

// Launcher builds map links using a preferred provider with a generic geo: fallback.
type Launcher struct {
	baseURL *url.URL
	log     logger.Logger
}

// Target is what a client should open for one location.
type Target struct {
	Location string `json:"location"`
	URL      string `json:"url"`     // Preferred provider
	GeoURI   string `json:"geo_uri"` // Any app handling geo: URIs
}

// NewLauncher creates a Launcher for the provider search endpoint baseURL.
func NewLauncher(baseURL string, log logger.Logger) (*Launcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid maps base url %q", baseURL)
	}
	return &Launcher{baseURL: u, log: log}, nil
}

// Open resolves the links for location. A blank location has no handler.
func (l *Launcher) Open(ctx context.Context, location string) (*Target, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		l.log.Warn("No location to open in a map viewer")
		return nil, appErrors.ErrNoMapHandler
	}

	u := *l.baseURL
	q := u.Query()
	q.Set("api", "1")
	q.Set("query", location)
	u.RawQuery = q.Encode()

	target := &Target{
		Location: location,
		URL:      u.String(),
		GeoURI:   "geo:0,0?q=" + url.QueryEscape(location),
	}
	l.log.Debug(fmt.Sprintf("Resolved map target for %q: %s", location, target.URL))
	return target, nil
}
