// Package geoip resolves the caller's approximate location and local
// currency from an external IP geolocation service. Resolution is
// best-effort: it runs once at startup and failures leave the session
// without a currency rather than blocking the application.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tally/internal/log"
)

var ErrResolution = errors.New("location resolution failed")

// Location is the subset of the geolocation response the application uses.
type Location struct {
	City     string `json:"city"`
	Country  string `json:"country_name"`
	Currency string `json:"currency"`
}

// Label renders the location for display, tolerating missing parts.
func (l Location) Label() string {
	switch {
	case l.City != "" && l.Country != "":
		return l.City + ", " + l.Country
	case l.Country != "":
		return l.Country
	default:
		return l.City
	}
}

type Resolver struct {
	url    string
	client *http.Client
	logger *log.Logger
}

func NewResolver(url string, timeout time.Duration, logger *log.Logger) *Resolver {
	return &Resolver{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger.WithComponent(log.ComponentGeoIP),
	}
}

// Resolve performs a single lookup. All failure modes wrap ErrResolution
// so callers can treat them uniformly.
func (r *Resolver) Resolve(ctx context.Context) (Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: unexpected status %d", ErrResolution, resp.StatusCode)
	}

	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return Location{}, fmt.Errorf("%w: decode response: %v", ErrResolution, err)
	}
	if loc.Currency == "" {
		return Location{}, fmt.Errorf("%w: response carries no currency", ErrResolution)
	}

	r.logger.InfoContext(ctx, "location resolved",
		log.FieldOperation, log.OpResolve,
		log.FieldCurrency, loc.Currency,
		"location", loc.Label())
	return loc, nil
}
