// Package geo resolves the user's approximate location from their public IP.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Location holds geographic coordinates detected from the user's IP.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// ipAPIResponse maps the response from ip-api.com.
type ipAPIResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Timezone string  `json:"timezone"`
}

const defaultURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

// ErrLookupFailed is returned when the service answers but cannot place the IP.
var ErrLookupFailed = errors.New("geolocation failed")

// Detector looks up the caller's location through ip-api.com, a free service
// that requires no API key.
type Detector struct {
	// URL is the lookup endpoint. Exported for testing with httptest.
	URL        string
	Attempts   uint
	RetryDelay time.Duration

	client *http.Client
	logger *slog.Logger
}

// NewDetector returns a Detector with production defaults.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detector{
		URL:        defaultURL,
		Attempts:   3,
		RetryDelay: 500 * time.Millisecond,
		client:     &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}
}

// Detect performs the lookup. Transport errors and 5xx answers are retried.
func (d *Detector) Detect(ctx context.Context) (*Location, error) {
	var result ipAPIResponse
	var lastErr error

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, http.NoBody)
			if err != nil {
				lastErr = fmt.Errorf("geolocation request: %w", err)
				return retry.Unrecoverable(lastErr)
			}

			resp, err := d.client.Do(req)
			if err != nil {
				lastErr = fmt.Errorf("geolocation request failed: %w", err)
				return lastErr
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				lastErr = fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
				if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
					return lastErr
				}
				return retry.Unrecoverable(lastErr)
			}

			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				lastErr = fmt.Errorf("failed to decode geolocation response: %w", err)
				return retry.Unrecoverable(lastErr)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(max(1, d.Attempts)),
		retry.Delay(d.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Info("retrying geolocation lookup", "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, lastErr
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, result.Message)
	}

	d.logger.Debug("detected location", "city", result.City, "country", result.Country, "timezone", result.Timezone)
	return &Location{
		Latitude:  result.Lat,
		Longitude: result.Lon,
		City:      result.City,
		Country:   result.Country,
		Timezone:  result.Timezone,
	}, nil
}

// DetectLocation is Detect with a default Detector.
func DetectLocation(ctx context.Context, logger *slog.Logger) (*Location, error) {
	return NewDetector(logger).Detect(ctx)
}
