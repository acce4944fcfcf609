package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// StatusError is returned when the API answers with a non-200 HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger

	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string

	// Attempts is the total number of tries for a transient failure.
	Attempts uint
	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration
}

// NewClient creates a new API client with sensible defaults.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:     logger,
		BaseURL:    defaultBaseURL,
		Attempts:   3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// FetchByCoordinates fetches prayer times for the given date and coordinates.
func (c *Client) FetchByCoordinates(ctx context.Context, date time.Time, lat, lon float64, method, school int) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, date.Format("02-01-2006"))

	var resp Response
	if err := c.get(ctx, endpoint, coordinateParams(lat, lon, method, school), &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: code=%d status=%s", resp.Code, resp.Status)
	}
	return &resp, nil
}

// FetchByCity fetches prayer times for the given date, city, and country.
func (c *Client) FetchByCity(ctx context.Context, date time.Time, city, country string, method, school int) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timingsByCity/%s", c.BaseURL, date.Format("02-01-2006"))

	var resp Response
	if err := c.get(ctx, endpoint, cityParams(city, country, method, school), &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: code=%d status=%s", resp.Code, resp.Status)
	}
	return &resp, nil
}

// FetchCalendarByCoordinates fetches a whole month of prayer times.
func (c *Client) FetchCalendarByCoordinates(ctx context.Context, year, month int, lat, lon float64, method, school int) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendar/%d/%d", c.BaseURL, year, month)

	var resp CalendarResponse
	if err := c.get(ctx, endpoint, coordinateParams(lat, lon, method, school), &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: code=%d status=%s", resp.Code, resp.Status)
	}
	return &resp, nil
}

// FetchCalendarByCity fetches a whole month of prayer times for a city.
func (c *Client) FetchCalendarByCity(ctx context.Context, year, month int, city, country string, method, school int) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendarByCity/%d/%d", c.BaseURL, year, month)

	var resp CalendarResponse
	if err := c.get(ctx, endpoint, cityParams(city, country, method, school), &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: code=%d status=%s", resp.Code, resp.Status)
	}
	return &resp, nil
}

func coordinateParams(lat, lon float64, method, school int) url.Values {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	setMethodSchool(params, method, school)
	return params
}

func cityParams(city, country string, method, school int) url.Values {
	params := url.Values{}
	params.Set("city", city)
	params.Set("country", country)
	setMethodSchool(params, method, school)
	return params
}

// setMethodSchool adds method and school unless they are negative,
// which means "let the API choose".
func setMethodSchool(params url.Values, method, school int) {
	if method >= 0 {
		params.Set("method", strconv.Itoa(method))
	}
	if school >= 0 {
		params.Set("school", strconv.Itoa(school))
	}
}

// get performs a GET with retries and decodes the JSON body into out.
// Transport errors, 429 and 5xx responses are retried; everything else
// fails immediately.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	start := time.Now()

	c.logger.Debug("making API request", "url", reqURL)

	var lastErr error
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
			if err != nil {
				lastErr = fmt.Errorf("building request: %w", err)
				return retry.Unrecoverable(lastErr)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				lastErr = fmt.Errorf("API request failed: %w", err)
				return lastErr
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					return lastErr
				}
				return retry.Unrecoverable(lastErr)
			}

			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				lastErr = fmt.Errorf("failed to decode API response: %w", err)
				return retry.Unrecoverable(lastErr)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(max(1, c.Attempts)),
		retry.Delay(c.RetryDelay),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying API request", "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		c.logger.Debug("API request failed", "url", reqURL, "error", lastErr, "duration", time.Since(start))
		return lastErr
	}

	c.logger.Debug("API request completed", "url", reqURL, "duration", time.Since(start))
	return nil
}
