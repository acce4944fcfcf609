package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/qiyam/internal/api"
	"github.com/smokyabdulrahman/qiyam/internal/cache"
	"github.com/smokyabdulrahman/qiyam/internal/config"
	"github.com/smokyabdulrahman/qiyam/internal/geo"
	"github.com/smokyabdulrahman/qiyam/internal/prayer"
)

// locationMode describes how the user specified their location.
type locationMode int

const (
	locationCoords locationMode = iota
	locationCity
)

// resolvedLocation holds the result of location resolution.
type resolvedLocation struct {
	Mode     locationMode
	Lat, Lon float64
	City     string
	Country  string
	Timezone string // optional hint from geo-detection
}

// fetchResult holds the data returned from a prayer times fetch.
type fetchResult struct {
	Timings  api.Timings
	Meta     api.Meta
	DateInfo api.DateInfo
}

// dayData holds a single day's parsed data for list/query output.
type dayData struct {
	Date     time.Time
	Timings  api.Timings
	DateInfo api.DateInfo
	Meta     api.Meta
}

// session is what every data-driven command needs: the merged config, a
// resolved location and somewhere to fetch timings from.
type session struct {
	cfg    *config.Config
	cache  *cache.Cache // nil when the cache directory is unusable
	client *api.Client
	loc    resolvedLocation
	method int
	school int
	layout string // "15:04" or "3:04 PM"
}

// newSession merges config and flags, opens the cache and resolves the
// location. Cache failures are not fatal.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg := effectiveConfig(cmd)

	c, err := cache.New(cfg.CacheDir, cache.WithLogger(logger))
	if err != nil {
		logger.Warn("cache disabled", "error", err)
		c = nil
	}

	s := &session{
		cfg:    cfg,
		cache:  c,
		client: api.NewClient(logger),
		method: cfg.MethodOrDefault(-1),
		school: cfg.SchoolOrDefault(-1),
		layout: layoutFor(cfg.TimeFormat),
	}

	s.loc, err = resolveLocation(cmd.Context(), cfg.Latitude, cfg.Longitude, cfg.City, cfg.Country, c)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// layoutFor maps the time_format setting to a Go layout.
func layoutFor(timeFormat string) string {
	if timeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// selectedPrayers returns the prayers to show. Priority: override > config > defaults.
func selectedPrayers(override string, cfg *config.Config) []string {
	raw := override
	if raw == "" {
		raw = cfg.Prayers
	}
	if raw == "" {
		return prayer.DefaultPrayerNames
	}
	names := strings.Split(raw, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// timezone picks the location's timezone, falling back to the API's.
func (s *session) timezone(meta api.Meta) (*time.Location, string, error) {
	tz := s.loc.Timezone
	if tz == "" {
		tz = meta.Timezone
	}
	tzLoc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, "", fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return tzLoc, tz, nil
}

// resolveLocation picks the location in priority order: explicit
// coordinates, then city and country, then a cached lookup, then a fresh IP
// lookup which is cached for next time.
func resolveLocation(ctx context.Context, lat, lon float64, city, country string, c *cache.Cache) (resolvedLocation, error) {
	switch {
	case lat != 0 || lon != 0:
		return resolvedLocation{Mode: locationCoords, Lat: lat, Lon: lon}, nil
	case city != "" && country == "":
		return resolvedLocation{}, fmt.Errorf("--country is required when using --city")
	case city != "":
		return resolvedLocation{Mode: locationCity, City: city, Country: country}, nil
	}

	if c != nil {
		if cached := c.LoadGeo(); cached != nil {
			logger.Debug("using cached geolocation", "city", cached.City)
			return detectedLocation(cached), nil
		}
	}

	found, err := geo.DetectLocation(ctx, logger)
	if err != nil {
		return resolvedLocation{}, fmt.Errorf("no location specified and auto-detection failed: %w", err)
	}
	if c != nil {
		if err := c.SaveGeo(found); err != nil {
			logger.Warn("could not cache geolocation", "error", err)
		}
	}
	return detectedLocation(found), nil
}

// detectedLocation queries by coordinates but keeps the place name for
// display and the zone as a hint.
func detectedLocation(g *geo.Location) resolvedLocation {
	return resolvedLocation{
		Mode:     locationCoords,
		Lat:      g.Latitude,
		Lon:      g.Longitude,
		City:     g.City,
		Country:  g.Country,
		Timezone: g.Timezone,
	}
}

// timings returns one day's timings, from the cache when possible.
func (s *session) timings(ctx context.Context, date time.Time) (*fetchResult, error) {
	l := s.loc
	if s.cache != nil {
		if e := s.cache.LoadTimings(date, l.Lat, l.Lon, l.City, l.Country, s.method, s.school); e != nil {
			return &fetchResult{Timings: e.Timings, Meta: e.Meta, DateInfo: e.DateInfo}, nil
		}
	}

	fetch := func() (*api.Response, error) {
		if l.Mode == locationCity {
			return s.client.FetchByCity(ctx, date, l.City, l.Country, s.method, s.school)
		}
		return s.client.FetchByCoordinates(ctx, date, l.Lat, l.Lon, s.method, s.school)
	}
	resp, err := fetch()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SaveTimings(date, l.Lat, l.Lon, l.City, l.Country, s.method, s.school, resp); err != nil {
			logger.Warn("could not cache timings", "error", err)
		}
	}
	d := resp.Data
	return &fetchResult{Timings: d.Timings, Meta: d.Meta, DateInfo: d.Date}, nil
}

// calendarDays returns days consecutive days from start. Each month touched
// costs one calendar request, or none when cached.
func (s *session) calendarDays(ctx context.Context, start time.Time, days int) ([]dayData, error) {
	months := map[string][]api.Data{}
	out := make([]dayData, 0, days)

	for i := range days {
		d := start.AddDate(0, 0, i)
		key := d.Format("2006-01")
		month, ok := months[key]
		if !ok {
			var err error
			if month, err = s.month(ctx, d.Year(), int(d.Month())); err != nil {
				return nil, err
			}
			months[key] = month
		}

		if d.Day() > len(month) {
			return nil, fmt.Errorf("calendar for %s has %d days, need day %d", key, len(month), d.Day())
		}
		entry := month[d.Day()-1]
		out = append(out, dayData{Date: d, Timings: entry.Timings, DateInfo: entry.Date, Meta: entry.Meta})
	}
	return out, nil
}

func (s *session) month(ctx context.Context, year, month int) ([]api.Data, error) {
	l := s.loc
	if s.cache != nil {
		if e := s.cache.LoadCalendar(year, month, l.Lat, l.Lon, l.City, l.Country, s.method, s.school); e != nil {
			return e.Days, nil
		}
	}

	fetch := func() (*api.CalendarResponse, error) {
		if l.Mode == locationCity {
			return s.client.FetchCalendarByCity(ctx, year, month, l.City, l.Country, s.method, s.school)
		}
		return s.client.FetchCalendarByCoordinates(ctx, year, month, l.Lat, l.Lon, s.method, s.school)
	}
	resp, err := fetch()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar for %d-%02d: %w", year, month, err)
	}

	if s.cache != nil {
		if err := s.cache.SaveCalendar(year, month, l.Lat, l.Lon, l.City, l.Country, s.method, s.school, resp); err != nil {
			logger.Warn("could not cache calendar", "error", err)
		}
	}
	return resp.Data, nil
}

// buildLocationStr builds a "City, Country" string from available data.
func buildLocationStr(loc resolvedLocation, meta api.Meta) string {
	if loc.City != "" && loc.Country != "" {
		return loc.City + ", " + loc.Country
	}
	return fmt.Sprintf("%.4f, %.4f", meta.Latitude, meta.Longitude)
}

// jsonLocation is the location block shared by every JSON output.
type jsonLocation struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func newJSONLocation(loc resolvedLocation, meta api.Meta, tz string) jsonLocation {
	return jsonLocation{
		City:      loc.City,
		Country:   loc.Country,
		Timezone:  tz,
		Latitude:  meta.Latitude,
		Longitude: meta.Longitude,
	}
}
