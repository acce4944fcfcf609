// Package cache stores prayer times and geolocation results on disk, with an
// in-process layer in front so a single run does not re-read the same file.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/smokyabdulrahman/qiyam/internal/api"
	"github.com/smokyabdulrahman/qiyam/internal/geo"
)

const (
	prayerCacheFile   = "timings_%s.json"  // keyed by hash
	calendarCacheFile = "calendar_%s.json" // keyed by hash
	geoCacheFile      = "geolocation.json"
	geoTTL            = 24 * time.Hour

	memoryTTL  = time.Hour
	memorySize = 512
)

// Cache provides file-based caching for prayer times and geolocation data.
type Cache struct {
	dir    string
	memory *otter.Cache[string, []byte]
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// PrayerCacheEntry stores a day's prayer times along with metadata for validation.
type PrayerCacheEntry struct {
	Date     string       `json:"date"` // YYYY-MM-DD
	Method   int          `json:"method"`
	School   int          `json:"school"`
	Timings  api.Timings  `json:"timings"`
	Meta     api.Meta     `json:"meta"`
	DateInfo api.DateInfo `json:"date_info"`
}

// CalendarCacheEntry stores a month of prayer times.
type CalendarCacheEntry struct {
	Year   int        `json:"year"`
	Month  int        `json:"month"`
	Method int        `json:"method"`
	School int        `json:"school"`
	Days   []api.Data `json:"days"`
}

// GeoCacheEntry stores a cached geolocation result with a timestamp.
type GeoCacheEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/qiyam/.
func New(dir string, opts ...Option) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "qiyam")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	c := &Cache{
		dir: dir,
		memory: otter.Must(&otter.Options[string, []byte]{
			MaximumSize:      memorySize,
			ExpiryCalculator: otter.ExpiryWriting[string, []byte](memoryTTL),
		}),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// cacheKey builds a deterministic hash from the parameters that affect prayer times.
// This ensures different locations/methods/schools get separate cache files.
func cacheKey(date string, lat, lon float64, city, country string, method, school int) string {
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%d|%d", date, lat, lon, city, country, method, school)
	return shortHash(raw)
}

// calendarKey is cacheKey for a whole month.
func calendarKey(year, month int, lat, lon float64, city, country string, method, school int) string {
	raw := fmt.Sprintf("cal|%04d-%02d|%.6f|%.6f|%s|%s|%d|%d", year, month, lat, lon, city, country, method, school)
	return shortHash(raw)
}

func shortHash(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8]) // 16 hex chars is plenty for uniqueness
}

// LoadTimings attempts to read cached prayer times for the given parameters.
// Returns nil if the cache is missing or stale (wrong date).
func (c *Cache) LoadTimings(date time.Time, lat, lon float64, city, country string, method, school int) *PrayerCacheEntry {
	dateStr := date.Format("2006-01-02")
	name := fmt.Sprintf(prayerCacheFile, cacheKey(dateStr, lat, lon, city, country, method, school))

	var entry PrayerCacheEntry
	if !c.read(name, &entry) {
		return nil
	}

	// Validate the date matches -- stale cache for a previous day is useless.
	if entry.Date != dateStr {
		return nil
	}

	return &entry
}

// SaveTimings writes prayer times to the cache.
func (c *Cache) SaveTimings(date time.Time, lat, lon float64, city, country string, method, school int, resp *api.Response) error {
	dateStr := date.Format("2006-01-02")
	name := fmt.Sprintf(prayerCacheFile, cacheKey(dateStr, lat, lon, city, country, method, school))

	return c.write(name, PrayerCacheEntry{
		Date:     dateStr,
		Method:   method,
		School:   school,
		Timings:  resp.Data.Timings,
		Meta:     resp.Data.Meta,
		DateInfo: resp.Data.Date,
	})
}

// LoadCalendar reads a cached month. Returns nil on a miss or mismatch.
func (c *Cache) LoadCalendar(year, month int, lat, lon float64, city, country string, method, school int) *CalendarCacheEntry {
	name := fmt.Sprintf(calendarCacheFile, calendarKey(year, month, lat, lon, city, country, method, school))

	var entry CalendarCacheEntry
	if !c.read(name, &entry) {
		return nil
	}
	if entry.Year != year || entry.Month != month || len(entry.Days) == 0 {
		return nil
	}
	return &entry
}

// SaveCalendar writes a month of prayer times to the cache.
func (c *Cache) SaveCalendar(year, month int, lat, lon float64, city, country string, method, school int, resp *api.CalendarResponse) error {
	name := fmt.Sprintf(calendarCacheFile, calendarKey(year, month, lat, lon, city, country, method, school))

	return c.write(name, CalendarCacheEntry{
		Year:   year,
		Month:  month,
		Method: method,
		School: school,
		Days:   resp.Data,
	})
}

// LoadGeo attempts to read a cached geolocation result.
// Returns nil if the cache is missing or older than the TTL (24 hours).
func (c *Cache) LoadGeo() *geo.Location {
	var entry GeoCacheEntry
	if !c.read(geoCacheFile, &entry) {
		return nil
	}

	if time.Since(entry.CachedAt) > geoTTL {
		c.logger.Debug("geolocation cache expired", "cached_at", entry.CachedAt)
		return nil
	}

	return &entry.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *Cache) SaveGeo(loc *geo.Location) error {
	return c.write(geoCacheFile, GeoCacheEntry{
		Location: *loc,
		CachedAt: time.Now(),
	})
}

// Clear removes every cached file and empties the in-memory layer.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", e.Name(), err)
		}
	}
	c.memory.InvalidateAll()
	return nil
}

// read decodes the named file into v, consulting memory before disk.
// Any failure is a miss.
func (c *Cache) read(name string, v any) bool {
	data, ok := c.memory.GetIfPresent(name)
	if !ok {
		var err error
		data, err = os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			c.logger.Debug("cache miss", "file", name)
			return false
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Debug("cache entry unreadable", "file", name, "error", err)
		c.memory.Invalidate(name)
		return false
	}

	if !ok {
		c.memory.Set(name, data)
	}
	c.logger.Debug("cache hit", "file", name, "from_memory", ok)
	return true
}

func (c *Cache) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	c.memory.Set(name, data)
	return nil
}
