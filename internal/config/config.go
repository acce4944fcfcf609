// Package config provides persistent configuration for the qiyam CLI.
//
// Configuration is stored as JSON at ~/.config/qiyam/config.json
// (XDG-compliant). The merge priority is: CLI flags > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	configDirName  = "qiyam"
	configFileName = "config.json"
	alarmsFileName = "alarms.json"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"city", "country",
	"latitude", "longitude",
	"method", "school",
	"time_format",
	"prayers",
	"cache_dir",
	"desired_sleep", "isha_buffer", "min_night_start",
	"post_fajr", "post_fajr_buffer", "post_fajr_cutoff", "latest_morning_end",
	"naps", "prayer_buffer", "wake_buffer",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	City       string  `json:"city,omitempty"`
	Country    string  `json:"country,omitempty"`
	Latitude   float64 `json:"latitude,omitempty" validate:"min=-90,max=90"`
	Longitude  float64 `json:"longitude,omitempty" validate:"min=-180,max=180"`
	Method     *int    `json:"method,omitempty" validate:"omitempty,min=0,max=23"` // pointer so we can distinguish "not set" from 0
	School     *int    `json:"school,omitempty" validate:"omitempty,oneof=0 1"`    // pointer so we can distinguish "not set" from 0
	TimeFormat string  `json:"time_format,omitempty" validate:"omitempty,oneof=12h 24h"`
	Prayers    string  `json:"prayers,omitempty" validate:"omitempty,prayers"` // comma-separated list
	CacheDir   string  `json:"cache_dir,omitempty"`

	// Sleep and Qiyam settings. Durations are in minutes.
	DesiredSleep     *int   `json:"desired_sleep,omitempty" validate:"omitempty,min=0,max=1440"`
	IshaBuffer       *int   `json:"isha_buffer,omitempty" validate:"omitempty,min=0,max=240"`
	MinNightStart    string `json:"min_night_start,omitempty" validate:"omitempty,clock"`
	PostFajr         *bool  `json:"post_fajr,omitempty"`
	PostFajrBuffer   *int   `json:"post_fajr_buffer,omitempty" validate:"omitempty,min=0,max=240"`
	PostFajrCutoff   string `json:"post_fajr_cutoff,omitempty" validate:"omitempty,clock"`
	LatestMorningEnd string `json:"latest_morning_end,omitempty" validate:"omitempty,clock"`
	Naps             string `json:"naps,omitempty" validate:"omitempty,naps"` // "HH:MM/min,..."
	PrayerBuffer     *int   `json:"prayer_buffer,omitempty" validate:"omitempty,min=0,max=240"`
	WakeBuffer       *int   `json:"wake_buffer,omitempty" validate:"omitempty,min=0,max=240"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	method := -1
	school := -1
	desired := DefaultDesiredSleep
	isha := DefaultIshaBuffer
	postFajr := DefaultPostFajr
	postFajrBuffer := DefaultPostFajrBuffer
	prayerBuffer := DefaultPrayerBuffer
	wake := DefaultWakeBuffer
	return Config{
		Method:           &method,
		School:           &school,
		TimeFormat:       "24h",
		DesiredSleep:     &desired,
		IshaBuffer:       &isha,
		MinNightStart:    DefaultMinNightStart,
		PostFajr:         &postFajr,
		PostFajrBuffer:   &postFajrBuffer,
		PostFajrCutoff:   DefaultPostFajrCutoff,
		LatestMorningEnd: DefaultLatestMorningEnd,
		PrayerBuffer:     &prayerBuffer,
		WakeBuffer:       &wake,
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// AlarmsPath returns the path of the alarm store, next to the config file.
func AlarmsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, alarmsFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path. Values are checked
// with the same rules as Set, so a hand-edited file fails early.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// The value is parsed into the field's type, then checked against the
// field's validation rule. On error the config is left unchanged.
func (c *Config) Set(key, value string) error {
	field, ok := keyFields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	next := *c
	if err := next.assign(key, value); err != nil {
		if errors.Is(err, errEmpty) {
			return fmt.Errorf("invalid %s %q: %s", key, value, hints[key])
		}
		return err
	}
	if err := validateFields(&next, field); err != nil {
		return fmt.Errorf("invalid %s %q: %s", key, value, hints[key])
	}

	*c = next
	return nil
}

func (c *Config) assign(key, value string) error {
	return keys[key].set(c, value)
}

// Get returns the string value of a config key, or "" when it is unset.
func (c *Config) Get(key string) (string, error) {
	k, ok := keys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return k.get(c), nil
}

var errEmpty = errors.New("empty value")

// accessor reads and writes one key as text.
type accessor struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

var keys = map[string]accessor{
	"city":               text(func(c *Config) *string { return &c.City }, false),
	"country":            text(func(c *Config) *string { return &c.Country }, false),
	"latitude":           coord("latitude", func(c *Config) *float64 { return &c.Latitude }),
	"longitude":          coord("longitude", func(c *Config) *float64 { return &c.Longitude }),
	"method":             integer("method", func(c *Config) **int { return &c.Method }),
	"school":             integer("school", func(c *Config) **int { return &c.School }),
	"time_format":        text(func(c *Config) *string { return &c.TimeFormat }, true),
	"prayers":            text(func(c *Config) *string { return &c.Prayers }, true),
	"cache_dir":          text(func(c *Config) *string { return &c.CacheDir }, false),
	"desired_sleep":      integer("desired_sleep", func(c *Config) **int { return &c.DesiredSleep }),
	"isha_buffer":        integer("isha_buffer", func(c *Config) **int { return &c.IshaBuffer }),
	"min_night_start":    text(func(c *Config) *string { return &c.MinNightStart }, false),
	"post_fajr":          boolean("post_fajr", func(c *Config) **bool { return &c.PostFajr }),
	"post_fajr_buffer":   integer("post_fajr_buffer", func(c *Config) **int { return &c.PostFajrBuffer }),
	"post_fajr_cutoff":   text(func(c *Config) *string { return &c.PostFajrCutoff }, false),
	"latest_morning_end": text(func(c *Config) *string { return &c.LatestMorningEnd }, false),
	"naps":               text(func(c *Config) *string { return &c.Naps }, false),
	"prayer_buffer":      integer("prayer_buffer", func(c *Config) **int { return &c.PrayerBuffer }),
	"wake_buffer":        integer("wake_buffer", func(c *Config) **int { return &c.WakeBuffer }),
}

// text stores the value as given. required rejects "", which would
// otherwise read back as unset and skip validation.
func text(field func(*Config) *string, required bool) accessor {
	return accessor{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			if required && v == "" {
				return errEmpty
			}
			*field(c) = v
			return nil
		},
	}
}

// coord treats 0 as unset, matching the omitempty JSON encoding.
func coord(key string, field func(*Config) *float64) accessor {
	return accessor{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(c), 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be a number", key, v)
			}
			*field(c) = f
			return nil
		},
	}
}

func integer(key string, field func(*Config) **int) accessor {
	return accessor{
		get: func(c *Config) string {
			if p := *field(c); p != nil {
				return strconv.Itoa(*p)
			}
			return ""
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be an integer", key, v)
			}
			*field(c) = &n
			return nil
		},
	}
}

func boolean(key string, field func(*Config) **bool) accessor {
	return accessor{
		get: func(c *Config) string {
			if p := *field(c); p != nil {
				return strconv.FormatBool(*p)
			}
			return ""
		},
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: must be true or false", key, v)
			}
			*field(c) = &b
			return nil
		},
	}
}

// validPrayerNames are the prayer names the API supports.
var validPrayerNames = map[string]bool{
	"Fajr": true, "Sunrise": true, "Dhuhr": true, "Asr": true,
	"Sunset": true, "Maghrib": true, "Isha": true,
	"Imsak": true, "Midnight": true, "Firstthird": true, "Lastthird": true,
}

func isValidPrayerName(name string) bool {
	return validPrayerNames[name]
}

// MethodOrDefault returns the method value, falling back to the given default.
func (c *Config) MethodOrDefault(def int) int {
	if c.Method != nil {
		return *c.Method
	}
	return def
}

// SchoolOrDefault returns the school value, falling back to the given default.
func (c *Config) SchoolOrDefault(def int) int {
	if c.School != nil {
		return *c.School
	}
	return def
}
