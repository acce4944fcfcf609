package config

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// keyFields maps config keys to the struct fields validated for them.
var keyFields = map[string]string{
	"city":               "City",
	"country":            "Country",
	"latitude":           "Latitude",
	"longitude":          "Longitude",
	"method":             "Method",
	"school":             "School",
	"time_format":        "TimeFormat",
	"prayers":            "Prayers",
	"cache_dir":          "CacheDir",
	"desired_sleep":      "DesiredSleep",
	"isha_buffer":        "IshaBuffer",
	"min_night_start":    "MinNightStart",
	"post_fajr":          "PostFajr",
	"post_fajr_buffer":   "PostFajrBuffer",
	"post_fajr_cutoff":   "PostFajrCutoff",
	"latest_morning_end": "LatestMorningEnd",
	"naps":               "Naps",
	"prayer_buffer":      "PrayerBuffer",
	"wake_buffer":        "WakeBuffer",
}

// hints describe each key's accepted values in error messages.
var hints = map[string]string{
	"latitude":           "must be between -90 and 90",
	"longitude":          "must be between -180 and 180",
	"method":             "must be between 0 and 23",
	"school":             "must be 0 (Shafi) or 1 (Hanafi)",
	"time_format":        `must be "12h" or "24h"`,
	"prayers":            "must be a comma-separated list of prayer names",
	"desired_sleep":      "must be between 0 and 1440 minutes",
	"isha_buffer":        "must be between 0 and 240 minutes",
	"min_night_start":    "must be a 24-hour time like 21:30",
	"post_fajr_buffer":   "must be between 0 and 240 minutes",
	"post_fajr_cutoff":   "must be a 24-hour time like 06:30",
	"latest_morning_end": "must be a 24-hour time like 08:00",
	"naps":               `must look like "13:30/30,16:00/20" with at most 3 naps`,
	"prayer_buffer":      "must be between 0 and 240 minutes",
	"wake_buffer":        "must be between 0 and 240 minutes",
}

// sleepFields are the struct fields read by SleepConstraints.
var sleepFields = []string{
	"DesiredSleep", "IshaBuffer", "MinNightStart",
	"PostFajrBuffer", "PostFajrCutoff", "LatestMorningEnd",
	"Naps", "PrayerBuffer", "WakeBuffer",
}

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("naps", func(fl validator.FieldLevel) bool {
		_, err := ParseNaps(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("prayers", func(fl validator.FieldLevel) bool {
		for _, n := range strings.Split(fl.Field().String(), ",") {
			if !isValidPrayerName(strings.TrimSpace(n)) {
				return false
			}
		}
		return true
	})
	return v
}

func validateFields(c *Config, fields ...string) error {
	return validate.StructPartial(c, fields...)
}

// Validate checks every field of a config read from disk. Defaults are not
// meant to pass through it: method and school use -1 for "let the API pick".
func (c *Config) Validate() error {
	return validate.Struct(c)
}
