package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/smokyabdulrahman/qiyam/internal/clock"
	"github.com/smokyabdulrahman/qiyam/internal/planner"
)

// Sleep defaults.
const (
	DefaultDesiredSleep     = 420
	DefaultIshaBuffer       = 30
	DefaultMinNightStart    = "21:30"
	DefaultPostFajr         = true
	DefaultPostFajrBuffer   = 30
	DefaultPostFajrCutoff   = "06:30"
	DefaultLatestMorningEnd = "08:00"
	DefaultPrayerBuffer     = 10
	DefaultWakeBuffer       = 15
)

// ParseNaps reads "HH:MM/min,HH:MM/min". An empty string means no naps.
func ParseNaps(s string) ([]planner.Nap, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) > planner.MaxNaps {
		return nil, fmt.Errorf("at most %d naps, got %d", planner.MaxNaps, len(parts))
	}

	naps := make([]planner.Nap, 0, len(parts))
	for _, part := range parts {
		start, dur, ok := strings.Cut(strings.TrimSpace(part), "/")
		if !ok {
			return nil, fmt.Errorf("nap %q: want HH:MM/minutes", part)
		}
		if !clockPattern.MatchString(start) {
			return nil, fmt.Errorf("nap %q: bad start time", part)
		}
		minutes, err := strconv.Atoi(dur)
		if err != nil || minutes <= 0 || minutes > 720 {
			return nil, fmt.Errorf("nap %q: duration must be 1-720 minutes", part)
		}
		naps = append(naps, planner.Nap{Start: clock.MustParse(start), DurationMin: minutes})
	}
	return naps, nil
}

// FormatNaps is the inverse of ParseNaps.
func FormatNaps(naps []planner.Nap) string {
	parts := make([]string, len(naps))
	for i, n := range naps {
		parts[i] = fmt.Sprintf("%s/%d", n.Start, n.DurationMin)
	}
	return strings.Join(parts, ",")
}

// SleepConstraints builds one snapshot of the sleep settings, filling
// unset keys from the defaults.
func (c *Config) SleepConstraints() (planner.Constraints, error) {
	if err := validateFields(c, sleepFields...); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return planner.Constraints{}, fmt.Errorf("invalid sleep setting %s", verrs[0].Field())
		}
		return planner.Constraints{}, fmt.Errorf("invalid sleep settings: %w", err)
	}

	naps, err := ParseNaps(c.Naps)
	if err != nil {
		return planner.Constraints{}, fmt.Errorf("invalid naps: %w", err)
	}

	return planner.Constraints{
		DesiredSleepMinutes:         intOr(c.DesiredSleep, DefaultDesiredSleep),
		IshaBufferMin:               intOr(c.IshaBuffer, DefaultIshaBuffer),
		MinNightStart:               clockOr(c.MinNightStart, DefaultMinNightStart),
		PostFajrEnabled:             boolOr(c.PostFajr, DefaultPostFajr),
		PostFajrBufferMin:           intOr(c.PostFajrBuffer, DefaultPostFajrBuffer),
		DisallowPostFajrIfFajrAfter: clockOr(c.PostFajrCutoff, DefaultPostFajrCutoff),
		LatestMorningEnd:            clockOr(c.LatestMorningEnd, DefaultLatestMorningEnd),
		Naps:                        naps,
		PrayerBufferMin:             intOr(c.PrayerBuffer, DefaultPrayerBuffer),
	}.Normalize(), nil
}

// WakeBufferOrDefault returns the minutes to wake ahead of the Qiyam window.
func (c *Config) WakeBufferOrDefault() int {
	return intOr(c.WakeBuffer, DefaultWakeBuffer)
}

func intOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

// clockOr parses a validated time, falling back to def when unset.
func clockOr(s, def string) clock.Time {
	if s == "" {
		s = def
	}
	return clock.ParseOrZero(s)
}
