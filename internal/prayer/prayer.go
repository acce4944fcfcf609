// Package prayer turns raw API timings into dated prayers and answers
// "what is current" and "what is next" questions about them.
package prayer

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/smokyabdulrahman/qiyam/internal/api"
	"github.com/smokyabdulrahman/qiyam/internal/clock"
)

// Prayer is a named instant.
type Prayer struct {
	Name string
	Time time.Time
}

// events is every name the API reports, in the order its payload lists them,
// with the abbreviation used by compact status lines.
var events = []struct{ name, short string }{
	{"Fajr", "F"},
	{"Sunrise", "S"},
	{"Dhuhr", "D"},
	{"Asr", "A"},
	{"Sunset", "St"},
	{"Maghrib", "M"},
	{"Isha", "I"},
	{"Imsak", "Im"},
	{"Midnight", "Mi"},
	{"Firstthird", "F3"},
	{"Lastthird", "L3"},
}

// AllPrayerNames lists every event name the API can return.
var AllPrayerNames = func() []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.name
	}
	return names
}()

// DefaultPrayerNames are shown when neither a flag nor the config picks a set.
var DefaultPrayerNames = []string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}

// ShortNames abbreviates every name in AllPrayerNames.
var ShortNames = func() map[string]string {
	m := make(map[string]string, len(events))
	for _, e := range events {
		m[e.name] = e.short
	}
	return m
}()

// ParseTimings places the selected timings on date in loc, keeping the
// order of selected. Any unknown name or unreadable time fails the whole call.
func ParseTimings(timings api.Timings, date time.Time, loc *time.Location, selected []string) ([]Prayer, error) {
	out := make([]Prayer, 0, len(selected))
	for _, name := range selected {
		raw, ok := timings.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}
		at, err := instant(raw, date, loc)
		if err != nil {
			return nil, fmt.Errorf("%s time %q: %w", name, raw, err)
		}
		out = append(out, Prayer{Name: name, Time: at})
	}
	return out, nil
}

// NextPrayer returns the first prayer strictly after now, or nil when the
// day is over and the caller needs tomorrow's list.
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	i := slices.IndexFunc(prayers, func(p Prayer) bool { return p.Time.After(now) })
	if i < 0 {
		return nil
	}
	return &prayers[i]
}

// CurrentPrayer returns the last prayer at or before now, or nil before the
// first one.
func CurrentPrayer(prayers []Prayer, now time.Time) *Prayer {
	i := slices.IndexFunc(prayers, func(p Prayer) bool { return p.Time.After(now) })
	switch {
	case i == 0 || len(prayers) == 0:
		return nil
	case i < 0:
		return &prayers[len(prayers)-1]
	default:
		return &prayers[i-1]
	}
}

// TimeRemaining is how long until p, negative once it has passed.
func TimeRemaining(p Prayer, now time.Time) time.Duration {
	return p.Time.Sub(now)
}

// FormatRemaining renders d as "2h 5m" or "40m". Past durations show "0m".
func FormatRemaining(d time.Duration) string {
	return clock.FormatDuration(max(0, int(d.Minutes())))
}

// instant reads an API time such as "04:31" or "04:31 (+03)" and anchors it
// on date's calendar day in loc. A bare hour is rejected here even though
// clock.Parse accepts it, since the API always sends minutes.
func instant(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	if !strings.Contains(raw, ":") {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}
	t, err := clock.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.On(date, loc), nil
}
