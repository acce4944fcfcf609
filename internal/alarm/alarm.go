// Package alarm keeps the user's alarm clock: a JSON-backed store, repeat
// rules and the hand-off to whatever actually rings.
package alarm

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/smokyabdulrahman/qiyam/internal/clock"
	"github.com/smokyabdulrahman/qiyam/internal/qiyam"
)

// Alarm is one entry of the alarm clock. An empty Days list means the alarm
// fires once, at the first occurrence of Time after ArmedAt.
//
// Time is a wall-clock time in Zone, an IANA name. An empty Zone means the
// zone of whatever instant the alarm is evaluated against.
type Alarm struct {
	ID        uuid.UUID      `json:"id"`
	Label     string         `json:"label" validate:"max=64"`
	Time      clock.Time     `json:"time"`
	Zone      string         `json:"zone,omitempty" validate:"omitempty,timezone"`
	Days      []time.Weekday `json:"days,omitempty" validate:"max=7,unique,dive,min=0,max=6"`
	Enabled   bool           `json:"enabled"`
	Ringtone  string         `json:"ringtone,omitempty" validate:"max=256"`
	Vibrate   bool           `json:"vibrate"`
	CreatedAt time.Time      `json:"created_at"`
	ArmedAt   time.Time      `json:"armed_at"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New returns an enabled alarm with a fresh ID.
func New(label string, at clock.Time, days ...time.Weekday) Alarm {
	now := time.Now()
	return Alarm{
		ID:        uuid.New(),
		Label:     label,
		Time:      at,
		Days:      days,
		Enabled:   true,
		Vibrate:   true,
		CreatedAt: now,
		ArmedAt:   now,
	}
}

// FromQiyam builds a one-shot alarm at the window's suggested wake time.
func FromQiyam(w qiyam.Window, label string) Alarm {
	if label == "" {
		label = "Qiyam"
	}
	return New(label, w.SuggestedWake)
}

// Validate reports malformed fields.
func (a Alarm) Validate() error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("alarm has no id")
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid alarm %s: %w", a.ShortID(), err)
	}
	return nil
}

// ShortID is the first eight characters of the ID, enough for the CLI.
func (a Alarm) ShortID() string {
	return a.ID.String()[:8]
}

// Repeats reports whether the alarm has repeat days.
func (a Alarm) Repeats() bool { return len(a.Days) > 0 }

// NextTrigger returns the first instant strictly after now at which the
// alarm fires. ok is false for a one-shot alarm that has already fired.
// Disabled alarms still report a time.
func (a Alarm) NextTrigger(now time.Time) (at time.Time, ok bool) {
	loc := a.Location(now.Location())
	if a.Repeats() {
		return a.occurrenceAfter(now, loc), true
	}
	from := a.ArmedAt
	if from.IsZero() || from.After(now) {
		from = now
	}
	at = a.occurrenceAfter(from, loc)
	return at, at.After(now)
}

// Fired reports whether a one-shot alarm has rung since it was armed.
func (a Alarm) Fired(now time.Time) bool {
	_, ok := a.NextTrigger(now)
	return !ok
}

// occurrenceAfter is the first time in loc the alarm's days allow strictly
// after t.
func (a Alarm) occurrenceAfter(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	for i := 0; i <= 7; i++ {
		at := a.Time.On(t.AddDate(0, 0, i), loc)
		if !at.After(t) {
			continue
		}
		if !a.Repeats() || slices.Contains(a.Days, at.Weekday()) {
			return at
		}
	}
	// Unreachable for valid days; fall back to tomorrow.
	return a.Time.On(t.AddDate(0, 0, 1), loc)
}

// Location resolves Zone, or returns fallback when Zone is empty or unknown.
func (a Alarm) Location(fallback *time.Location) *time.Location {
	if a.Zone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(a.Zone)
	if err != nil {
		return fallback
	}
	return loc
}

// DaysString renders the repeat rule: "once", "daily", "weekdays",
// "weekends" or a list like "Mon,Wed,Fri".
func (a Alarm) DaysString() string {
	days := slices.Clone(a.Days)
	slices.Sort(days)
	days = slices.Compact(days)

	switch {
	case len(days) == 0:
		return "once"
	case len(days) == 7:
		return "daily"
	case slices.Equal(days, weekdays):
		return "weekdays"
	case slices.Equal(days, weekends):
		return "weekends"
	}

	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ",")
}

var (
	weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	weekends = []time.Weekday{time.Sunday, time.Saturday}
)

// ParseDays reads a repeat rule as produced by DaysString. Day names are
// matched on their first three letters, case-insensitively.
func ParseDays(s string) ([]time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "once":
		return nil, nil
	case "daily":
		return []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}, nil
	case "weekdays":
		return slices.Clone(weekdays), nil
	case "weekends":
		return slices.Clone(weekends), nil
	}

	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) < 3 {
			return nil, fmt.Errorf("unknown day %q", part)
		}
		d, ok := dayNames[part[:3]]
		if !ok {
			return nil, fmt.Errorf("unknown day %q", part)
		}
		if !slices.Contains(days, d) {
			days = append(days, d)
		}
	}
	slices.Sort(days)
	return days, nil
}

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}
