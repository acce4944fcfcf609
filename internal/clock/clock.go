// Package clock implements minute-of-day arithmetic on a 24-hour circular
// domain.
//
// A Time is the number of minutes since local midnight, always normalized
// into [0, 1440). Every operation is total: arithmetic wraps through
// midnight instead of failing.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the size of the circular domain.
const MinutesPerDay = 24 * 60

// ErrInvalidTime is returned by Parse for input that has no numeric hour.
var ErrInvalidTime = errors.New("invalid clock time")

// Time is a time of day in minutes since midnight.
type Time int

// New returns the normalized Time for hour:minute.
func New(hour, minute int) Time {
	return Time(mod(hour*60+minute, MinutesPerDay))
}

// Minutes normalizes an arbitrary minute count into a Time.
func Minutes(m int) Time {
	return Time(mod(m, MinutesPerDay))
}

// Parse reads "HH:MM", "H", or "HH:MM (TZ)". The hour is taken modulo 24
// and the minute modulo 60. A missing minute part means :00.
func Parse(s string) (Time, error) {
	raw := s
	s = strings.TrimSpace(s)
	// The Al Adhan API sometimes appends a zone label like " (BST)".
	if idx := strings.IndexByte(s, ' '); idx != -1 {
		s = s[:idx]
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidTime)
	}

	hourPart, minutePart, hasMinute := strings.Cut(s, ":")
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidTime, raw)
	}

	minute := 0
	if hasMinute {
		minute, err = strconv.Atoi(minutePart)
		if err != nil {
			return 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidTime, raw)
		}
	}

	return Time(mod(hour, 24)*60 + mod(minute, 60)), nil
}

// ParseOrZero is the lenient adapter used at data boundaries: anything
// Parse rejects becomes midnight.
func ParseOrZero(s string) Time {
	t, err := Parse(s)
	if err != nil {
		return 0
	}
	return t
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FromTime extracts the wall-clock minute of t in its own location.
func FromTime(t time.Time) Time {
	return New(t.Hour(), t.Minute())
}

// Hour returns the hour component (0-23).
func (t Time) Hour() int { return int(t.normalize()) / 60 }

// Minute returns the minute component (0-59).
func (t Time) Minute() int { return int(t.normalize()) % 60 }

// String renders the time as zero-padded 24-hour "HH:MM".
func (t Time) String() string {
	return Format(int(t))
}

// Format12h renders the time as "3:04 PM".
func (t Time) Format12h() string {
	h := t.Hour()
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute(), suffix)
}

// Layout renders the time with a Go layout; only "15:04" and "3:04 PM"
// are distinguished, matching the CLI's time_format setting.
func (t Time) Layout(layout string) string {
	if layout == "3:04 PM" {
		return t.Format12h()
	}
	return t.String()
}

// Format renders an arbitrary minute count as "HH:MM" after normalizing it.
func Format(minutes int) string {
	m := mod(minutes, MinutesPerDay)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// MarshalText encodes the time as "HH:MM".
func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes "HH:MM". Unlike ParseOrZero it rejects bad input.
func (t *Time) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Add returns t shifted by delta minutes, wrapping through midnight.
func (t Time) Add(delta int) Time {
	return Add(t, delta)
}

// On places t on date's calendar day, interpreted as wall time in loc.
// The day is taken from date as written, not converted into loc.
func (t Time) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// Add returns base shifted by delta minutes. Negative deltas wrap backwards.
func Add(base Time, delta int) Time {
	return Time(mod(int(base)+delta, MinutesPerDay))
}

// Compare returns a - b in minutes. Positive means a is later the same day.
func Compare(a, b Time) int {
	return int(a) - int(b)
}

// DurationBetween returns the minutes from start forward to end, wrapping
// through midnight when end is numerically before start. Never negative.
func DurationBetween(start, end Time) int {
	s, e := int(start.normalize()), int(end.normalize())
	if e >= s {
		return e - s
	}
	return MinutesPerDay - s + e
}

// StrictlyBetween reports start < t < end on the same day. Both ends are
// excluded, and an interval with end <= start is empty.
func StrictlyBetween(t, start, end Time) bool {
	if end <= start {
		return false
	}
	return start < t && t < end
}

// WithinWindowInclusive reports start <= t <= end. When end is before start
// the window is taken to cross midnight.
func WithinWindowInclusive(t, start, end Time) bool {
	if start <= end {
		return start <= t && t <= end
	}
	return t >= start || t <= end
}

// Max returns the later of a and b by plain same-day comparison.
func Max(a, b Time) Time {
	if a >= b {
		return a
	}
	return b
}

// FormatDuration renders a minute count as "7h 30m", or "45m" under an hour.
// Negative counts render with a leading minus.
func FormatDuration(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%s%dh %dm", sign, h, m)
	}
	return fmt.Sprintf("%s%dm", sign, m)
}

func (t Time) normalize() Time {
	return Time(mod(int(t), MinutesPerDay))
}

// mod is the mathematical modulo: the result has the sign of n.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
