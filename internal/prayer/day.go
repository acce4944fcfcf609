package prayer

import (
	"strings"

	"github.com/smokyabdulrahman/qiyam/internal/api"
	"github.com/smokyabdulrahman/qiyam/internal/clock"
	"github.com/smokyabdulrahman/qiyam/internal/planner"
	"github.com/smokyabdulrahman/qiyam/internal/qiyam"
)

// Day is one day's prayer times as minute-of-day values. A nil field means
// the source had no usable time for it.
type Day struct {
	Date    string      `json:"date"`
	Fajr    *clock.Time `json:"fajr,omitempty"`
	Sunrise *clock.Time `json:"sunrise,omitempty"`
	Dhuhr   *clock.Time `json:"dhuhr,omitempty"`
	Asr     *clock.Time `json:"asr,omitempty"`
	Maghrib *clock.Time `json:"maghrib,omitempty"`
	Isha    *clock.Time `json:"isha,omitempty"`
}

// DayFromTimings adapts API timings. Fields that fail to parse stay nil
// rather than collapsing to midnight.
func DayFromTimings(t api.Timings, date string) Day {
	return Day{
		Date:    date,
		Fajr:    optional(t.Fajr),
		Sunrise: optional(t.Sunrise),
		Dhuhr:   optional(t.Dhuhr),
		Asr:     optional(t.Asr),
		Maghrib: optional(t.Maghrib),
		Isha:    optional(t.Isha),
	}
}

func optional(raw string) *clock.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, err := clock.Parse(raw)
	if err != nil {
		return nil
	}
	return &t
}

// QiyamWindow returns the last third of the night starting at this day's
// Maghrib. nextFajr should be the following morning's Fajr; when nil, this
// day's Fajr stands in for it. ok is false without Maghrib or Fajr.
func (d Day) QiyamWindow(nextFajr *clock.Time, wakeBufferMin int) (w qiyam.Window, ok bool) {
	fajr := nextFajr
	if fajr == nil {
		fajr = d.Fajr
	}
	if d.Maghrib == nil || fajr == nil {
		return qiyam.Window{}, false
	}
	return qiyam.LastThird(*d.Maghrib, *fajr, wakeBufferMin), true
}

// PlannerInputs builds the planner's view of the day. qiyamStart may be nil,
// in which case the plan comes back not ready.
func (d Day) PlannerInputs(qiyamStart *clock.Time) planner.Prayers {
	return planner.Prayers{
		Isha:       d.Isha,
		QiyamStart: qiyamStart,
		Fajr:       d.Fajr,
		Dhuhr:      d.Dhuhr,
	}
}
