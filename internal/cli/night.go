package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/qiyam/internal/api"
	"github.com/smokyabdulrahman/qiyam/internal/clock"
	"github.com/smokyabdulrahman/qiyam/internal/planner"
	"github.com/smokyabdulrahman/qiyam/internal/prayer"
	"github.com/smokyabdulrahman/qiyam/internal/qiyam"
)

// night pairs an evening with the morning after it. The Qiyam window and
// the sleep plan both span the two dates.
type night struct {
	Date    time.Time // the evening's calendar date, in the location's timezone
	Evening prayer.Day
	Morning prayer.Day
}

// nightsFrom turns n+1 consecutive days into n nights.
func nightsFrom(days []dayData, tzLoc *time.Location) []night {
	var nights []night
	for i := 0; i+1 < len(days); i++ {
		date := days[i].Date.In(tzLoc)
		nights = append(nights, night{
			Date:    date,
			Evening: prayer.DayFromTimings(days[i].Timings, date.Format("2006-01-02")),
			Morning: prayer.DayFromTimings(days[i+1].Timings, days[i+1].Date.In(tzLoc).Format("2006-01-02")),
		})
	}
	return nights
}

// tonightIndex picks the night in progress or about to start. Before the
// morning's Fajr the night that began yesterday evening is still current.
func tonightIndex(nights []night, now clock.Time) int {
	if len(nights) > 1 && nights[0].Morning.Fajr != nil && now < *nights[0].Morning.Fajr {
		return 0
	}
	if len(nights) > 1 {
		return 1
	}
	return 0
}

// window is the last third of this night.
func (n night) window(wakeBufferMin int) (qiyam.Window, bool) {
	return n.Evening.QiyamWindow(n.Morning.Fajr, wakeBufferMin)
}

// plan runs the planner over this night. The evening supplies Isha; the
// morning supplies Fajr and Dhuhr.
func (n night) plan(c planner.Constraints, wakeBufferMin int) (qiyam.Window, bool, planner.Result) {
	w, ok := n.window(wakeBufferMin)
	var start *clock.Time
	if ok {
		start = &w.Start
	}
	in := n.Evening.PlannerInputs(start)
	in.Fajr = n.Morning.Fajr
	in.Dhuhr = n.Morning.Dhuhr
	return w, ok, planner.Plan(c, in)
}

// at places a time of day on the absolute timeline of this night: the
// first occurrence at or after the evening's Maghrib, or after midnight
// starting the evening's date when Maghrib is unknown.
func (n night) at(t clock.Time) time.Time {
	base := time.Date(n.Date.Year(), n.Date.Month(), n.Date.Day(), 0, 0, 0, 0, n.Date.Location())
	if n.Evening.Maghrib == nil {
		return t.On(base, base.Location())
	}
	anchor := n.Evening.Maghrib.On(base, base.Location())
	return anchor.Add(time.Duration(clock.DurationBetween(*n.Evening.Maghrib, t)) * time.Minute)
}

// nightSet is the result of loadNights.
type nightSet struct {
	Nights []night
	Loc    *time.Location
	TZ     string
	Meta   api.Meta
}

// loadNights fetches enough days to describe `count` nights and returns
// them starting with tonight.
func loadNights(ctx context.Context, s *session, now time.Time, count int) (*nightSet, error) {
	// Yesterday is fetched too: shortly after midnight the current night
	// began on the previous date.
	days, err := s.calendarDays(ctx, now.AddDate(0, 0, -1), count+2)
	if err != nil {
		return nil, err
	}
	tzLoc, tz, err := s.timezone(days[0].Meta)
	if err != nil {
		return nil, err
	}

	nights := nightsFrom(days, tzLoc)
	i := tonightIndex(nights, clock.FromTime(now.In(tzLoc)))
	nights = nights[i:]
	if len(nights) > count {
		nights = nights[:count]
	}
	if len(nights) == 0 {
		return nil, fmt.Errorf("no prayer data for tonight")
	}
	return &nightSet{Nights: nights, Loc: tzLoc, TZ: tz, Meta: days[i].Meta}, nil
}
