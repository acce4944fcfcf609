// Package planner allocates a night's sleep around the prayer schedule.
//
// Plan is a greedy allocator over the circular day. Opportunities are
// visited in a fixed priority order (night, post-Fajr, naps in declaration
// order); each one is clipped to its own window and to the remaining need.
// The night block is the exception: it is always allocated in full.
package planner

import (
	"fmt"

	"github.com/smokyabdulrahman/qiyam/internal/clock"
)

// MaxNaps is the number of nap slots a plan considers.
const MaxNaps = 3

// Block labels.
const (
	LabelNight    = "Night sleep"
	LabelPostFajr = "Post-Fajr sleep"
)

// Nap is a daytime sleep opportunity.
type Nap struct {
	Start       clock.Time `json:"start"`
	DurationMin int        `json:"duration_min"`
}

// Constraints is one immutable snapshot of the user's sleep settings.
type Constraints struct {
	DesiredSleepMinutes int
	IshaBufferMin       int
	MinNightStart       clock.Time

	PostFajrEnabled             bool
	PostFajrBufferMin           int
	DisallowPostFajrIfFajrAfter clock.Time
	LatestMorningEnd            clock.Time

	Naps            []Nap
	PrayerBufferMin int
}

// Normalize returns a copy with negative durations and buffers clamped to
// zero and at most MaxNaps naps. The receiver is not modified.
func (c Constraints) Normalize() Constraints {
	out := c
	out.DesiredSleepMinutes = max(0, c.DesiredSleepMinutes)
	out.IshaBufferMin = max(0, c.IshaBufferMin)
	out.PostFajrBufferMin = max(0, c.PostFajrBufferMin)
	out.PrayerBufferMin = max(0, c.PrayerBufferMin)

	n := min(len(c.Naps), MaxNaps)
	out.Naps = make([]Nap, n)
	for i := range n {
		out.Naps[i] = Nap{Start: c.Naps[i].Start, DurationMin: max(0, c.Naps[i].DurationMin)}
	}
	return out
}

// Prayers holds the day's times the planner reads. A nil field is unknown.
type Prayers struct {
	Isha       *clock.Time
	QiyamStart *clock.Time
	Fajr       *clock.Time
	Dhuhr      *clock.Time
}

// Block is one allocated sleep period.
type Block struct {
	Label            string     `json:"label"`
	Start            clock.Time `json:"start"`
	End              clock.Time `json:"end"`
	AllocatedMinutes int        `json:"allocated_minutes"`
}

// PostFajrStatus explains the outcome of the post-Fajr step.
type PostFajrStatus int

const (
	PostFajrScheduled PostFajrStatus = iota
	PostFajrDisabled
	PostFajrNoFajr
	PostFajrTooLate
	PostFajrNotNeeded
	PostFajrNoWindow
)

var postFajrMessages = map[PostFajrStatus]string{
	PostFajrScheduled: "scheduled",
	PostFajrDisabled:  "disabled in settings",
	PostFajrNoFajr:    "Fajr time unknown",
	PostFajrTooLate:   "Fajr is later than the allowed cutoff",
	PostFajrNotNeeded: "night sleep already covers the target",
	PostFajrNoWindow:  "no room before the latest morning end",
}

func (s PostFajrStatus) String() string {
	if m, ok := postFajrMessages[s]; ok {
		return m
	}
	return fmt.Sprintf("PostFajrStatus(%d)", int(s))
}

// MarshalText renders the status message.
func (s PostFajrStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the outcome of a planning call. When Ready is false the
// upstream data was incomplete and nothing else is set.
type Result struct {
	Ready                 bool           `json:"ready"`
	Blocks                []Block        `json:"blocks"`
	TotalAllocatedMinutes int            `json:"total_allocated_minutes"`
	DesiredMinutes        int            `json:"desired_minutes"`
	DeficitMinutes        int            `json:"deficit_minutes"`
	PostFajr              PostFajrStatus `json:"post_fajr"`
}

// Summary describes how the plan compares with the target.
func (r Result) Summary() string {
	switch {
	case !r.Ready:
		return "Prayer data not ready"
	case r.DeficitMinutes > 0:
		return fmt.Sprintf("Short by %s", clock.FormatDuration(r.DeficitMinutes))
	case r.DeficitMinutes == 0:
		return "Target met"
	default:
		return fmt.Sprintf("Target met (+%s)", clock.FormatDuration(-r.DeficitMinutes))
	}
}

// Plan allocates sleep blocks for one day.
func Plan(c Constraints, p Prayers) Result {
	if p.Isha == nil || p.QiyamStart == nil {
		return Result{}
	}
	c = c.Normalize()

	res := Result{
		Ready:          true,
		Blocks:         []Block{},
		DesiredMinutes: c.DesiredSleepMinutes,
	}

	// Night: uncapped.
	nightStart := clock.Max(p.Isha.Add(c.IshaBufferMin), c.MinNightStart)
	night := clock.DurationBetween(nightStart, *p.QiyamStart)
	res.Blocks = append(res.Blocks, Block{
		Label:            LabelNight,
		Start:            nightStart,
		End:              *p.QiyamStart,
		AllocatedMinutes: night,
	})
	remaining := max(0, c.DesiredSleepMinutes-night)

	res.PostFajr, remaining = planPostFajr(c, p, remaining, &res.Blocks)

	for i, nap := range c.Naps {
		if remaining <= 0 {
			break
		}
		if nap.DurationMin <= 0 {
			continue
		}
		window := nap.DurationMin
		rawEnd := nap.Start.Add(nap.DurationMin)
		if p.Dhuhr != nil && clock.StrictlyBetween(*p.Dhuhr, nap.Start, rawEnd) {
			// Yield to Dhuhr; a buffer larger than the lead time empties the nap.
			window = min(window, clock.Compare(p.Dhuhr.Add(-c.PrayerBufferMin), nap.Start))
		}
		take := min(window, remaining)
		if take <= 0 {
			continue
		}
		res.Blocks = append(res.Blocks, Block{
			Label:            fmt.Sprintf("Nap %d", i+1),
			Start:            nap.Start,
			End:              nap.Start.Add(take),
			AllocatedMinutes: take,
		})
		remaining -= take
	}

	for _, b := range res.Blocks {
		res.TotalAllocatedMinutes += b.AllocatedMinutes
	}
	res.DeficitMinutes = c.DesiredSleepMinutes - res.TotalAllocatedMinutes
	return res
}

func planPostFajr(c Constraints, p Prayers, remaining int, blocks *[]Block) (PostFajrStatus, int) {
	switch {
	case !c.PostFajrEnabled:
		return PostFajrDisabled, remaining
	case p.Fajr == nil:
		return PostFajrNoFajr, remaining
	case clock.Compare(*p.Fajr, c.DisallowPostFajrIfFajrAfter) > 0:
		return PostFajrTooLate, remaining
	case remaining <= 0:
		return PostFajrNotNeeded, remaining
	}

	start := p.Fajr.Add(c.PostFajrBufferMin)
	if clock.Compare(c.LatestMorningEnd, start) <= 0 {
		return PostFajrNoWindow, remaining
	}

	take := min(clock.DurationBetween(start, c.LatestMorningEnd), remaining)
	if take <= 0 {
		return PostFajrNoWindow, remaining
	}
	*blocks = append(*blocks, Block{
		Label:            LabelPostFajr,
		Start:            start,
		End:              start.Add(take),
		AllocatedMinutes: take,
	})
	return PostFajrScheduled, remaining - take
}
