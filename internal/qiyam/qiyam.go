// Package qiyam derives the night-prayer window from prayer boundaries.
package qiyam

import "github.com/smokyabdulrahman/qiyam/internal/clock"

// Window is a night interval and the wake time suggested ahead of it.
// End is always understood to come after Start; when End is numerically
// earlier (or equal), it belongs to the following day.
type Window struct {
	Start         clock.Time `json:"start"`
	End           clock.Time `json:"end"`
	SuggestedWake clock.Time `json:"suggested_wake"`
}

// Compute builds the window from nightStart to nightEnd and places the
// suggested wake wakeBufferMin minutes before nightStart.
func Compute(nightStart, nightEnd clock.Time, wakeBufferMin int) Window {
	return Window{
		Start:         nightStart,
		End:           nightEnd,
		SuggestedWake: nightStart.Add(-wakeBufferMin),
	}
}

// LastThird computes the last third of the night between maghrib and fajr
// and returns it as a Window. Integer division floors the third boundary.
func LastThird(maghrib, fajr clock.Time, wakeBufferMin int) Window {
	night := elapsed(maghrib, fajr)
	start := maghrib.Add(night * 2 / 3)
	return Compute(start, fajr, wakeBufferMin)
}

// Duration is the elapsed minutes from Start to End. It is positive for
// every window; Start == End spans a whole day.
func (w Window) Duration() int {
	return elapsed(w.Start, w.End)
}

// Contains reports whether t falls inside the window, both ends included.
func (w Window) Contains(t clock.Time) bool {
	return clock.WithinWindowInclusive(t, w.Start, w.End)
}

// Thirds returns the start of each third of the window.
func (w Window) Thirds() [3]clock.Time {
	d := w.Duration()
	return [3]clock.Time{
		w.Start,
		w.Start.Add(d / 3),
		w.Start.Add(d * 2 / 3),
	}
}

// elapsed is the forward distance from start to end with end advanced a
// day whenever end <= start.
func elapsed(start, end clock.Time) int {
	e := int(end)
	if clock.Compare(end, start) <= 0 {
		e += clock.MinutesPerDay
	}
	return e - int(start)
}
