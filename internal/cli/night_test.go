package cli

import (
	"testing"
	"time"

	"github.com/smokyabdulrahman/qiyam/internal/api"
	"github.com/smokyabdulrahman/qiyam/internal/clock"
	"github.com/smokyabdulrahman/qiyam/internal/planner"
)

func testDays() []dayData {
	day := func(month time.Month, d int, fajr, dhuhr, maghrib, isha string) dayData {
		return dayData{
			Date: time.Date(2026, month, d, 12, 0, 0, 0, time.UTC),
			Timings: api.Timings{
				Fajr: fajr, Sunrise: "06:30", Dhuhr: dhuhr, Asr: "15:30",
				Sunset: maghrib, Maghrib: maghrib, Isha: isha,
			},
			Meta: api.Meta{Timezone: "UTC"},
		}
	}
	return []dayData{
		day(time.February, 27, "05:12", "12:31", "17:58", "19:28"),
		day(time.February, 28, "05:10", "12:30", "18:00", "19:30"),
		day(time.March, 1, "05:00", "12:30", "18:01", "19:31"),
	}
}

func testNights(t *testing.T) []night {
	t.Helper()
	nights := nightsFrom(testDays(), time.UTC)
	if len(nights) != 2 {
		t.Fatalf("nightsFrom gave %d nights, want 2", len(nights))
	}
	return nights
}

func TestNightsFrom(t *testing.T) {
	nights := testNights(t)

	n := nights[1]
	if got := n.Date.Format("2006-01-02"); got != "2026-02-28" {
		t.Errorf("Date = %s, want 2026-02-28", got)
	}
	if n.Evening.Date != "2026-02-28" || n.Morning.Date != "2026-03-01" {
		t.Errorf("evening/morning = %s/%s", n.Evening.Date, n.Morning.Date)
	}
	if *n.Evening.Maghrib != clock.MustParse("18:00") || *n.Morning.Fajr != clock.MustParse("05:00") {
		t.Errorf("unexpected maghrib/fajr %s/%s", n.Evening.Maghrib, n.Morning.Fajr)
	}

	if got := nightsFrom(testDays()[:1], time.UTC); len(got) != 0 {
		t.Errorf("one day should give no nights, got %d", len(got))
	}
}

func TestTonightIndex(t *testing.T) {
	nights := testNights(t)

	tests := []struct {
		now  string
		want int
	}{
		{"00:30", 0}, // still last night
		{"05:09", 0}, // before the morning's Fajr (05:10)
		{"05:10", 1},
		{"05:11", 1},
		{"14:00", 1},
		{"23:00", 1},
	}
	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			if got := tonightIndex(nights, clock.MustParse(tt.now)); got != tt.want {
				t.Errorf("tonightIndex(%s) = %d, want %d", tt.now, got, tt.want)
			}
		})
	}

	if got := tonightIndex(nights[:1], clock.MustParse("01:00")); got != 0 {
		t.Errorf("single night index = %d, want 0", got)
	}
}

func TestNight_Window(t *testing.T) {
	n := testNights(t)[1]

	w, ok := n.window(15)
	if !ok {
		t.Fatal("window not ok")
	}
	// 18:00 to 05:00 is 660 minutes; the last third starts 440 in.
	if w.Start != clock.MustParse("01:20") || w.End != clock.MustParse("05:00") || w.SuggestedWake != clock.MustParse("01:05") {
		t.Errorf("window = %+v", w)
	}

	n.Evening.Maghrib = nil
	if _, ok := n.window(15); ok {
		t.Error("window without Maghrib should not be ok")
	}
}

func TestNight_Plan(t *testing.T) {
	n := testNights(t)[1]
	c := planner.Constraints{
		DesiredSleepMinutes:         420,
		IshaBufferMin:               30,
		MinNightStart:               clock.MustParse("21:30"),
		PostFajrEnabled:             true,
		PostFajrBufferMin:           30,
		DisallowPostFajrIfFajrAfter: clock.MustParse("06:30"),
		LatestMorningEnd:            clock.MustParse("08:00"),
		PrayerBufferMin:             10,
	}

	w, ok, r := n.plan(c, 15)
	if !ok || !r.Ready {
		t.Fatalf("ok=%v ready=%v", ok, r.Ready)
	}
	if w.Start != clock.MustParse("01:20") {
		t.Errorf("qiyam start = %s", w.Start)
	}
	if len(r.Blocks) != 2 {
		t.Fatalf("blocks = %+v", r.Blocks)
	}

	night := r.Blocks[0]
	if night.Start != clock.MustParse("21:30") || night.End != w.Start || night.AllocatedMinutes != 230 {
		t.Errorf("night block = %+v", night)
	}

	// The morning's Fajr (05:00), not the evening's (05:10), anchors post-Fajr.
	post := r.Blocks[1]
	if post.Start != clock.MustParse("05:30") || post.AllocatedMinutes != 150 {
		t.Errorf("post-Fajr block = %+v", post)
	}
	if r.DeficitMinutes != 40 {
		t.Errorf("deficit = %d, want 40", r.DeficitMinutes)
	}
}

func TestNight_PlanNotReady(t *testing.T) {
	n := testNights(t)[1]
	n.Morning.Fajr = nil
	n.Evening.Fajr = nil

	_, ok, r := n.plan(planner.Constraints{DesiredSleepMinutes: 420}, 15)
	if ok || r.Ready {
		t.Errorf("expected not ready, got ok=%v ready=%v", ok, r.Ready)
	}
}

func TestNight_At(t *testing.T) {
	n := testNights(t)[1]

	tests := []struct {
		clock string
		want  time.Time
	}{
		{"18:00", time.Date(2026, 2, 28, 18, 0, 0, 0, time.UTC)},
		{"23:59", time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC)},
		{"01:20", time.Date(2026, 3, 1, 1, 20, 0, 0, time.UTC)},
		{"13:00", time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			if got := n.at(clock.MustParse(tt.clock)); !got.Equal(tt.want) {
				t.Errorf("at(%s) = %v, want %v", tt.clock, got, tt.want)
			}
		})
	}

	n.Evening.Maghrib = nil
	if got := n.at(clock.MustParse("01:20")); !got.Equal(time.Date(2026, 2, 28, 1, 20, 0, 0, time.UTC)) {
		t.Errorf("at without Maghrib = %v", got)
	}
}

func TestDescribeNight_Active(t *testing.T) {
	n := testNights(t)[1]

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"evening", time.Date(2026, 2, 28, 22, 0, 0, 0, time.UTC), false},
		{"window start", time.Date(2026, 3, 1, 1, 20, 0, 0, time.UTC), true},
		{"inside", time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC), true},
		{"fajr", time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC), true},
		{"after", time.Date(2026, 3, 1, 5, 1, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nj := describeNight(n, 15, tt.now)
			if nj.Active != tt.want {
				t.Errorf("Active = %v, want %v", nj.Active, tt.want)
			}
			if nj.DurationMinutes != 220 || len(nj.Thirds) != 3 {
				t.Errorf("duration=%d thirds=%v", nj.DurationMinutes, nj.Thirds)
			}
		})
	}
}
