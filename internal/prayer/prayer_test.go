package prayer

import (
	"testing"
	"time"

	"github.com/smokyabdulrahman/qiyam/internal/api"
)

var feb28 = time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2026, 2, 28, hour, minute, 0, 0, time.UTC)
}

func riyadhTimings() api.Timings {
	return api.Timings{
		Fajr: "05:17", Sunrise: "06:48", Dhuhr: "12:13", Asr: "15:02",
		Sunset: "17:39", Maghrib: "17:39", Isha: "19:10",
		Imsak: "05:07", Midnight: "00:14", Firstthird: "22:02", Lastthird: "02:25",
	}
}

func TestInstant(t *testing.T) {
	tests := []struct {
		raw  string
		want string // "" means error
	}{
		{"15:02", "15:02"},
		{"00:00", "00:00"},
		{"15:02 (BST)", "15:02"},
		{"  05:17  (EET) ", "05:17"},
		{"bad", ""},
		{"", ""},
		{"15", ""},
		{"15:", ""},
		{"ab:cd", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := instant(tt.raw, feb28, time.UTC)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if s := got.Format("2006-01-02 15:04"); s != "2026-02-28 "+tt.want {
				t.Errorf("got %s", s)
			}
		})
	}
}

func TestInstant_KeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	got, err := instant("12:30", time.Date(2026, 6, 15, 0, 0, 0, 0, loc), loc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Location() != loc || got.UTC().Hour() != 16 {
		t.Errorf("got %v", got)
	}
}

func TestParseTimings(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		want     []string // "Name HH:MM"
		wantErr  bool
	}{
		{
			name:     "defaults",
			selected: DefaultPrayerNames,
			want:     []string{"Fajr 05:17", "Sunrise 06:48", "Dhuhr 12:13", "Asr 15:02", "Maghrib 17:39", "Isha 19:10"},
		},
		{
			name:     "subset keeps caller order",
			selected: []string{"Isha", "Fajr"},
			want:     []string{"Isha 19:10", "Fajr 05:17"},
		},
		{
			name:     "night markers",
			selected: []string{"Midnight", "Lastthird"},
			want:     []string{"Midnight 00:14", "Lastthird 02:25"},
		},
		{name: "unknown name", selected: []string{"Fajr", "Tahajjud"}, wantErr: true},
		{name: "lowercase is unknown", selected: []string{"fajr"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimings(riyadhTimings(), feb28, time.UTC, tt.selected)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d prayers, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if s := p.Name + " " + p.Time.Format("15:04"); s != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, s, tt.want[i])
				}
			}
		})
	}
}

func TestParseTimings_BadTime(t *testing.T) {
	timings := riyadhTimings()
	timings.Asr = "--:--"
	if _, err := ParseTimings(timings, feb28, time.UTC, []string{"Asr"}); err == nil {
		t.Fatal("expected error for unreadable time")
	}
}

func TestNextAndCurrentPrayer(t *testing.T) {
	prayers, err := ParseTimings(riyadhTimings(), feb28, time.UTC, DefaultPrayerNames)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		now           time.Time
		next, current string // "" means nil
	}{
		{"before fajr", at(3, 0), "Fajr", ""},
		{"exactly fajr", at(5, 17), "Sunrise", "Fajr"},
		{"midday", at(13, 0), "Asr", "Dhuhr"},
		{"one second before asr", at(15, 1).Add(59 * time.Second), "Asr", "Dhuhr"},
		{"after isha", at(22, 0), "", "Isha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := name(NextPrayer(prayers, tt.now)); got != tt.next {
				t.Errorf("NextPrayer = %q, want %q", got, tt.next)
			}
			if got := name(CurrentPrayer(prayers, tt.now)); got != tt.current {
				t.Errorf("CurrentPrayer = %q, want %q", got, tt.current)
			}
		})
	}

	if NextPrayer(nil, at(12, 0)) != nil || CurrentPrayer(nil, at(12, 0)) != nil {
		t.Error("empty list should give nil")
	}
}

func name(p *Prayer) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func TestRemaining(t *testing.T) {
	p := Prayer{Name: "Asr", Time: at(15, 2)}

	if got := TimeRemaining(p, at(13, 0)); got != 2*time.Hour+2*time.Minute {
		t.Errorf("TimeRemaining = %v", got)
	}
	if got := TimeRemaining(p, at(16, 0)); got >= 0 {
		t.Errorf("TimeRemaining after the prayer = %v, want negative", got)
	}

	tests := []struct {
		d    time.Duration
		want string
	}{
		{2*time.Hour + 5*time.Minute, "2h 5m"},
		{time.Hour, "1h 0m"},
		{40*time.Minute + 30*time.Second, "40m"},
		{30 * time.Second, "0m"},
		{-5 * time.Minute, "0m"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.d); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestShortNames_CoverEveryName(t *testing.T) {
	if len(ShortNames) != len(AllPrayerNames) {
		t.Fatalf("%d short names for %d prayers", len(ShortNames), len(AllPrayerNames))
	}
	seen := map[string]string{}
	for _, n := range AllPrayerNames {
		s, ok := ShortNames[n]
		if !ok {
			t.Errorf("no short name for %q", n)
		}
		if prev, dup := seen[s]; dup {
			t.Errorf("%q and %q share %q", prev, n, s)
		}
		seen[s] = n
	}
}
