package prayer

import (
	"strings"
	"testing"
	"time"
)

func TestFormatOutput(t *testing.T) {
	asr := Prayer{Name: "Asr", Time: at(15, 2)}
	noon := at(12, 47)

	tests := []struct {
		name   string
		p      Prayer
		now    time.Time
		mode   string
		layout string
		want   string
	}{
		{"remaining", asr, noon, FormatTimeRemaining, "15:04", "2h 15m"},
		{"time", asr, noon, FormatNextPrayerTime, "15:04", "15:02"},
		{"name and time", asr, noon, FormatNameAndTime, "15:04", "Asr 15:02"},
		{"name and remaining", asr, noon, FormatNameAndRemaining, "15:04", "Asr 2h 15m"},
		{"short and time", asr, noon, FormatShortNameAndTime, "15:04", "A 15:02"},
		{"short and remaining", asr, noon, FormatShortNameAndRemain, "15:04", "A 2h 15m"},
		{"full", asr, noon, FormatFull, "15:04", "Asr 15:02 (2h 15m)"},
		{"full 12h", asr, noon, FormatFull, "3:04 PM", "Asr 3:02 PM (2h 15m)"},
		{"unknown mode", asr, noon, "fancy", "15:04", "Asr 15:02"},
		{"under an hour", Prayer{Name: "Dhuhr", Time: at(13, 30)}, at(13, 5), FormatTimeRemaining, "15:04", "25m"},
		{"already due", asr, at(15, 2), FormatTimeRemaining, "15:04", "0m"},
		{"template fields", asr, noon,
			"{{.Name}}|{{.ShortName}}|{{.Time}}|{{.Remaining}}|{{.Hours}}|{{.Minutes}}", "15:04",
			"Asr|A|15:02|2h 15m|2|15"},
		{"template prose", asr, noon, "{{.ShortName}} in {{.Remaining}}", "15:04", "A in 2h 15m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatOutput(tt.p, tt.now, tt.mode, tt.layout); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatOutput_TemplateErrors(t *testing.T) {
	asr := Prayer{Name: "Asr", Time: at(15, 2)}
	for _, mode := range []string{"{{.Invalid", "{{.NonExistent}}"} {
		if got := FormatOutput(asr, at(12, 0), mode, "15:04"); !strings.HasPrefix(got, "template-err:") {
			t.Errorf("%q rendered %q", mode, got)
		}
	}
}

func TestNewFormatter_RejectsBadTemplate(t *testing.T) {
	if _, err := NewFormatter("{{.Name", "15:04"); err == nil {
		t.Fatal("expected a parse error for an unterminated template")
	}
	if _, err := NewFormatter(FormatFull, "15:04"); err != nil {
		t.Fatalf("builtin mode should not error: %v", err)
	}
}

func TestFormatter_Reuse(t *testing.T) {
	f, err := NewFormatter("{{.ShortName}} {{.Remaining}}", "15:04")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		p    Prayer
		want string
	}{
		{Prayer{Name: "Asr", Time: now.Add(3 * time.Hour)}, "A 3h 0m"},
		{Prayer{Name: "Maghrib", Time: now.Add(5*time.Hour + 40*time.Minute)}, "M 5h 40m"},
		// Names outside the table abbreviate to their first letter.
		{Prayer{Name: "Qiyam", Time: now.Add(14 * time.Hour)}, "Q 14h 0m"},
	}
	for _, tt := range tests {
		t.Run(tt.p.Name, func(t *testing.T) {
			got, err := f.Format(tt.p, now)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatter_RenderActive(t *testing.T) {
	f, err := NewFormatter("{{if .Active}}now{{else}}{{.Time}}{{end}}", "3:04 PM")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 2, 28, 1, 0, 0, 0, time.UTC)
	data := f.Data(Prayer{Name: "Qiyam", Time: now.Add(90 * time.Minute)}, now)

	got, _ := f.Render(data)
	if got != "2:30 AM" {
		t.Errorf("inactive = %q, want %q", got, "2:30 AM")
	}

	data.Active = true
	got, _ = f.Render(data)
	if got != "now" {
		t.Errorf("active = %q, want %q", got, "now")
	}
}
