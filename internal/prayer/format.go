package prayer

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/smokyabdulrahman/qiyam/internal/clock"
)

// Format constants for display modes.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // Full prayer name, e.g. "Asr"
	ShortName string // Abbreviated name, e.g. "A"
	Time      string // Formatted prayer time, e.g. "15:02" or "3:02 PM"
	Remaining string // Time remaining, e.g. "2h 15m"
	Hours     int    // Whole hours remaining
	Minutes   int    // Remaining minutes after hours
	Active    bool   // The event has started but not ended (Qiyam window only)
}

// Formatter renders one upcoming event for status bars such as tmux.
// Any mode containing "{{" is a Go template over FormatData; unknown
// plain modes fall back to name-and-time.
type Formatter struct {
	mode   string
	layout string
	tmpl   *template.Template
}

// NewFormatter prepares a formatter. layout is "15:04" for 24h or
// "3:04 PM" for 12h. A custom template is parsed here so a typo fails
// before any network work is done.
func NewFormatter(mode, layout string) (*Formatter, error) {
	f := &Formatter{mode: mode, layout: layout}
	if strings.Contains(mode, "{{") {
		t, err := template.New("format").Option("missingkey=error").Parse(mode)
		if err != nil {
			return nil, fmt.Errorf("invalid format template: %w", err)
		}
		f.tmpl = t
	}
	return f, nil
}

// Data builds the template data for p as seen at now.
func (f *Formatter) Data(p Prayer, now time.Time) FormatData {
	d := TimeRemaining(p, now)
	mins := max(0, int(d.Minutes()))
	return FormatData{
		Name:      p.Name,
		ShortName: shortName(p.Name),
		Time:      clock.FromTime(p.Time).Layout(f.layout),
		Remaining: FormatRemaining(d),
		Hours:     mins / 60,
		Minutes:   mins % 60,
	}
}

// Format renders p relative to now.
func (f *Formatter) Format(p Prayer, now time.Time) (string, error) {
	return f.Render(f.Data(p, now))
}

// Render renders already prepared data.
func (f *Formatter) Render(data FormatData) (string, error) {
	if f.tmpl != nil {
		var b strings.Builder
		if err := f.tmpl.Execute(&b, data); err != nil {
			return "", fmt.Errorf("executing format template: %w", err)
		}
		return b.String(), nil
	}

	switch f.mode {
	case FormatTimeRemaining:
		return data.Remaining, nil
	case FormatNextPrayerTime:
		return data.Time, nil
	case FormatNameAndRemaining:
		return data.Name + " " + data.Remaining, nil
	case FormatShortNameAndTime:
		return data.ShortName + " " + data.Time, nil
	case FormatShortNameAndRemain:
		return data.ShortName + " " + data.Remaining, nil
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", data.Name, data.Time, data.Remaining), nil
	default:
		return data.Name + " " + data.Time, nil
	}
}

// FormatOutput is a one-shot Format. Template errors are rendered inline
// so a status bar shows them instead of going blank.
func FormatOutput(p Prayer, now time.Time, mode string, layout string) string {
	f, err := NewFormatter(mode, layout)
	if err != nil {
		return "template-err: " + err.Error()
	}
	out, err := f.Format(p, now)
	if err != nil {
		return "template-err: " + err.Error()
	}
	return out
}

func shortName(name string) string {
	if s, ok := ShortNames[name]; ok {
		return s
	}
	if name == "" {
		return ""
	}
	return name[:1]
}
