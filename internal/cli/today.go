package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/qiyam/internal/display"
	"github.com/smokyabdulrahman/qiyam/internal/prayer"
)

// todayView is everything the default command shows for one day.
type todayView struct {
	prayers []prayer.Prayer
	current *prayer.Prayer
	next    *prayer.Prayer
	now     time.Time
	result  *fetchResult
	loc     resolvedLocation
	tz      string
	layout  string
}

func runToday(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	result, err := s.timings(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	tzLoc, tz, err := s.timezone(result.Meta)
	if err != nil {
		return err
	}

	now := time.Now().In(tzLoc)
	prayers, err := prayer.ParseTimings(result.Timings, now, tzLoc, selectedPrayers("", s.cfg))
	if err != nil {
		return err
	}

	v := todayView{
		prayers: prayers,
		current: prayer.CurrentPrayer(prayers, now),
		next:    prayer.NextPrayer(prayers, now),
		now:     now,
		result:  result,
		loc:     s.loc,
		tz:      tz,
		layout:  s.layout,
	}
	if FlagJSON {
		return printJSON(v.json())
	}
	fmt.Print(v.render())
	return nil
}

func (v todayView) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", display.Bold("Prayer Times"))
	fmt.Fprintf(&b, "  %s\n", buildLocationStr(v.loc, v.result.Meta))
	fmt.Fprintf(&b, "  %s\n", display.Gray(v.tz))
	fmt.Fprintf(&b, "  %s\n", v.gregorian())
	if hijri := v.result.DateInfo.Hijri.Format(); hijri != "" {
		fmt.Fprintf(&b, "  %s\n", hijri)
	}
	b.WriteString("\n")

	tbl := display.NewTable([]string{"Prayer", "Time", ""})
	for i, p := range v.prayers {
		in := ""
		switch {
		case v.next != nil && p.Name == v.next.Name:
			in = "<- next in " + prayer.FormatRemaining(prayer.TimeRemaining(p, v.now))
			tbl.SetHighlightRow(i)
		case v.current != nil && p.Name == v.current.Name:
			tbl.DimRow(i)
		}
		tbl.AddRow([]string{p.Name, p.Time.Format(v.layout), in})
	}
	b.WriteString(tbl.Render())
	b.WriteString("\n")
	return b.String()
}

// gregorian prefers the API's date and falls back to the local calendar.
func (v todayView) gregorian() string {
	if s := v.result.DateInfo.Gregorian.Format(); s != "" {
		return s
	}
	return v.now.Format("02 Jan 2006")
}

type todayJSON struct {
	Location jsonLocation      `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current"`
	Next     *todayJSONNext    `json:"next"`
}

type todayJSONDate struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
}

func (v todayView) json() todayJSON {
	out := todayJSON{
		Location: newJSONLocation(v.loc, v.result.Meta, v.tz),
		Date: todayJSONDate{
			Gregorian: v.gregorian(),
			Hijri:     v.result.DateInfo.Hijri.Format(),
		},
		Timings: make(map[string]string, len(v.prayers)),
	}
	for _, p := range v.prayers {
		out.Timings[strings.ToLower(p.Name)] = p.Time.Format(v.layout)
	}
	if v.current != nil {
		out.Current = strings.ToLower(v.current.Name)
	}
	if v.next != nil {
		out.Next = &todayJSONNext{
			Prayer:    strings.ToLower(v.next.Name),
			Time:      v.next.Time.Format(v.layout),
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(*v.next, v.now)),
		}
	}
	return out
}

// printJSON writes v as indented JSON on stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
