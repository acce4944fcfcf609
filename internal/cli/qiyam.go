package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/qiyam/internal/clock"
	"github.com/smokyabdulrahman/qiyam/internal/display"
	"github.com/smokyabdulrahman/qiyam/internal/prayer"
	"github.com/smokyabdulrahman/qiyam/internal/qiyam"
)

var (
	flagQiyamNights int
	flagQiyamFormat string
)

func newQiyamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qiyam",
		Short: "Show the last third of the night",
		Long: "Show tonight's Qiyam window: the last third of the night between Maghrib\n" +
			"and the next Fajr, and when to wake for it (see 'config set wake_buffer').",
		Args: cobra.NoArgs,
		RunE: runQiyam,
	}

	cmd.Flags().IntVar(&flagQiyamNights, "days", 1, "Number of nights to show")
	cmd.Flags().StringVar(&flagQiyamFormat, "format", "", "One-line output for status bars; same modes as 'next --format'")

	return cmd
}

// qiyamNightJSON is one night of the qiyam command's JSON output.
type qiyamNightJSON struct {
	Date            string        `json:"date"`
	Maghrib         *clock.Time   `json:"maghrib"`
	Fajr            *clock.Time   `json:"fajr"`
	Window          *qiyam.Window `json:"window"`
	DurationMinutes int           `json:"duration_minutes,omitempty"`
	Thirds          []clock.Time  `json:"thirds,omitempty"`
	Active          bool          `json:"active"`
}

type qiyamJSON struct {
	Location jsonLocation     `json:"location"`
	Nights   []qiyamNightJSON `json:"nights"`
}

func runQiyam(cmd *cobra.Command, args []string) error {
	if flagQiyamNights < 1 {
		return fmt.Errorf("invalid --days value %d: must be a positive integer", flagQiyamNights)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	var f *prayer.Formatter
	if flagQiyamFormat != "" {
		if f, err = prayer.NewFormatter(flagQiyamFormat, s.layout); err != nil {
			return err
		}
	}
	wake := s.cfg.WakeBufferOrDefault()

	now := time.Now()
	set, err := loadNights(cmd.Context(), s, now, flagQiyamNights)
	if err != nil {
		return err
	}
	nights := set.Nights
	now = now.In(set.Loc)

	if f != nil {
		return printQiyamStatus(f, nights[0], wake, now)
	}

	out := qiyamJSON{Location: newJSONLocation(s.loc, set.Meta, set.TZ)}
	for _, n := range nights {
		out.Nights = append(out.Nights, describeNight(n, wake, now))
	}

	if FlagJSON {
		return printJSON(out)
	}

	fmt.Println()
	if len(nights) == 1 {
		fmt.Printf("  %s\n", display.Bold("Qiyam — "+nights[0].Date.Format("Mon 02 Jan")))
	} else {
		fmt.Printf("  %s\n", display.Bold(fmt.Sprintf("Qiyam — %d Nights", len(nights))))
	}
	fmt.Println()
	fmt.Printf("  %s\n", buildLocationStr(s.loc, set.Meta))
	fmt.Println()

	if len(nights) == 1 {
		printQiyamNight(out.Nights[0], nights[0], s.layout, now)
		return nil
	}

	tbl := display.NewTable([]string{"Night", "Maghrib", "Last third", "Fajr", "Wake", "Length"})
	for i, nj := range out.Nights {
		row := []string{nights[i].Date.Format("Mon 02 Jan"), layoutOr(nj.Maghrib, s.layout), "--:--", layoutOr(nj.Fajr, s.layout), "--:--", ""}
		if nj.Window != nil {
			row[2] = nj.Window.Start.Layout(s.layout)
			row[4] = nj.Window.SuggestedWake.Layout(s.layout)
			row[5] = clock.FormatDuration(nj.DurationMinutes)
		}
		tbl.AddRow(row)
	}
	tbl.SetHighlightRow(0)
	fmt.Print(tbl.Render())
	fmt.Println()
	return nil
}

// describeNight collects the window facts for one night. Active means now
// falls between the window's start and end.
func describeNight(n night, wake int, now time.Time) qiyamNightJSON {
	nj := qiyamNightJSON{
		Date:    n.Date.Format("2006-01-02"),
		Maghrib: n.Evening.Maghrib,
		Fajr:    n.Morning.Fajr,
	}
	w, ok := n.window(wake)
	if !ok {
		return nj
	}
	thirds := w.Thirds()
	nj.Window = &w
	nj.DurationMinutes = w.Duration()
	nj.Thirds = thirds[:]

	start := n.at(w.Start)
	end := start.Add(time.Duration(nj.DurationMinutes) * time.Minute)
	nj.Active = !now.Before(start) && !now.After(end)
	return nj
}

func printQiyamNight(nj qiyamNightJSON, n night, layout string, now time.Time) {
	if nj.Window == nil {
		fmt.Println("  Prayer data not ready: Maghrib or Fajr is missing.")
		fmt.Println()
		return
	}
	w := *nj.Window

	startLine := fmt.Sprintf("  %-15s %s", "Last third", w.Start.Layout(layout))
	switch {
	case nj.Active:
		fmt.Println(display.Accent(startLine + "  <- now"))
	case n.at(w.Start).After(now):
		remaining := prayer.FormatRemaining(n.at(w.Start).Sub(now))
		fmt.Println(display.Accent(startLine + "  <- in " + remaining))
	default:
		fmt.Println(startLine)
	}
	fmt.Printf("  %-15s %s\n", "Ends at Fajr", w.End.Layout(layout))
	fmt.Printf("  %-15s %s\n", "Length", clock.FormatDuration(nj.DurationMinutes))
	fmt.Printf("  %-15s %s\n", "Suggested wake", display.Green(w.SuggestedWake.Layout(layout)))
	fmt.Println()

	parts := make([]string, len(nj.Thirds))
	for i, t := range nj.Thirds {
		parts[i] = t.Layout(layout)
	}
	fmt.Printf("  %s\n", display.Gray(fmt.Sprintf("Thirds of the window: %s, %s, %s", parts[0], parts[1], parts[2])))
	fmt.Println()
}

// printQiyamStatus prints tonight's window as a single status-bar line.
func printQiyamStatus(f *prayer.Formatter, n night, wake int, now time.Time) error {
	w, ok := n.window(wake)
	if !ok {
		fmt.Print("Qiyam --:--")
		return nil
	}
	data := f.Data(prayer.Prayer{Name: "Qiyam", Time: n.at(w.Start)}, now)
	data.Active = describeNight(n, wake, now).Active
	out, err := f.Render(data)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// layoutOr renders t, or a placeholder when it is unknown.
func layoutOr(t *clock.Time, layout string) string {
	if t == nil {
		return "--:--"
	}
	return t.Layout(layout)
}
