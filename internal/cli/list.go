package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/qiyam/internal/display"
	"github.com/smokyabdulrahman/qiyam/internal/prayer"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid number of days: %q (must be a positive integer)", args[0])
				}
				days = n
			}
			return runList(cmd, days)
		},
	}
}

func newWeekCmd() *cobra.Command  { return listAlias("week", 7) }
func newMonthCmd() *cobra.Command { return listAlias("month", 30) }

func listAlias(use string, days int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Show prayer times for the next %d days", days),
		Long:  fmt.Sprintf("Alias for 'list %d'.", days),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, days)
		},
	}
}

// listRow is one day of the grid, times already rendered in the layout.
type listRow struct {
	date  time.Time
	hijri string
	times []string
}

func listRows(days []dayData, names []string, tzLoc *time.Location, layout string) ([]listRow, error) {
	rows := make([]listRow, 0, len(days))
	for _, dd := range days {
		date := dd.Date.In(tzLoc)
		parsed, err := prayer.ParseTimings(dd.Timings, date, tzLoc, names)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", date.Format("2006-01-02"), err)
		}
		row := listRow{date: date, hijri: dd.DateInfo.Hijri.Format()}
		for _, p := range parsed {
			row.times = append(row.times, p.Time.Format(layout))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func runList(cmd *cobra.Command, days int) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	names := selectedPrayers("", s.cfg)

	data, err := s.calendarDays(cmd.Context(), time.Now(), days)
	if err != nil {
		return err
	}
	tzLoc, tz, err := s.timezone(data[0].Meta)
	if err != nil {
		return err
	}
	rows, err := listRows(data, names, tzLoc, s.layout)
	if err != nil {
		return err
	}

	if FlagJSON {
		return printJSON(listJSON(rows, names, newJSONLocation(s.loc, data[0].Meta, tz)))
	}

	fmt.Printf("\n  %s\n\n", display.Bold(fmt.Sprintf("Prayer Times — %d Days", days)))
	fmt.Printf("  %s\n\n", buildLocationStr(s.loc, data[0].Meta))

	today := time.Now().In(tzLoc).Format(time.DateOnly)
	tbl := display.NewTable(append([]string{"Date"}, names...))
	for i, r := range rows {
		tbl.AddRow(append([]string{r.date.Format("Mon 02 Jan")}, r.times...))
		if r.date.Format(time.DateOnly) == today {
			tbl.SetHighlightRow(i)
		}
	}
	fmt.Print(tbl.Render())
	fmt.Println()
	return nil
}

type listJSONOutput struct {
	Location jsonLocation  `json:"location"`
	Days     []listJSONDay `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri"`
	Timings map[string]string `json:"timings"`
}

func listJSON(rows []listRow, names []string, loc jsonLocation) listJSONOutput {
	out := listJSONOutput{Location: loc, Days: make([]listJSONDay, 0, len(rows))}
	for _, r := range rows {
		day := listJSONDay{
			Date:    r.date.Format("02 Jan 2006"),
			Hijri:   r.hijri,
			Timings: make(map[string]string, len(names)),
		}
		for i, name := range names {
			day.Timings[strings.ToLower(name)] = r.times[i]
		}
		out.Days = append(out.Days, day)
	}
	return out
}
