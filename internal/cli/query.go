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

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long: "Query a specific prayer time for today, or across multiple days with --days.\n\nValid prayer names: " +
			strings.Join(prayer.AllPrayerNames, ", "),
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

// canonicalPrayerName matches name case-insensitively against the API's names.
func canonicalPrayerName(name string) (string, error) {
	for _, n := range prayer.AllPrayerNames {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown prayer %q; valid names: %s", name, strings.Join(prayer.AllPrayerNames, ", "))
}

// parseDaysFlag reads a positive day count, or "week" / "month".
func parseDaysFlag(v string, def int) (int, error) {
	switch v {
	case "":
		return def, nil
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid --days value %q: must be a positive integer, 'week', or 'month'", v)
	}
	return n, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, err := canonicalPrayerName(args[0])
	if err != nil {
		return err
	}
	days, err := parseDaysFlag(flagQueryDays, 1)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	if days == 1 {
		return runQuerySingleDay(cmd, s, name)
	}
	return runQueryMultiDay(cmd, s, name, days)
}

func runQuerySingleDay(cmd *cobra.Command, s *session, name string) error {
	now := time.Now()
	result, err := s.timings(cmd.Context(), now)
	if err != nil {
		return err
	}

	tzLoc, _, err := s.timezone(result.Meta)
	if err != nil {
		return err
	}
	now = now.In(tzLoc)

	parsed, err := prayer.ParseTimings(result.Timings, now, tzLoc, []string{name})
	if err != nil {
		return err
	}
	at := parsed[0].Time.Format(s.layout)

	if FlagJSON {
		return printJSON(queryJSONSingle{
			Prayer: strings.ToLower(name),
			Time:   at,
			Date:   now.Format("02 Jan 2006"),
			Hijri:  result.DateInfo.Hijri.Format(),
		})
	}
	fmt.Printf("%s %s\n", name, at)
	return nil
}

func runQueryMultiDay(cmd *cobra.Command, s *session, name string, days int) error {
	data, err := s.calendarDays(cmd.Context(), time.Now(), days)
	if err != nil {
		return err
	}
	tzLoc, tz, err := s.timezone(data[0].Meta)
	if err != nil {
		return err
	}
	rows, err := listRows(data, []string{name}, tzLoc, s.layout)
	if err != nil {
		return err
	}

	if FlagJSON {
		out := queryJSONMulti{
			Location: newJSONLocation(s.loc, data[0].Meta, tz),
			Prayer:   strings.ToLower(name),
			Days:     make([]queryJSONDay, len(rows)),
		}
		for i, r := range rows {
			out.Days[i] = queryJSONDay{Date: r.date.Format("02 Jan 2006"), Hijri: r.hijri, Time: r.times[0]}
		}
		return printJSON(out)
	}

	fmt.Printf("\n  %s\n\n", display.Bold(fmt.Sprintf("%s Times — %d Days", name, days)))
	fmt.Printf("  %s\n\n", buildLocationStr(s.loc, data[0].Meta))

	today := time.Now().In(tzLoc).Format(time.DateOnly)
	tbl := display.NewTable([]string{"Date", name, "Hijri"})
	for i, r := range rows {
		tbl.AddRow([]string{r.date.Format("Mon 02 Jan"), r.times[0], r.hijri})
		if r.date.Format(time.DateOnly) == today {
			tbl.SetHighlightRow(i)
		}
	}
	fmt.Print(tbl.Render())
	fmt.Println()
	return nil
}

type queryJSONSingle struct {
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
	Date   string `json:"date"`
	Hijri  string `json:"hijri"`
}

type queryJSONMulti struct {
	Location jsonLocation   `json:"location"`
	Prayer   string         `json:"prayer"`
	Days     []queryJSONDay `json:"days"`
}

type queryJSONDay struct {
	Date  string `json:"date"`
	Hijri string `json:"hijri"`
	Time  string `json:"time"`
}
