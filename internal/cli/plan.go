package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/qiyam/internal/clock"
	"github.com/smokyabdulrahman/qiyam/internal/display"
	"github.com/smokyabdulrahman/qiyam/internal/planner"
	"github.com/smokyabdulrahman/qiyam/internal/qiyam"
)

var flagPlanNights int

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan tonight's sleep around Isha, Qiyam and Fajr",
		Long: "Split the sleep target into a night block before the Qiyam window, an optional\n" +
			"block after Fajr and the configured naps. Tune it with 'config set', e.g.\n" +
			"  qiyam config set desired_sleep 420\n" +
			"  qiyam config set naps 13:30/30\n" +
			"  qiyam config set post_fajr_cutoff 06:00",
		Args: cobra.NoArgs,
		RunE: runPlan,
	}

	cmd.Flags().IntVar(&flagPlanNights, "days", 1, "Number of nights to plan")

	return cmd
}

// planNightJSON is one night of the plan command's JSON output.
type planNightJSON struct {
	Date  string         `json:"date"`
	Qiyam *qiyam.Window  `json:"qiyam"`
	Plan  planner.Result `json:"plan"`
}

type planJSON struct {
	Location jsonLocation    `json:"location"`
	Nights   []planNightJSON `json:"nights"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	if flagPlanNights < 1 {
		return fmt.Errorf("invalid --days value %d: must be a positive integer", flagPlanNights)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	constraints, err := s.cfg.SleepConstraints()
	if err != nil {
		return err
	}
	wake := s.cfg.WakeBufferOrDefault()

	now := time.Now()
	set, err := loadNights(cmd.Context(), s, now, flagPlanNights)
	if err != nil {
		return err
	}
	now = now.In(set.Loc)

	out := planJSON{Location: newJSONLocation(s.loc, set.Meta, set.TZ)}
	for _, n := range set.Nights {
		w, ok, result := n.plan(constraints, wake)
		nj := planNightJSON{Date: n.Date.Format("2006-01-02"), Plan: result}
		if ok {
			nj.Qiyam = &w
		}
		logger.Debug("planned night", "date", nj.Date, "ready", result.Ready, "total", result.TotalAllocatedMinutes, "post_fajr", result.PostFajr)
		out.Nights = append(out.Nights, nj)
	}

	if FlagJSON {
		return printJSON(out)
	}

	fmt.Println()
	fmt.Printf("  %s\n", display.Bold("Sleep Plan"))
	fmt.Println()
	fmt.Printf("  %s\n", buildLocationStr(s.loc, set.Meta))
	fmt.Printf("  %s\n", display.Gray("Target "+clock.FormatDuration(constraints.DesiredSleepMinutes)))
	fmt.Println()

	for i, nj := range out.Nights {
		printPlanNight(nj, set.Nights[i], s.layout, now)
	}
	return nil
}

func printPlanNight(nj planNightJSON, n night, layout string, now time.Time) {
	fmt.Printf("  %s\n", display.Bold(n.Date.Format("Mon 02 Jan")))

	r := nj.Plan
	if !r.Ready {
		fmt.Printf("  %s\n\n", display.Yellow(r.Summary()+": Isha, Maghrib or Fajr is missing."))
		return
	}

	tbl := display.NewTable([]string{"Block", "Start", "End", "Length"})
	for i, b := range r.Blocks {
		tbl.AddRow([]string{b.Label, b.Start.Layout(layout), b.End.Layout(layout), clock.FormatDuration(b.AllocatedMinutes)})

		start := n.at(b.Start)
		if !now.Before(start) && now.Before(start.Add(time.Duration(b.AllocatedMinutes)*time.Minute)) {
			tbl.SetHighlightRow(i)
		}
	}
	fmt.Print(tbl.Render())
	fmt.Println()

	total := fmt.Sprintf("  Planned %s", clock.FormatDuration(r.TotalAllocatedMinutes))
	switch {
	case r.DeficitMinutes > 0:
		fmt.Printf("%s  %s\n", total, display.Yellow(r.Summary()))
	default:
		fmt.Printf("%s  %s\n", total, display.Green(r.Summary()))
	}
	if nj.Qiyam != nil {
		fmt.Printf("  Qiyam %s - %s, wake at %s\n",
			nj.Qiyam.Start.Layout(layout), nj.Qiyam.End.Layout(layout), nj.Qiyam.SuggestedWake.Layout(layout))
	}
	if r.PostFajr != planner.PostFajrScheduled {
		fmt.Printf("  %s\n", display.Gray("No post-Fajr sleep: "+r.PostFajr.String()))
	}
	fmt.Println()
}
