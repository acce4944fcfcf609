package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/qiyam/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long: "Print the next prayer on one line without a trailing newline, for status\n" +
			"bars such as tmux. --format takes a named mode or a Go template over\n" +
			"{{.Name}} {{.ShortName}} {{.Time}} {{.Remaining}} {{.Hours}} {{.Minutes}}.",
		Args: cobra.NoArgs,
		RunE: runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

// errTomorrowUnavailable means today is over and tomorrow could not be
// fetched. last is today's final prayer.
type errTomorrowUnavailable struct {
	last prayer.Prayer
	err  error
}

func (e *errTomorrowUnavailable) Error() string {
	return "failed to fetch tomorrow's times: " + e.err.Error()
}

func (e *errTomorrowUnavailable) Unwrap() error { return e.err }

// upcoming finds the first tracked prayer after now, rolling over to
// tomorrow's list once today's is exhausted.
func upcoming(ctx context.Context, s *session, names []string, now time.Time) (*prayer.Prayer, time.Time, error) {
	today, err := s.timings(ctx, now)
	if err != nil {
		return nil, now, err
	}
	tzLoc, _, err := s.timezone(today.Meta)
	if err != nil {
		return nil, now, err
	}
	now = now.In(tzLoc)

	prayers, err := prayer.ParseTimings(today.Timings, now, tzLoc, names)
	if err != nil {
		return nil, now, err
	}
	if next := prayer.NextPrayer(prayers, now); next != nil {
		return next, now, nil
	}
	if len(prayers) == 0 {
		return nil, now, errors.New("no prayers selected")
	}

	tomorrow := now.AddDate(0, 0, 1)
	res, err := s.timings(ctx, tomorrow)
	if err != nil {
		return nil, now, &errTomorrowUnavailable{last: prayers[len(prayers)-1], err: err}
	}
	later, err := prayer.ParseTimings(res.Timings, tomorrow, tzLoc, names)
	if err != nil {
		return nil, now, err
	}
	return &later[0], now, nil
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	f, err := prayer.NewFormatter(flagFormat, s.layout)
	if err != nil {
		return err
	}

	next, now, err := upcoming(cmd.Context(), s, selectedPrayers(flagPrayers, s.cfg), time.Now())
	var unavailable *errTomorrowUnavailable
	if errors.As(err, &unavailable) {
		// A status bar stays readable rather than showing an error.
		logger.Warn("could not fetch tomorrow's times", "error", unavailable.err)
		fmt.Printf("%s --:--", unavailable.last.Name)
		return nil
	}
	if err != nil {
		return err
	}

	out, err := f.Format(*next, now)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
