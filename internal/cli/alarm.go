package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/qiyam/internal/alarm"
	"github.com/smokyabdulrahman/qiyam/internal/clock"
	"github.com/smokyabdulrahman/qiyam/internal/config"
	"github.com/smokyabdulrahman/qiyam/internal/display"
	"github.com/smokyabdulrahman/qiyam/internal/prayer"
)

var (
	flagAlarmLabel    string
	flagAlarmRepeat   string
	flagAlarmRingtone string
	flagAlarmVibrate  bool
	flagAlarmZone     string
)

func newAlarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarm",
		Short: "Manage alarms",
		Long:  "List and edit alarms. Without a subcommand, lists them.",
		Args:  cobra.NoArgs,
		RunE:  runAlarmList,
	}

	add := &cobra.Command{
		Use:   "add <HH:MM>",
		Short: "Add an alarm",
		Long: "Add an alarm at a 24-hour time.\n\n" +
			"--repeat takes once, daily, weekdays, weekends or days like mon,wed,fri.",
		Args: cobra.ExactArgs(1),
		RunE: runAlarmAdd,
	}
	add.Flags().StringVar(&flagAlarmLabel, "label", "", "Alarm label")
	add.Flags().StringVar(&flagAlarmRepeat, "repeat", "once", "Repeat rule")
	add.Flags().StringVar(&flagAlarmRingtone, "ringtone", "", "Ringtone name or path")
	add.Flags().BoolVar(&flagAlarmVibrate, "vibrate", true, "Vibrate when ringing")
	add.Flags().StringVar(&flagAlarmZone, "zone", "", "IANA time zone for the time (default: local)")

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an alarm",
		Long: "Change the given fields of an alarm. Editing re-arms a one-off alarm.\n\n" +
			"Example: qiyam alarm edit 3f2a --time 04:15 --vibrate=false",
		Args: cobra.ExactArgs(1),
		RunE: runAlarmEdit,
	}
	alarmEditFlags(edit.Flags())

	fromQiyam := &cobra.Command{
		Use:   "qiyam",
		Short: "Add a one-off alarm at tonight's suggested Qiyam wake time",
		Args:  cobra.NoArgs,
		RunE:  runAlarmQiyam,
	}
	fromQiyam.Flags().StringVar(&flagAlarmLabel, "label", "", "Alarm label (default \"Qiyam\")")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List alarms",
			Args:  cobra.NoArgs,
			RunE:  runAlarmList,
		},
		add,
		edit,
		fromQiyam,
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"remove"},
			Short:   "Remove an alarm (any unique id prefix works)",
			Args:    cobra.ExactArgs(1),
			RunE:    runAlarmRemove,
		},
		&cobra.Command{
			Use:   "enable <id>",
			Short: "Enable an alarm",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runAlarmSetEnabled(cmd, args[0], true) },
		},
		&cobra.Command{
			Use:   "disable <id>",
			Short: "Disable an alarm",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runAlarmSetEnabled(cmd, args[0], false) },
		},
		&cobra.Command{
			Use:   "next",
			Short: "Show the next alarm to ring",
			Args:  cobra.NoArgs,
			RunE:  runAlarmNext,
		},
	)

	return cmd
}

func openAlarmStore() (*alarm.Store, error) {
	path, err := config.AlarmsPath()
	if err != nil {
		return nil, err
	}
	return alarm.NewStore(path), nil
}

// syncAlarms retires one-off alarms that already rang, then hands the
// current set to the scheduler.
func syncAlarms(ctx context.Context, store *alarm.Store) error {
	now := time.Now()
	if err := retireFired(store, now); err != nil {
		return err
	}
	alarms, err := store.List()
	if err != nil {
		return err
	}
	return alarm.Sync(ctx, alarm.NewLogScheduler(logger), alarms, now)
}

func retireFired(store *alarm.Store, now time.Time) error {
	fired, err := store.DisableFired(now)
	for _, a := range fired {
		logger.Debug("one-off alarm rang, disabling", "id", a.ShortID(), "label", a.Label)
	}
	return err
}

// alarmEditFlags registers the fields "alarm edit" can change. Only flags
// given on the command line are applied.
func alarmEditFlags(fs *pflag.FlagSet) {
	fs.String("time", "", "New 24-hour HH:MM time")
	fs.String("label", "", "Alarm label")
	fs.String("repeat", "", "Repeat rule: once, daily, weekdays, weekends or mon,wed,fri")
	fs.String("ringtone", "", "Ringtone name or path")
	fs.Bool("vibrate", true, "Vibrate when ringing")
	fs.String("zone", "", "IANA time zone for the time (empty for local)")
}

// applyAlarmEdits copies the changed edit flags onto a and re-arms it from
// now. Other flags in fs, such as inherited ones, are ignored.
func applyAlarmEdits(fs *pflag.FlagSet, a *alarm.Alarm, now time.Time) error {
	changed := false
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Changed || err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "time":
			a.Time, err = parseAlarmTime(v)
		case "label":
			a.Label = v
		case "repeat":
			if a.Days, err = alarm.ParseDays(v); err != nil {
				err = fmt.Errorf("invalid --repeat: %w", err)
			}
		case "ringtone":
			a.Ringtone = v
		case "vibrate":
			a.Vibrate, err = fs.GetBool("vibrate")
		case "zone":
			a.Zone = v
		default:
			return
		}
		changed = true
	})
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("nothing to change: pass --time, --label, --repeat, --ringtone, --vibrate or --zone")
	}
	a.ArmedAt = now
	return nil
}

type alarmJSON struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Time     string `json:"time"`
	Zone     string `json:"zone,omitempty"`
	Repeat   string `json:"repeat"`
	Enabled  bool   `json:"enabled"`
	Ringtone string `json:"ringtone"`
	Vibrate  bool   `json:"vibrate"`
	Next     string `json:"next,omitempty"`
}

func toAlarmJSON(a alarm.Alarm, now time.Time) alarmJSON {
	out := alarmJSON{
		ID:       a.ID.String(),
		Label:    a.Label,
		Time:     a.Time.String(),
		Zone:     a.Zone,
		Repeat:   a.DaysString(),
		Enabled:  a.Enabled,
		Ringtone: a.Ringtone,
		Vibrate:  a.Vibrate,
	}
	if at, ok := a.NextTrigger(now); a.Enabled && ok {
		out.Next = at.Format(time.RFC3339)
	}
	return out
}

func runAlarmList(cmd *cobra.Command, args []string) error {
	store, err := openAlarmStore()
	if err != nil {
		return err
	}
	now := time.Now()
	if err := retireFired(store, now); err != nil {
		return err
	}
	alarms, err := store.List()
	if err != nil {
		return err
	}

	if FlagJSON {
		out := make([]alarmJSON, 0, len(alarms))
		for _, a := range alarms {
			out = append(out, toAlarmJSON(a, now))
		}
		return printJSON(out)
	}

	if len(alarms) == 0 {
		fmt.Println("No alarms. Add one with 'qiyam alarm add 04:30' or 'qiyam alarm qiyam'.")
		return nil
	}

	layout := layoutFor(effectiveConfig(cmd).TimeFormat)
	next, _, hasNext, err := store.Next(now)
	if err != nil {
		return err
	}

	fmt.Println()
	tbl := display.NewTable([]string{"ID", "Time", "Repeat", "Label", "Status"})
	for i, a := range alarms {
		status := "on"
		if !a.Enabled {
			status = "off"
			tbl.DimRow(i)
		}
		tbl.AddRow([]string{a.ShortID(), a.Time.Layout(layout), a.DaysString(), a.Label, status})
		if hasNext && a.ID == next.ID {
			tbl.SetHighlightRow(i)
		}
	}
	fmt.Print(tbl.Render())
	fmt.Println()
	return nil
}

func runAlarmAdd(cmd *cobra.Command, args []string) error {
	at, err := parseAlarmTime(args[0])
	if err != nil {
		return err
	}
	days, err := alarm.ParseDays(flagAlarmRepeat)
	if err != nil {
		return fmt.Errorf("invalid --repeat: %w", err)
	}

	a := alarm.New(flagAlarmLabel, at, days...)
	a.Ringtone = flagAlarmRingtone
	a.Vibrate = flagAlarmVibrate
	a.Zone = flagAlarmZone
	return addAlarm(cmd, a)
}

func runAlarmEdit(cmd *cobra.Command, args []string) error {
	store, err := openAlarmStore()
	if err != nil {
		return err
	}
	a, err := store.Get(args[0])
	if err != nil {
		return err
	}
	now := time.Now()
	if err := applyAlarmEdits(cmd.Flags(), &a, now); err != nil {
		return err
	}
	if err := store.Update(a); err != nil {
		return err
	}
	if err := syncAlarms(cmd.Context(), store); err != nil {
		logger.Warn("alarm sync failed", "error", err)
	}

	layout := layoutFor(effectiveConfig(cmd).TimeFormat)
	fmt.Printf("Updated alarm %s: %s (%s)\n", a.ShortID(), a.Time.Layout(layout), a.DaysString())
	return nil
}

func runAlarmQiyam(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	set, err := loadNights(cmd.Context(), s, time.Now(), 1)
	if err != nil {
		return err
	}
	w, ok := set.Nights[0].window(s.cfg.WakeBufferOrDefault())
	if !ok {
		return fmt.Errorf("cannot place a Qiyam alarm: Maghrib or Fajr is missing for tonight")
	}

	// The wake time is a wall-clock time where the prayers are, which need
	// not be where this machine is.
	a := alarm.FromQiyam(w, flagAlarmLabel)
	a.Zone = set.TZ
	return addAlarm(cmd, a)
}

func addAlarm(cmd *cobra.Command, a alarm.Alarm) error {
	store, err := openAlarmStore()
	if err != nil {
		return err
	}
	saved, err := store.Add(a)
	if err != nil {
		return err
	}
	if err := syncAlarms(cmd.Context(), store); err != nil {
		logger.Warn("alarm sync failed", "error", err)
	}

	now := time.Now()
	layout := layoutFor(effectiveConfig(cmd).TimeFormat)
	at, _ := saved.NextTrigger(now)
	fmt.Printf("Added alarm %s at %s%s (%s), rings in %s\n",
		saved.ShortID(), saved.Time.Layout(layout), zoneSuffix(saved), saved.DaysString(),
		prayer.FormatRemaining(at.Sub(now)))
	return nil
}

func runAlarmRemove(cmd *cobra.Command, args []string) error {
	store, err := openAlarmStore()
	if err != nil {
		return err
	}
	removed, err := store.Remove(args[0])
	if err != nil {
		return err
	}
	if err := alarm.NewLogScheduler(logger).Cancel(cmd.Context(), removed.ID); err != nil {
		logger.Warn("alarm cancel failed", "error", err)
	}
	fmt.Printf("Removed alarm %s (%s)\n", removed.ShortID(), removed.Time)
	return nil
}

func runAlarmSetEnabled(cmd *cobra.Command, ref string, enabled bool) error {
	store, err := openAlarmStore()
	if err != nil {
		return err
	}
	a, err := store.SetEnabled(ref, enabled)
	if err != nil {
		return err
	}
	if err := syncAlarms(cmd.Context(), store); err != nil {
		logger.Warn("alarm sync failed", "error", err)
	}

	state := "Disabled"
	if enabled {
		state = "Enabled"
	}
	fmt.Printf("%s alarm %s (%s)\n", state, a.ShortID(), a.Time)
	return nil
}

func runAlarmNext(cmd *cobra.Command, args []string) error {
	store, err := openAlarmStore()
	if err != nil {
		return err
	}
	now := time.Now()
	if err := retireFired(store, now); err != nil {
		return err
	}
	a, at, ok, err := store.Next(now)
	if err != nil {
		return err
	}

	if FlagJSON {
		if !ok {
			return printJSON(nil)
		}
		return printJSON(toAlarmJSON(a, now))
	}

	if !ok {
		fmt.Println("No enabled alarms.")
		return nil
	}

	layout := layoutFor(effectiveConfig(cmd).TimeFormat)
	label := a.Label
	if label == "" {
		label = "Alarm"
	}
	fmt.Printf("%s %s %s%s (in %s)\n", label, at.Format("Mon 02 Jan"), clock.FromTime(at).Layout(layout),
		zoneSuffix(a), prayer.FormatRemaining(at.Sub(now)))
	return nil
}

func zoneSuffix(a alarm.Alarm) string {
	if a.Zone == "" {
		return ""
	}
	return " " + a.Zone
}
