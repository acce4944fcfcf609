package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/qiyam/internal/config"
	"github.com/smokyabdulrahman/qiyam/internal/display"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagCountry    string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagMethod     int
	FlagSchool     int
	FlagJSON       bool
	FlagCacheDir   string
	FlagTimeFormat string
	FlagVerbose    bool
)

var (
	// loadedConfig holds the config loaded during PersistentPreRunE.
	// Available to all subcommand handlers.
	loadedConfig *config.Config

	// logger is built from --verbose before any subcommand runs.
	logger = slog.New(slog.DiscardHandler)
)

// NewRootCmd creates the root command for the qiyam CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qiyam",
		Short: "Prayer times, the Qiyam window and a sleep planner",
		Long: "Prayer times from the Al Adhan API, the last third of the night for Qiyam,\n" +
			"and a daily sleep plan that fits around both.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = newLogger(FlagVerbose)
			if FlagJSON {
				display.SetEnabled(false)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "Override city (takes precedence over config)")
	pf.StringVar(&FlagCountry, "country", "", "Override country")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.IntVar(&FlagMethod, "method", -1, "Override calculation method (0-23)")
	pf.IntVar(&FlagSchool, "school", -1, "Override school (0=Shafi, 1=Hanafi)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/qiyam/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", false, "Log requests, cache hits and retries to stderr")

	// Register subcommands.
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newQiyamCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newAlarmCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newCacheCmd())

	return rootCmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// overrides applies each persistent flag to the config when the user set it.
var overrides = []struct {
	flag  string
	apply func(c *config.Config)
}{
	{"city", func(c *config.Config) { c.City = FlagCity }},
	{"country", func(c *config.Config) { c.Country = FlagCountry }},
	{"latitude", func(c *config.Config) { c.Latitude = FlagLatitude }},
	{"longitude", func(c *config.Config) { c.Longitude = FlagLongitude }},
	{"method", func(c *config.Config) { c.Method = &FlagMethod }},
	{"school", func(c *config.Config) { c.School = &FlagSchool }},
	{"cache-dir", func(c *config.Config) { c.CacheDir = FlagCacheDir }},
	{"time-format", func(c *config.Config) { c.TimeFormat = FlagTimeFormat }},
}

// effectiveConfig layers flags the user set over the loaded file, then fills
// method, school and time format from the defaults. The loaded config is
// not modified.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	for _, o := range overrides {
		if flagWasSet(cmd, o.flag) {
			o.apply(&cfg)
		}
	}

	defaults := config.Defaults()
	if cfg.Method == nil {
		cfg.Method = defaults.Method
	}
	if cfg.School == nil {
		cfg.School = defaults.School
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	return &cfg
}

// flagWasSet reports whether name was given on the command line, whether it
// was declared on cmd or inherited from the root.
func flagWasSet(cmd *cobra.Command, name string) bool {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.Root().PersistentFlags()} {
		if f := fs.Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}
