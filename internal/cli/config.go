package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/qiyam/internal/cache"
	"github.com/smokyabdulrahman/qiyam/internal/config"
	"github.com/smokyabdulrahman/qiyam/internal/display"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Without a subcommand, prints every key with its stored or default value.",
		RunE:  runConfigShow,
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: "Set a configuration value. Valid keys:\n  " + strings.Join(config.ValidKeys, "\n  ") + `

Examples:
  qiyam config set city Riyadh
  qiyam config set method 4
  qiyam config set time_format 12h
  qiyam config set desired_sleep 450
  qiyam config set naps 13:30/30,17:00/20
  qiyam config set post_fajr false`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}

	cmd.AddCommand(
		&cobra.Command{Use: "show", Short: "Show the configuration", Args: cobra.NoArgs, RunE: runConfigShow},
		set,
		&cobra.Command{Use: "reset", Short: "Delete the config file", Args: cobra.NoArgs, RunE: runConfigReset},
		&cobra.Command{Use: "path", Short: "Print the config file path", Args: cobra.NoArgs, RunE: runConfigPath},
	)
	return cmd
}

// configRow is one line of `config show`.
type configRow struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Default string `json:"default,omitempty"`
}

// configRows lists every key with its stored value and default.
func configRows(cfg *config.Config) []configRow {
	defaults := config.Defaults()
	rows := make([]configRow, 0, len(config.ValidKeys))
	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		def, _ := defaults.Get(key)
		if key == "method" || key == "school" {
			def = "" // -1 means "let the API decide"
		}
		rows = append(rows, configRow{Key: key, Value: val, Default: def})
	}
	return rows
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rows := configRows(cfg)
	if FlagJSON {
		return printJSON(rows)
	}

	fmt.Printf("\n  %s\n  %s\n\n", display.Bold("Configuration"), display.Gray(path))
	tbl := display.NewTable([]string{"Key", "Value"})
	for i, r := range rows {
		tbl.AddRow([]string{r.Key, r.shown()})
		if r.Value == "" {
			tbl.DimRow(i)
		}
	}
	fmt.Print(tbl.Render())
	fmt.Println()
	return nil
}

// shown is the value column of `config show`: the stored value with a name
// where one helps, else the default.
func (r configRow) shown() string {
	switch {
	case r.Value == "" && r.Default != "":
		return r.Default + " (default)"
	case r.Value == "":
		return "(not set)"
	case r.Key == "method":
		return formatMethodValue(r.Value)
	case r.Key == "school":
		return formatSchoolValue(r.Value)
	default:
		return r.Value
	}
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	logger.Debug("config updated", "key", key, "value", value)
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Println("Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// formatMethodValue adds the method name to the numeric value.
func formatMethodValue(val string) string {
	for _, m := range CalculationMethods {
		if strconv.Itoa(m.ID) == val {
			return fmt.Sprintf("%s (%s)", val, m.Name)
		}
	}
	return val
}

// formatSchoolValue adds the school name to the numeric value.
func formatSchoolValue(val string) string {
	switch val {
	case "0":
		return "0 (Shafi)"
	case "1":
		return "1 (Hanafi)"
	default:
		return val
	}
}

// CalculationMethods lists all supported Al Adhan API calculation methods.
var CalculationMethods = []struct {
	ID   int
	Name string
}{
	{0, "Shia Ithna-Ashari (Jafari)"},
	{1, "University of Islamic Sciences, Karachi"},
	{2, "Islamic Society of North America (ISNA)"},
	{3, "Muslim World League (MWL)"},
	{4, "Umm Al-Qura University, Makkah"},
	{5, "Egyptian General Authority of Survey"},
	{7, "Institute of Geophysics, University of Tehran"},
	{8, "Gulf Region"},
	{9, "Kuwait"},
	{10, "Qatar"},
	{11, "Majlis Ugama Islam Singapura (Singapore)"},
	{12, "Union Organization Islamic de France"},
	{13, "Diyanet Isleri Baskanligi, Turkey (experimental)"},
	{14, "Spiritual Administration of Muslims of Russia"},
	{15, "Moonsighting Committee Worldwide"},
	{16, "Dubai (experimental)"},
	{17, "JAKIM (Malaysia)"},
	{18, "Tunisia"},
	{19, "Algeria"},
	{20, "KEMENAG (Indonesia)"},
	{21, "Morocco"},
	{22, "Comunidade Islamica de Lisboa (Portugal)"},
	{23, "Ministry of Awqaf, Jordan"},
}

type methodJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the table of all supported Al Adhan API calculation methods.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if FlagJSON {
				out := make([]methodJSON, len(CalculationMethods))
				for i, m := range CalculationMethods {
					out[i] = methodJSON{ID: m.ID, Name: m.Name}
				}
				return printJSON(out)
			}

			current := effectiveConfig(cmd).MethodOrDefault(-1)
			tbl := display.NewTable([]string{"ID", "Name"})
			for i, m := range CalculationMethods {
				tbl.AddRow([]string{strconv.Itoa(m.ID), m.Name})
				if m.ID == current {
					tbl.SetHighlightRow(i)
				}
			}
			fmt.Printf("\n%s\n", tbl.Render())
			fmt.Println("  Use --method <ID> or `qiyam config set method <ID>`.")
			fmt.Println("  Without one, the API picks a default for your location.")
			return nil
		},
	}
}

// openCache opens the cache directory the merged config points at.
func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	return cache.New(effectiveConfig(cmd).CacheDir, cache.WithLogger(logger))
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the prayer times cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(cmd)
			if err != nil {
				return err
			}
			fmt.Println(c.Dir())
			return nil
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Delete cached prayer times and geolocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(cmd)
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Printf("Cleared %s\n", c.Dir())
			return nil
		},
	})

	return cmd
}
