// Package display provides terminal colors and aligned tables for the CLI.
//
// Colors come from fatih/color, which already honors NO_COLOR
// (https://no-color.org/) and disables itself when stdout is not a
// terminal. FORCE_COLOR turns them back on, mostly for tests and pagers.
package display

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	boldColor   = color.New(color.Bold)
	dimColor    = color.New(color.Faint)
	greenColor  = color.New(color.FgGreen)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	cyanColor   = color.New(color.FgCyan)
	grayColor   = color.New(color.FgHiBlack)
	accentColor = color.New(color.Bold, color.FgCyan)
)

func init() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		color.NoColor = false
	}
}

// SetEnabled overrides the auto-detected color state.
// Useful for testing or when --json forces plain output.
func SetEnabled(b bool) {
	color.NoColor = !b
}

// Enabled reports whether color output is currently active.
func Enabled() bool {
	return !color.NoColor
}

// Bold returns text rendered in bold.
func Bold(text string) string { return boldColor.Sprint(text) }

// Dim returns text rendered in dim/faint.
func Dim(text string) string { return dimColor.Sprint(text) }

// Green returns text rendered in green.
func Green(text string) string { return greenColor.Sprint(text) }

// Yellow returns text rendered in yellow.
func Yellow(text string) string { return yellowColor.Sprint(text) }

// Red returns text rendered in red.
func Red(text string) string { return redColor.Sprint(text) }

// Cyan returns text rendered in cyan.
func Cyan(text string) string { return cyanColor.Sprint(text) }

// Gray returns text rendered in gray (bright black).
func Gray(text string) string { return grayColor.Sprint(text) }

// Accent returns text rendered in the accent color (cyan + bold).
// Used for the "next prayer" highlight and the active sleep block.
func Accent(text string) string { return accentColor.Sprint(text) }

// Boldf formats and bolds a string.
func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}
