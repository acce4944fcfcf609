package display

import (
	"testing"

	"github.com/fatih/color"
)

var styles = []struct {
	name string
	fn   func(string) string
	attr []color.Attribute
}{
	{"Bold", Bold, []color.Attribute{color.Bold}},
	{"Dim", Dim, []color.Attribute{color.Faint}},
	{"Green", Green, []color.Attribute{color.FgGreen}},
	{"Yellow", Yellow, []color.Attribute{color.FgYellow}},
	{"Red", Red, []color.Attribute{color.FgRed}},
	{"Cyan", Cyan, []color.Attribute{color.FgCyan}},
	{"Gray", Gray, []color.Attribute{color.FgHiBlack}},
	{"Accent", Accent, []color.Attribute{color.Bold, color.FgCyan}},
}

func TestStyles(t *testing.T) {
	for _, on := range []bool{true, false} {
		for _, st := range styles {
			name := st.name + "/plain"
			if on {
				name = st.name + "/color"
			}
			t.Run(name, func(t *testing.T) {
				withColor(t, on)
				if Enabled() != on {
					t.Fatalf("Enabled() = %v after SetEnabled(%v)", Enabled(), on)
				}

				want := "Fajr"
				if on {
					want = color.New(st.attr...).Sprint("Fajr")
				}
				if got := st.fn("Fajr"); got != want {
					t.Errorf("got %q, want %q", got, want)
				}
			})
		}
	}
}

func TestBoldf(t *testing.T) {
	withColor(t, true)
	if got, want := Boldf("%d nights", 3), Bold("3 nights"); got != want {
		t.Errorf("Boldf = %q, want %q", got, want)
	}
}
