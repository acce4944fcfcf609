package cli

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildBinary compiles the qiyam binary to a temp directory for testing.
func buildBinary(t *testing.T, ldflags string) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "qiyam")

	args := []string{"build"}
	if ldflags != "" {
		args = append(args, "-ldflags", ldflags)
	}
	args = append(args, "-o", binPath, "../../cmd/qiyam")

	cmd := exec.Command("go", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

// isolatedEnv points config and cache at temp dirs so tests never touch
// the real user files.
func isolatedEnv(t *testing.T) []string {
	t.Helper()
	return append(os.Environ(),
		"XDG_CONFIG_HOME="+t.TempDir(),
		"HOME="+t.TempDir(),
		"NO_COLOR=1",
	)
}

func run(t *testing.T, bin string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// TestVersionFlag verifies that --version prints the version string.
func TestVersionFlag(t *testing.T) {
	binPath := buildBinary(t, "-X main.version=v1.2.3-test")

	out, err := exec.Command(binPath, "--version").Output()
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}

	got := strings.TrimSpace(string(out))
	want := "qiyam version v1.2.3-test"
	if got != want {
		t.Errorf("--version = %q, want %q", got, want)
	}
}

// TestVersionFlag_Dev verifies the default "dev" version when no ldflags.
func TestVersionFlag_Dev(t *testing.T) {
	binPath := buildBinary(t, "")

	out, err := exec.Command(binPath, "--version").Output()
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}

	got := strings.TrimSpace(string(out))
	if !strings.HasPrefix(got, "qiyam version ") {
		t.Errorf("--version output unexpected: %q", got)
	}
}

func TestMethodsSubcommand(t *testing.T) {
	binPath := buildBinary(t, "")
	env := isolatedEnv(t)

	out, err := run(t, binPath, env, "methods")
	if err != nil {
		t.Fatalf("methods failed: %v\n%s", err, out)
	}
	for _, m := range []string{"ISNA", "Muslim World League", "Umm Al-Qura", "Jafari", "Ministry of Awqaf, Jordan"} {
		if !strings.Contains(out, m) {
			t.Errorf("methods output missing %q", m)
		}
	}

	out, err = run(t, binPath, env, "methods", "--json")
	if err != nil || !strings.Contains(out, `"id": 23`) {
		t.Errorf("methods --json: %v\n%s", err, out)
	}
}

func TestBrokenConfigFileIsReported(t *testing.T) {
	binPath := buildBinary(t, "")
	env := isolatedEnv(t)

	path, err := run(t, binPath, env, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	path = strings.TrimSpace(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"school": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, binPath, env, "methods")
	if err == nil || !strings.Contains(out, "invalid config file") {
		t.Errorf("expected a config error, got %v\n%s", err, out)
	}
}

// TestNoLocation_ExitCode verifies that data commands without a usable location exit non-zero.
func TestNoLocation_ExitCode(t *testing.T) {
	binPath := buildBinary(t, "")

	for _, args := range [][]string{{}, {"next"}, {"plan"}, {"qiyam"}} {
		t.Run(strings.Join(append([]string{"root"}, args...), "_"), func(t *testing.T) {
			runCmd := exec.Command(binPath, append(args, "--cache-dir", "/dev/null/impossible")...)
			runCmd.Env = append(os.Environ(), "HOME=/dev/null")
			err := runCmd.Run()
			if err == nil {
				// Geo-detection worked; that's fine.
				return
			}
			exitErr, ok := err.(*exec.ExitError)
			if !ok {
				t.Fatalf("expected ExitError, got %T: %v", err, err)
			}
			if exitErr.ExitCode() == 0 {
				t.Error("expected non-zero exit code")
			}
		})
	}
}

// TestCalculationMethods_NoDuplicateIDs ensures no duplicate method IDs.
func TestCalculationMethods_NoDuplicateIDs(t *testing.T) {
	seen := make(map[int]bool)
	for _, m := range CalculationMethods {
		if seen[m.ID] {
			t.Errorf("duplicate calculation method ID: %d", m.ID)
		}
		seen[m.ID] = true
	}
}

// TestCalculationMethods_IDsAreValid ensures method IDs are in the expected range.
func TestCalculationMethods_IDsAreValid(t *testing.T) {
	for _, m := range CalculationMethods {
		if m.ID < 0 || m.ID > 23 {
			t.Errorf("method ID %d out of range 0-23", m.ID)
		}
		if m.Name == "" {
			t.Errorf("method ID %d has empty name", m.ID)
		}
	}
}

// TestHelpFlag verifies that --help shows the expected subcommands.
func TestHelpFlag(t *testing.T) {
	binPath := buildBinary(t, "")

	out, err := exec.Command(binPath, "--help").Output()
	if err != nil {
		t.Fatalf("--help failed: %v", err)
	}

	output := string(out)
	for _, sub := range []string{"next", "list", "week", "month", "query", "qiyam", "plan", "alarm", "config", "methods", "cache", "--verbose"} {
		if !strings.Contains(output, sub) {
			t.Errorf("--help output missing %q", sub)
		}
	}
}

// TestOfflineSubcommands verifies commands that need no network.
func TestOfflineSubcommands(t *testing.T) {
	binPath := buildBinary(t, "")
	env := isolatedEnv(t)

	for _, args := range [][]string{
		{"config"},
		{"config", "show"},
		{"config", "path"},
		{"alarm"},
		{"alarm", "next"},
		{"cache", "path"},
	} {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			if out, err := run(t, binPath, env, args...); err != nil {
				t.Errorf("command %v failed: %v\n%s", args, err, out)
			}
		})
	}
}

// TestConfigSetRoundTrip sets sleep keys and reads them back through `config show`.
func TestConfigSetRoundTrip(t *testing.T) {
	binPath := buildBinary(t, "")
	env := isolatedEnv(t)

	for _, kv := range [][2]string{{"desired_sleep", "450"}, {"naps", "13:30/30"}, {"post_fajr", "false"}} {
		if out, err := run(t, binPath, env, "config", "set", kv[0], kv[1]); err != nil {
			t.Fatalf("config set %s: %v\n%s", kv[0], err, out)
		}
	}

	out, err := run(t, binPath, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	for _, want := range []string{"450", "13:30/30", "false", "21:30 (default)"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	if out, err := run(t, binPath, env, "config", "set", "min_night_start", "25:00"); err == nil {
		t.Errorf("invalid clock value accepted:\n%s", out)
	}
}

// TestAlarmLifecycle adds, lists, edits, disables and removes an alarm.
func TestAlarmLifecycle(t *testing.T) {
	binPath := buildBinary(t, "")
	env := isolatedEnv(t)

	if out, err := run(t, binPath, env, "alarm", "add", "04:30", "--label", "Tahajjud", "--repeat", "weekdays",
		"--ringtone", "adhan.mp3", "--vibrate=false"); err != nil {
		t.Fatalf("alarm add: %v\n%s", err, out)
	}

	out, err := run(t, binPath, env, "--json", "alarm", "list")
	if err != nil {
		t.Fatalf("alarm list: %v\n%s", err, out)
	}
	var alarms []alarmJSON
	if err := json.Unmarshal([]byte(out), &alarms); err != nil {
		t.Fatalf("alarm list JSON: %v\n%s", err, out)
	}
	if len(alarms) != 1 || alarms[0].Label != "Tahajjud" || alarms[0].Repeat != "weekdays" || !alarms[0].Enabled {
		t.Fatalf("alarms = %+v", alarms)
	}
	if alarms[0].Ringtone != "adhan.mp3" || alarms[0].Vibrate {
		t.Errorf("ringtone/vibrate = %q/%v", alarms[0].Ringtone, alarms[0].Vibrate)
	}
	id := alarms[0].ID[:8]

	if out, err := run(t, binPath, env, "alarm", "edit", id, "--time", "04:15", "--vibrate", "--repeat", "daily"); err != nil {
		t.Fatalf("alarm edit: %v\n%s", err, out)
	}
	out, _ = run(t, binPath, env, "--json", "alarm", "list")
	alarms = nil
	if err := json.Unmarshal([]byte(out), &alarms); err != nil {
		t.Fatalf("alarm list JSON after edit: %v\n%s", err, out)
	}
	if len(alarms) != 1 || alarms[0].Time != "04:15" || !alarms[0].Vibrate || alarms[0].Repeat != "daily" ||
		alarms[0].Label != "Tahajjud" || alarms[0].Ringtone != "adhan.mp3" {
		t.Errorf("after edit = %+v", alarms)
	}
	if out, err := run(t, binPath, env, "alarm", "edit", id); err == nil {
		t.Errorf("edit without changes accepted:\n%s", out)
	}
	if out, err := run(t, binPath, env, "alarm", "edit", id, "--zone", "Mars/Olympus"); err == nil {
		t.Errorf("unknown zone accepted:\n%s", out)
	}

	if out, err := run(t, binPath, env, "alarm", "disable", id); err != nil {
		t.Fatalf("alarm disable: %v\n%s", err, out)
	}
	out, _ = run(t, binPath, env, "alarm", "next")
	if !strings.Contains(out, "No enabled alarms") {
		t.Errorf("alarm next after disable = %q", out)
	}

	if out, err := run(t, binPath, env, "alarm", "rm", id); err != nil {
		t.Fatalf("alarm rm: %v\n%s", err, out)
	}
	if out, err := run(t, binPath, env, "alarm", "rm", id); err == nil {
		t.Errorf("removing twice should fail:\n%s", out)
	}

	if out, err := run(t, binPath, env, "alarm", "add", "25:00"); err == nil {
		t.Errorf("invalid alarm time accepted:\n%s", out)
	}
}
