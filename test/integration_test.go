//go:build integration

package test_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("HUM_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "HUM_TEST_BIN not set; build with: go build -o /tmp/hum . && HUM_TEST_BIN=/tmp/hum go test -tags integration ./test")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

// runHum runs the binary headless and returns its stdout and log directory.
func runHum(t *testing.T, stdin string, args ...string) (stdout, logDir string) {
	t.Helper()
	logDir = t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cmdArgs := append([]string{"--logpath", logDir, "--config", cfgPath}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = os.Environ()

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("hum exited with error: %v\noutput: %s", err, out)
	}
	return string(out), logDir
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func statusLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.HasPrefix(l, "STATUS ") {
			lines = append(lines, l)
		}
	}
	return lines
}

// --- Tone tests ---

func TestToneStartStop(t *testing.T) {
	out, logDir := runHum(t, cmds("START", "SLEEP 200", "STATUS", "STOP", "STATUS", "QUIT"), "--test")
	st := statusLines(out)
	if len(st) != 2 {
		t.Fatalf("expected 2 STATUS lines, got:\n%s", out)
	}
	if !strings.Contains(st[0], "running=true") || !strings.Contains(st[0], "playbacks=1") {
		t.Errorf("while playing: %s", st[0])
	}
	if !strings.Contains(st[1], "running=false") || !strings.Contains(st[1], "playbacks=0") {
		t.Errorf("after stop: %s", st[1])
	}

	diag := readLog(t, logDir, "diagnostics_log.txt")
	for _, want := range []string{"session_start", "tone_start", "tone_stop", "session_end"} {
		if !strings.Contains(diag, want) {
			t.Errorf("expected %s in diagnostics", want)
		}
	}
	if !strings.Contains(readLog(t, logDir, "sessions_log.txt"), "carrier=200") {
		t.Error("expected a tone session in sessions_log.txt")
	}
}

func TestRetuneWhilePlaying(t *testing.T) {
	out, logDir := runHum(t, cmds("START", "CARRIER 440", "BEAT 8", "STATUS", "QUIT"), "--test")
	st := statusLines(out)
	if len(st) != 1 || !strings.Contains(st[0], "left=436 right=444") {
		t.Errorf("unexpected status:\n%s", out)
	}
	if !strings.Contains(readLog(t, logDir, "diagnostics_log.txt"), "tone_retune") {
		t.Error("expected tone_retune in diagnostics")
	}
}

func TestFlagsOverrideDefaults(t *testing.T) {
	out, _ := runHum(t, cmds("STATUS", "QUIT"), "--test", "--carrier", "120", "--beat", "3")
	if !strings.Contains(out, "carrier=120 beat=3 left=118.5 right=121.5") {
		t.Errorf("flags not applied:\n%s", out)
	}
}

// --- Timer tests ---

func TestClassicFinish(t *testing.T) {
	out, logDir := runHum(t, cmds("TIMER classic START", "TIMER classic TICK 1500", "STATUS", "QUIT"), "--test")
	if !strings.Contains(out, "FINISHED Pomodoro remaining=00:00") {
		t.Errorf("expected FINISHED line:\n%s", out)
	}
	diag := readLog(t, logDir, "diagnostics_log.txt")
	if !strings.Contains(diag, "timer_finish") {
		t.Error("expected timer_finish in diagnostics")
	}
}

func TestSiteAdjustAndVolume(t *testing.T) {
	out, _ := runHum(t, cmds("TIMER site ADJUST 5", "TIMER site VOLUME 150", "STATUS", "QUIT"), "--test")
	if !strings.Contains(out, "site=30:00 site_running=false site_volume=100") {
		t.Errorf("unexpected status:\n%s", out)
	}
}

func TestBadCommandKeepsGoing(t *testing.T) {
	out, logDir := runHum(t, cmds("PRESET nope", "STATUS", "QUIT"), "--test")
	if !strings.Contains(out, "ERROR preset \"nope\"") {
		t.Errorf("expected ERROR line:\n%s", out)
	}
	if len(statusLines(out)) != 1 {
		t.Errorf("expected STATUS after the error:\n%s", out)
	}
	if !strings.Contains(readLog(t, logDir, "diagnostics_log.txt"), "test command") {
		t.Error("expected the failed command in diagnostics")
	}
}

// --- Offline render ---

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alpha.flac")
	out, _ := runHum(t, "", "render", path, "--preset", "alpha", "--duration", "1s")
	if !strings.Contains(out, "L 195 Hz / R 205 Hz, 44100 frames") {
		t.Errorf("unexpected render summary:\n%s", out)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("rendered file is empty")
	}
}
