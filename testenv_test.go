package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hum/config"
	"hum/log"
)

func runScript(t *testing.T, cfg config.Config, lines ...string) []string {
	t.Helper()
	logDir := t.TempDir()
	log.SetDir(logDir)
	var out bytes.Buffer
	if err := runTestMode(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, cfg); err != nil {
		t.Fatalf("runTestMode: %v", err)
	}
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func TestTestModeToneStatus(t *testing.T) {
	out := runScript(t, config.Default(),
		"# comment lines and blanks are skipped",
		"",
		"STATUS",
		"START",
		"PRESET alpha",
		"STATUS",
		"CARRIER 300",
		"BEAT 4",
		"VOLUME 0.25",
		"STATUS",
		"STOP",
		"STATUS",
		"QUIT",
	)
	want := []string{
		"STATUS running=false carrier=200 beat=10 left=195 right=205 volume=0.5 playbacks=0 classic=25:00 classic_running=false site=25:00 site_running=false site_volume=50",
		"STATUS running=true carrier=200 beat=10 left=195 right=205 volume=0.5 playbacks=1 classic=25:00 classic_running=false site=25:00 site_running=false site_volume=50",
		"STATUS running=true carrier=300 beat=4 left=298 right=302 volume=0.25 playbacks=1 classic=25:00 classic_running=false site=25:00 site_running=false site_volume=50",
		"STATUS running=false carrier=300 beat=4 left=298 right=302 volume=0.25 playbacks=0 classic=25:00 classic_running=false site=25:00 site_running=false site_volume=50",
	}
	if len(out) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(out), len(want), strings.Join(out, "\n"))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("line %d:\n got %s\nwant %s", i, out[i], want[i])
		}
	}
}

func TestTestModeClassicFinish(t *testing.T) {
	out := runScript(t, config.Default(),
		"TIMER classic START",
		"TIMER classic TICK 1499",
		"STATUS",
		"TIMER classic TICK 1",
		"TIMER classic TICK 5",
		"STATUS",
	)
	joined := strings.Join(out, "\n")
	if !strings.Contains(out[0], "classic=00:01 classic_running=true") {
		t.Errorf("before finish: %s", out[0])
	}
	if strings.Count(joined, "FINISHED") != 1 {
		t.Fatalf("want exactly one FINISHED line:\n%s", joined)
	}
	if out[1] != "FINISHED Pomodoro remaining=00:00" {
		t.Errorf("finish line = %q", out[1])
	}
	if !strings.Contains(out[2], "classic=00:00 classic_running=false") {
		t.Errorf("after finish: %s", out[2])
	}
}

func TestTestModeSiteTimer(t *testing.T) {
	out := runScript(t, config.Default(),
		"TIMER site ADJUST -5",
		"TIMER site VOLUME 80",
		"TIMER site TOGGLE",
		"TIMER site TICK 60",
		"STATUS",
		"TIMER site ADJUST -30",
		"STATUS",
		"TIMER site TICK 1",
		"STATUS",
	)
	if len(out) != 4 {
		t.Fatalf("got %d lines:\n%s", len(out), strings.Join(out, "\n"))
	}
	if !strings.Contains(out[0], "site=19:00 site_running=true site_volume=80") {
		t.Errorf("after adjust and tick: %s", out[0])
	}
	if !strings.Contains(out[1], "site=00:00 site_running=true") {
		t.Errorf("adjust below zero: %s", out[1])
	}
	if out[2] != "FINISHED Site pomodoro remaining=25:00" {
		t.Errorf("finish line = %q", out[2])
	}
	if !strings.Contains(out[3], "site=25:00 site_running=false") {
		t.Errorf("site did not rewind: %s", out[3])
	}
}

func TestTestModeErrors(t *testing.T) {
	out := runScript(t, config.Default(),
		"PRESET nope",
		"CARRIER abc",
		"TIMER classic ADJUST 5",
		"TIMER lunch START",
		"BOGUS",
		"STATUS",
	)
	if len(out) != 6 {
		t.Fatalf("got %d lines:\n%s", len(out), strings.Join(out, "\n"))
	}
	for i, line := range out[:5] {
		if !strings.HasPrefix(line, "ERROR ") {
			t.Errorf("line %d = %q, want ERROR", i, line)
		}
	}
	if !strings.HasPrefix(out[5], "STATUS ") {
		t.Errorf("script stopped after errors: %q", out[5])
	}
}

func TestTestModeWritesDiagnostics(t *testing.T) {
	logDir := t.TempDir()
	log.SetDir(logDir)
	var out bytes.Buffer
	script := "START\nTIMER classic START\nTIMER classic TICK 3\nSTOP\nQUIT\n"
	if err := runTestMode(strings.NewReader(script), &out, config.Default()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(logDir, "diagnostics_log.txt"))
	if err != nil {
		t.Fatalf("reading diagnostics: %v", err)
	}
	diag := string(data)
	for _, want := range []string{"session_start", "frontend=test", "tone_start", "timer_start", "tone_stop", "session_end", "tone_sessions=1"} {
		if !strings.Contains(diag, want) {
			t.Errorf("diagnostics missing %q:\n%s", want, diag)
		}
	}
	history, err := os.ReadFile(filepath.Join(logDir, "sessions_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(history), "carrier=200\tbeat=10") {
		t.Errorf("sessions_log = %q", history)
	}
}
