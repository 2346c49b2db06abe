package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"hum/config"
	"hum/pomodoro"
	"hum/waveform"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, st tuiStatus) tuiModel {
	t.Helper()
	a, _, _, _ := newTestApp(t, config.Default())
	m := newTUIModel(a, waveform.New(waveformCols, waveformRows), st)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(tuiModel)
}

func press(t *testing.T, m tuiModel, msgs ...tea.KeyMsg) tuiModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(tuiModel)
	}
	return m
}

func TestTUITabs(t *testing.T) {
	m := newTestModel(t, tuiStatus{})
	if m.tab != tabTone {
		t.Fatalf("initial tab = %v", m.tab)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != tabClassic {
		t.Errorf("after tab = %v, want %v", m.tab, tabClassic)
	}
	m = press(t, m, runeKey("3"))
	if m.tab != tabSite {
		t.Errorf("after 3 = %v", m.tab)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != tabTone {
		t.Errorf("tab did not wrap: %v", m.tab)
	}
}

func TestTUIToneKeys(t *testing.T) {
	m := newTestModel(t, tuiStatus{})

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.tone.Running {
		t.Fatal("space did not start the tone")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, runeKey("k"), runeKey("+"))
	if m.tone.CarrierHz != 201 {
		t.Errorf("carrier = %g, want 201", m.tone.CarrierHz)
	}
	if m.tone.BeatHz != 10.5 {
		t.Errorf("beat = %g, want 10.5", m.tone.BeatHz)
	}
	if m.tone.LeftHz != 201-5.25 || m.tone.RightHz != 201+5.25 {
		t.Errorf("channels = %g/%g", m.tone.LeftHz, m.tone.RightHz)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	if m.tone.CarrierHz != 191 {
		t.Errorf("carrier after shift+left = %g, want 191", m.tone.CarrierHz)
	}

	m = press(t, m, runeKey("p"))
	if m.flash != "preset delta" {
		t.Errorf("flash = %q", m.flash)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.tone.Running {
		t.Error("space did not stop the tone")
	}
}

func TestTUIClassicKeys(t *testing.T) {
	m := newTestModel(t, tuiStatus{})
	m = press(t, m, runeKey("2"), runeKey("s"))
	if !m.timers[pomodoro.Classic].Running {
		t.Fatal("s did not start the classic timer")
	}
	m = press(t, m, runeKey("x"))
	if m.timers[pomodoro.Classic].Running {
		t.Error("x did not stop the classic timer")
	}
	// Site-only keys do nothing here.
	m = press(t, m, runeKey("]"))
	if got := m.timers[pomodoro.Classic].Remaining; got != pomodoro.DefaultDuration {
		t.Errorf("classic remaining = %d", got)
	}
}

func TestTUISiteKeys(t *testing.T) {
	m := newTestModel(t, tuiStatus{})
	m = press(t, m, runeKey("3"), runeKey("]"))
	if got := m.timers[pomodoro.Site].Remaining; got != pomodoro.DefaultDuration+300 {
		t.Errorf("remaining after ] = %d", got)
	}
	m = press(t, m, runeKey("-"))
	if got := m.timers[pomodoro.Site].TrackVolume; got != 45 {
		t.Errorf("track volume = %d, want 45", got)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.timers[pomodoro.Site].Running {
		t.Error("space did not start the site timer")
	}
	if m.tone.Running {
		t.Error("space on the site tab started the tone")
	}
}

func TestTUINoticeBlocksInput(t *testing.T) {
	m := newTestModel(t, tuiStatus{notice: "Global hotkey unavailable"})

	if v := m.View(); !strings.Contains(v, "Global hotkey unavailable") {
		t.Errorf("notice not rendered:\n%s", v)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.notice != "" {
		t.Error("key did not dismiss the notice")
	}
	if m.tone.Running {
		t.Error("dismissing key also toggled the tone")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.tone.Running {
		t.Error("space ignored after the notice was dismissed")
	}
}

func TestTUITimerFinishedNotice(t *testing.T) {
	m := newTestModel(t, tuiStatus{})
	next, _ := m.Update(TimerFinishedMsg{Snapshot: pomodoro.Snapshot{Name: "Pomodoro"}})
	m = next.(tuiModel)
	if m.notice != "Pomodoro: Time's up!" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestTUIView(t *testing.T) {
	m := newTestModel(t, tuiStatus{deviceLine: "out: Headphones", hotkey: "ctrl+shift+space: tap tone, hold site timer"})

	v := m.View()
	for _, want := range []string{"200 Hz", "10 Hz", "195 Hz", "205 Hz", "50%", "out: Headphones", "tap tone", "STOPPED"} {
		if !strings.Contains(v, want) {
			t.Errorf("tone view missing %q:\n%s", want, v)
		}
	}

	m = press(t, m, runeKey("3"))
	v = m.View()
	for _, want := range []string{"25:00", "IDLE", "none (set timer.track in config)"} {
		if !strings.Contains(v, want) {
			t.Errorf("site view missing %q:\n%s", want, v)
		}
	}
}

func TestTUIViewBeforeSize(t *testing.T) {
	a, _, _, _ := newTestApp(t, config.Default())
	m := newTUIModel(a, waveform.New(waveformCols, waveformRows), tuiStatus{})
	if got := m.View(); got != "Loading..." {
		t.Errorf("View = %q", got)
	}
}
