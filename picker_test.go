package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"hum/audio"
)

func TestPickerNavigation(t *testing.T) {
	m := pickerModel{devices: []audio.DeviceInfo{
		{ID: "0", Name: "Built-in Speakers"},
		{ID: "1", Name: "USB Headphones"},
		{ID: "2", Name: "HDMI"},
	}}

	step := func(msg tea.KeyMsg) {
		next, _ := m.Update(msg)
		m = next.(pickerModel)
	}
	step(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("cursor moved above the list: %d", m.cursor)
	}
	step(tea.KeyMsg{Type: tea.KeyDown})
	step(runeKey("j"))
	step(runeKey("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	step(runeKey("k"))

	v := m.View()
	if !strings.Contains(v, "▶ USB Headphones") {
		t.Errorf("cursor not rendered:\n%s", v)
	}
	if strings.Count(v, "beats need headphones") != 2 {
		t.Errorf("want speaker hints on two devices:\n%s", v)
	}

	step(tea.KeyMsg{Type: tea.KeyEnter})
	if m.chosen == nil || m.chosen.Name != "USB Headphones" {
		t.Errorf("chosen = %+v", m.chosen)
	}
}

func TestPickerEscUsesDefault(t *testing.T) {
	m := pickerModel{devices: []audio.DeviceInfo{{Name: "a"}, {Name: "b"}}}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(pickerModel)
	if m.chosen != nil || m.cancelled || cmd == nil {
		t.Errorf("esc: chosen=%v cancelled=%v", m.chosen, m.cancelled)
	}
}

func TestSelectDeviceWithoutPrompt(t *testing.T) {
	ctx := audio.NewFakeContext(false, audio.DeviceInfo{ID: "7", Name: "Headphones"})
	dev, err := selectDevice(ctx)
	if err != nil || dev == nil || dev.ID != "7" {
		t.Errorf("single device: %+v, %v", dev, err)
	}

	_, err = selectDevice(audio.NewFakeContext(false))
	if !errors.Is(err, audio.ErrNoDevices) {
		t.Errorf("no devices: err = %v", err)
	}
}
