package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hum/audio"
)

var errPickerCancelled = errors.New("device selection cancelled")

var (
	pickerCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	pickerHintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// pickerModel lists output devices. Enter picks the highlighted device, Esc
// falls back to the system default.
type pickerModel struct {
	devices   []audio.DeviceInfo
	cursor    int
	chosen    *audio.DeviceInfo
	cancelled bool
	done      bool
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.devices)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = &m.devices[m.cursor]
		m.done = true
		return m, tea.Quit
	case "esc":
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString("Select output device (↑/↓, Enter to confirm, Esc for default):\n\n")
	for i, d := range m.devices {
		tag := ""
		if !audio.LooksLikeHeadphones(d.Name) {
			tag = pickerHintStyle.Render(" (speakers? beats need headphones)")
		}
		if i == m.cursor {
			b.WriteString(pickerCursorStyle.Render("▶ "+d.Name) + tag + "\n")
		} else {
			b.WriteString("  " + d.Name + tag + "\n")
		}
	}
	return b.String()
}

// selectDevice asks the operator to pick an output device. A single device is
// returned without prompting; nil means the system default.
func selectDevice(ctx audio.Context) (*audio.DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, audio.ErrNoDevices
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	final, err := tea.NewProgram(pickerModel{devices: devices}).Run()
	if err != nil {
		return nil, fmt.Errorf("device picker: %w", err)
	}
	m := final.(pickerModel)
	if m.cancelled {
		return nil, errPickerCancelled
	}
	return m.chosen, nil
}
