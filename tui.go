package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hum/clipboard"
	"hum/log"
	"hum/pomodoro"
	"hum/tone"
	"hum/waveform"
)

// TUI message types
type ToneChangedMsg struct{ Snapshot tone.Snapshot }
type TimerChangedMsg struct{ Snapshot pomodoro.Snapshot }
type TimerFinishedMsg struct{ Snapshot pomodoro.Snapshot }
type NoticeMsg struct{ Text string }
type DeviceLineMsg struct{ Text string }
type frameMsg time.Time

const (
	waveformCols = 60
	waveformRows = 6
	frameRate    = tone.FrameInterval
)

type tuiTab int

const (
	tabTone tuiTab = iota
	tabClassic
	tabSite
	tabCount
)

func (t tuiTab) String() string {
	switch t {
	case tabClassic:
		return "Pomodoro"
	case tabSite:
		return "Site pomodoro"
	}
	return "Binaural"
}

// tuiStatus is what runRoot knows before the program starts.
type tuiStatus struct {
	deviceLine string
	hotkey     string
	notice     string
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

// tuiSend forwards a message to the running program. Send blocks until the
// event loop reads it, and engine callbacks can fire from inside Update, so
// the send happens on its own goroutine.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		go p.Send(msg)
	}
}

// tuiSink delivers app events to the Bubble Tea program.
type tuiSink struct{}

func (tuiSink) ToneChanged(s tone.Snapshot)       { tuiSend(ToneChangedMsg{Snapshot: s}) }
func (tuiSink) TimerChanged(s pomodoro.Snapshot)  { tuiSend(TimerChangedMsg{Snapshot: s}) }
func (tuiSink) TimerFinished(s pomodoro.Snapshot) { tuiSend(TimerFinishedMsg{Snapshot: s}) }
func (tuiSink) Notice(text string)                { tuiSend(NoticeMsg{Text: text}) }
func (tuiSink) DeviceLine(text string)            { tuiSend(DeviceLineMsg{Text: text}) }

type keyMap struct {
	NextTab    key.Binding
	ToneTab    key.Binding
	ClassicTab key.Binding
	SiteTab    key.Binding
	Quit       key.Binding

	Toggle      key.Binding
	CarrierDown key.Binding
	CarrierUp   key.Binding
	CarrierFast key.Binding
	BeatDown    key.Binding
	BeatUp      key.Binding
	VolumeDown  key.Binding
	VolumeUp    key.Binding
	NextPreset  key.Binding
	PrevPreset  key.Binding
	Copy        key.Binding

	Start  key.Binding
	Stop   key.Binding
	Reset  key.Binding
	Back5  key.Binding
	Ahead5 key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		ToneTab:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "binaural")),
		ClassicTab: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "pomodoro")),
		SiteTab:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "site")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
		CarrierDown: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "carrier")),
		CarrierUp:   key.NewBinding(key.WithKeys("right", "l")),
		CarrierFast: key.NewBinding(key.WithKeys("shift+left", "shift+right"), key.WithHelp("shift", "×10")),
		BeatDown:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/↑", "beat")),
		BeatUp:      key.NewBinding(key.WithKeys("up", "k")),
		VolumeDown:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-/+", "volume")),
		VolumeUp:    key.NewBinding(key.WithKeys("+", "=")),
		NextPreset:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p/P", "preset")),
		PrevPreset:  key.NewBinding(key.WithKeys("P")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy preset")),

		Start:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Back5:  key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "∓5 min")),
		Ahead5: key.NewBinding(key.WithKeys("]")),
	}
}

// tabHelp adapts a binding list to help.KeyMap.
type tabHelp []key.Binding

func (h tabHelp) ShortHelp() []key.Binding  { return h }
func (h tabHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

func (k keyMap) helpFor(tab tuiTab) tabHelp {
	common := []key.Binding{k.NextTab, k.Quit}
	switch tab {
	case tabClassic:
		return append(tabHelp{k.Start, k.Stop, k.Reset}, common...)
	case tabSite:
		return append(tabHelp{k.Toggle, k.Reset, k.Back5, k.VolumeDown}, common...)
	}
	return append(tabHelp{k.Toggle, k.CarrierDown, k.CarrierFast, k.BeatDown, k.VolumeDown, k.NextPreset, k.Copy}, common...)
}

type tuiModel struct {
	app    *app
	canvas *waveform.Canvas
	keys   keyMap
	help   help.Model
	bar    progress.Model

	tab           tuiTab
	width, height int
	tone          tone.Snapshot
	timers        [2]pomodoro.Snapshot
	notice        string // modal; blocks other input until dismissed
	flash         string // one-line status under the tab body
	deviceLine    string
	hotkeyLine    string
}

// Pre-computed styles to avoid allocations in the render loop
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("61")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(9)
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	playingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	waveStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	clockStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Padding(0, 2)
	flashStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noticeStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208")).Padding(1, 4).Bold(true)
)

func newTUIModel(a *app, canvas *waveform.Canvas, st tuiStatus) tuiModel {
	m := tuiModel{
		app:        a,
		canvas:     canvas,
		keys:       defaultKeyMap(),
		help:       help.New(),
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		notice:     st.notice,
		deviceLine: st.deviceLine,
		hotkeyLine: st.hotkey,
	}
	m.bar.Width = 40
	return m.refresh()
}

func NewTUIProgram(m tuiModel) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

func runTUI(ctx context.Context, a *app, canvas *waveform.Canvas, st tuiStatus) error {
	p := NewTUIProgram(newTUIModel(a, canvas, st))
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()
	defer func() {
		tuiMu.Lock()
		tuiProgram = nil
		tuiMu.Unlock()
	}()

	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func tuiTick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

// refresh pulls fresh snapshots; events only say that something changed.
func (m tuiModel) refresh() tuiModel {
	m.tone = m.app.engine.Snapshot()
	m.timers[pomodoro.Classic] = m.app.classic.Snapshot()
	m.timers[pomodoro.Site] = m.app.site.Snapshot()
	return m
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = max(10, min(60, msg.Width-8))
		m.canvas.Resize(max(10, min(120, msg.Width-4)), waveformRows)

	case frameMsg:
		return m.refresh(), tuiTick()

	case ToneChangedMsg, TimerChangedMsg:
		return m.refresh(), nil

	case TimerFinishedMsg:
		m.notice = fmt.Sprintf("%s: Time's up!", msg.Snapshot.Name)
		return m.refresh(), nil

	case NoticeMsg:
		m.notice = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.notice != "" {
		m.notice = ""
		return m, nil
	}
	m.flash = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
		return m, nil
	case key.Matches(msg, m.keys.ToneTab):
		m.tab = tabTone
		return m, nil
	case key.Matches(msg, m.keys.ClassicTab):
		m.tab = tabClassic
		return m, nil
	case key.Matches(msg, m.keys.SiteTab):
		m.tab = tabSite
		return m, nil
	}

	switch m.tab {
	case tabTone:
		m = m.handleToneKey(msg)
	case tabClassic:
		m = m.handleClassicKey(msg)
	case tabSite:
		m = m.handleSiteKey(msg)
	}
	return m.refresh(), nil
}

func (m tuiModel) handleToneKey(msg tea.KeyMsg) tuiModel {
	a := m.app
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if err := a.toggleTone(); err != nil {
			m.notice = err.Error()
		}
	case key.Matches(msg, m.keys.CarrierFast):
		if msg.String() == "shift+left" {
			a.nudgeCarrier(-10)
		} else {
			a.nudgeCarrier(10)
		}
	case key.Matches(msg, m.keys.CarrierDown):
		a.nudgeCarrier(-1)
	case key.Matches(msg, m.keys.CarrierUp):
		a.nudgeCarrier(1)
	case key.Matches(msg, m.keys.BeatDown):
		a.nudgeBeat(-1)
	case key.Matches(msg, m.keys.BeatUp):
		a.nudgeBeat(1)
	case key.Matches(msg, m.keys.VolumeDown):
		a.nudgeVolume(-1)
	case key.Matches(msg, m.keys.VolumeUp):
		a.nudgeVolume(1)
	case key.Matches(msg, m.keys.NextPreset):
		a.cyclePreset(1)
		m.flash = "preset " + a.presetName()
	case key.Matches(msg, m.keys.PrevPreset):
		a.cyclePreset(-1)
		m.flash = "preset " + a.presetName()
	case key.Matches(msg, m.keys.Copy):
		m.flash = copyPreset(a)
	}
	return m
}

func copyPreset(a *app) string {
	snippet, err := a.presetSnippet()
	if err != nil {
		log.Errorf("preset snippet: %v", err)
		return "copy failed: " + err.Error()
	}
	if err := clipboard.Copy(snippet); err != nil {
		log.Warnf("clipboard: %v", err)
		return "copy failed: " + err.Error()
	}
	return "[✓ copied preset to clipboard]"
}

func (m tuiModel) handleClassicKey(msg tea.KeyMsg) tuiModel {
	t := m.app.classic
	switch {
	case key.Matches(msg, m.keys.Start):
		t.Start()
	case key.Matches(msg, m.keys.Stop):
		t.Stop()
	case key.Matches(msg, m.keys.Reset):
		t.Reset()
	}
	return m
}

func (m tuiModel) handleSiteKey(msg tea.KeyMsg) tuiModel {
	t := m.app.site
	var err error
	switch {
	case key.Matches(msg, m.keys.Toggle):
		t.Toggle()
	case key.Matches(msg, m.keys.Reset):
		t.Reset()
	case key.Matches(msg, m.keys.Back5):
		err = t.Adjust(-5)
	case key.Matches(msg, m.keys.Ahead5):
		err = t.Adjust(5)
	case key.Matches(msg, m.keys.VolumeDown):
		err = t.SetVolume(t.Snapshot().TrackVolume - 5)
	case key.Matches(msg, m.keys.VolumeUp):
		err = t.SetVolume(t.Snapshot().TrackVolume + 5)
	}
	if err != nil {
		m.flash = err.Error()
	}
	return m
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("hum") + "  " + m.renderTabs() + "\n\n")

	if m.notice != "" {
		box := noticeStyle.Render(m.notice + "\n\n" + dimStyle.Render("press any key"))
		b.WriteString(lipgloss.Place(m.width, max(5, m.height-4), lipgloss.Center, lipgloss.Center, box))
		return b.String()
	}

	switch m.tab {
	case tabTone:
		b.WriteString(m.renderTone())
	case tabClassic:
		b.WriteString(m.renderTimer(m.timers[pomodoro.Classic]))
	case tabSite:
		b.WriteString(m.renderTimer(m.timers[pomodoro.Site]))
	}

	if m.flash != "" {
		b.WriteString("\n" + flashStyle.Render(m.flash) + "\n")
	}
	b.WriteString("\n")
	if m.deviceLine != "" {
		b.WriteString(dimStyle.Render(m.deviceLine) + "\n")
	}
	if m.hotkeyLine != "" {
		b.WriteString(dimStyle.Render(m.hotkeyLine) + "\n")
	}
	b.WriteString(m.help.View(m.keys.helpFor(m.tab)) + "\n")
	b.WriteString(dimStyle.Render("hum " + version))
	return b.String()
}

func (m tuiModel) renderTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := tuiTab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", t+1, t)
		if t == m.tab {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func (m tuiModel) renderTone() string {
	s := m.tone
	var b strings.Builder
	if s.Running {
		b.WriteString(playingStyle.Render("● PLAYING") + "\n\n")
	} else {
		b.WriteString(dimStyle.Render("○ STOPPED") + "\n\n")
	}
	b.WriteString(row("carrier", fmt.Sprintf("%g Hz", s.CarrierHz)))
	b.WriteString(row("beat", fmt.Sprintf("%g Hz", s.BeatHz)))
	b.WriteString(row("left", fmt.Sprintf("%g Hz", s.LeftHz)))
	b.WriteString(row("right", fmt.Sprintf("%g Hz", s.RightHz)))
	b.WriteString(row("volume", fmt.Sprintf("%d%%", int(s.Volume*100+0.5))))
	if name := m.app.presetName(); name != "" {
		b.WriteString(row("preset", name))
	}
	b.WriteString("\n")
	if m.canvas.Blank() {
		cols, rows := m.canvas.Size()
		pad := strings.Repeat("\n", rows/2)
		b.WriteString(pad + dimStyle.Render(strings.Repeat("─", cols)) + pad + "\n")
	} else {
		b.WriteString(waveStyle.Render(m.canvas.String()) + "\n")
	}
	return b.String()
}

func (m tuiModel) renderTimer(s pomodoro.Snapshot) string {
	var b strings.Builder
	state := dimStyle.Render("○ IDLE")
	if s.Running {
		state = playingStyle.Render("● RUNNING")
	}
	b.WriteString(state + "\n\n")
	b.WriteString(clockStyle.Render(pomodoro.Format(s.Remaining)) + "\n\n")

	frac := 0.0
	if s.Duration > 0 {
		frac = 1 - float64(s.Remaining)/float64(s.Duration)
	}
	b.WriteString(m.bar.ViewAs(max(0, min(1, frac))) + "\n")

	if s.Variant == pomodoro.Site {
		b.WriteString("\n")
		if m.app.track != nil {
			b.WriteString(row("track", m.app.track.Path()))
		} else {
			b.WriteString(row("track", dimStyle.Render("none (set timer.track in config)")))
		}
		b.WriteString(row("volume", fmt.Sprintf("%d%%", s.TrackVolume)))
	}
	return b.String()
}
