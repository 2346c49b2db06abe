//go:build gui

// Package gui is the desktop front-end: one window with a tab per widget.
package gui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"hum/pomodoro"
	"hum/tone"
)

// Timer is the part of a pomodoro timer the window drives.
type Timer interface {
	Start()
	Stop()
	Reset()
	Toggle()
	Adjust(deltaMinutes int) error
	SetVolume(percent int) error
	Snapshot() pomodoro.Snapshot
}

// Controller is implemented by the application and bound once it is ready.
type Controller interface {
	ToggleTone() error
	SetCarrier(hz float64)
	SetBeat(hz float64)
	SetVolume(v float64)
	ApplyPreset(name string) error
	Presets() []tone.Preset
	Controls() tone.Controls
	Tone() tone.Snapshot
	Timer(v pomodoro.Variant) Timer
}

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	scope   *ScopeWidget
	onReady func()
	ctrl    Controller

	done     chan struct{}
	doneOnce sync.Once

	// Widgets below are only touched on the fyne goroutine.
	updating   bool
	toneButton *widget.Button
	carrier    *widget.Slider
	beat       *widget.Slider
	volume     *widget.Slider
	readout    *widget.Label
	device     *widget.Label
	deviceText string
	timers     [2]*timerView
}

type timerView struct {
	clock    *widget.Label
	progress *widget.ProgressBar
	state    *widget.Label
	toggle   *widget.Button
	volume   *widget.Slider
}

func NewApp(onReady func()) *App {
	return &App{
		onReady: onReady,
		scope:   NewScopeWidget(),
		done:    make(chan struct{}),
	}
}

// Scope is the engine's drawing surface.
func (a *App) Scope() *ScopeWidget {
	return a.scope
}

// Done is closed when the window is closed.
func (a *App) Done() <-chan struct{} {
	return a.done
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.hum.gui")
	a.fyneApp.Settings().SetTheme(newScopeTheme())
	a.fyneApp.Lifecycle().SetOnStopped(func() {
		a.doneOnce.Do(func() { close(a.done) })
	})

	if desk, ok := a.fyneApp.(desktop.App); ok {
		menu := fyne.NewMenu("hum",
			fyne.NewMenuItem("Start/stop tone", func() {
				if a.ctrl != nil {
					a.toggleTone()
				}
			}),
			fyne.NewMenuItem("Show", func() {
				a.window.Show()
			}),
		)
		desk.SetSystemTrayMenu(menu)
		if icon := trayIcon(); icon != nil {
			desk.SetSystemTrayIcon(icon)
			a.fyneApp.SetIcon(icon)
		}
	}

	a.window = a.fyneApp.NewWindow("hum")
	a.window.SetMaster()
	a.window.SetContent(container.NewCenter(widget.NewLabel("Starting...")))
	a.window.Resize(fyne.NewSize(560, 420))
	a.window.Show()

	go a.onReady()

	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		fyne.Do(a.fyneApp.Quit)
	}
}

// Bind builds the widgets for ctrl and swaps them into the window.
func (a *App) Bind(ctrl Controller) {
	fyne.DoAndWait(func() {
		a.ctrl = ctrl
		tabs := container.NewAppTabs(
			container.NewTabItem("Binaural", a.buildTone()),
			container.NewTabItem("Pomodoro", a.buildTimer(pomodoro.Classic)),
			container.NewTabItem("Site pomodoro", a.buildTimer(pomodoro.Site)),
		)
		a.window.SetContent(tabs)
		a.refreshTone(ctrl.Tone())
		a.refreshTimer(ctrl.Timer(pomodoro.Classic).Snapshot())
		a.refreshTimer(ctrl.Timer(pomodoro.Site).Snapshot())
	})
}

func (a *App) toggleTone() {
	if err := a.ctrl.ToggleTone(); err != nil {
		dialog.ShowError(err, a.window)
	}
}

func (a *App) buildTone() fyne.CanvasObject {
	c := a.ctrl.Controls()
	a.toneButton = widget.NewButton("Start", a.toggleTone)
	a.toneButton.Importance = widget.HighImportance

	a.carrier = widget.NewSlider(c.Carrier.Min, c.Carrier.Max)
	a.carrier.Step = c.Carrier.Step
	a.carrier.OnChanged = func(v float64) {
		if !a.updating {
			a.ctrl.SetCarrier(v)
		}
	}
	a.beat = widget.NewSlider(c.Beat.Min, c.Beat.Max)
	a.beat.Step = c.Beat.Step
	a.beat.OnChanged = func(v float64) {
		if !a.updating {
			a.ctrl.SetBeat(v)
		}
	}
	a.volume = widget.NewSlider(c.Volume.Min, c.Volume.Max)
	a.volume.Step = c.Volume.Step
	a.volume.OnChanged = func(v float64) {
		if !a.updating {
			a.ctrl.SetVolume(v)
		}
	}

	names := make([]string, 0, len(a.ctrl.Presets()))
	for _, p := range a.ctrl.Presets() {
		names = append(names, p.Name)
	}
	presets := widget.NewSelect(names, func(name string) {
		if err := a.ctrl.ApplyPreset(name); err != nil {
			dialog.ShowError(err, a.window)
		}
	})
	presets.PlaceHolder = "Preset"

	a.readout = widget.NewLabel("")
	a.device = widget.NewLabel(a.deviceText)
	a.device.Importance = widget.LowImportance

	form := widget.NewForm(
		widget.NewFormItem("Carrier", a.carrier),
		widget.NewFormItem("Beat", a.beat),
		widget.NewFormItem("Volume", a.volume),
	)
	return container.NewVBox(
		container.NewHBox(a.toneButton, presets),
		form,
		a.readout,
		a.scope,
		a.device,
	)
}

func (a *App) buildTimer(v pomodoro.Variant) fyne.CanvasObject {
	t := a.ctrl.Timer(v)
	tv := &timerView{
		clock:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true}),
		progress: widget.NewProgressBar(),
		state:    widget.NewLabel(""),
	}
	tv.clock.SizeName = theme.SizeNameHeadingText
	tv.progress.TextFormatter = func() string { return "" }
	a.timers[v] = tv

	var buttons *fyne.Container
	if v == pomodoro.Classic {
		buttons = container.NewHBox(
			widget.NewButton("Start", t.Start),
			widget.NewButton("Stop", t.Stop),
			widget.NewButton("Reset", t.Reset),
		)
		return container.NewVBox(tv.clock, tv.progress, tv.state, container.NewCenter(buttons))
	}

	report := func(err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
		}
	}
	tv.toggle = widget.NewButton("Start", t.Toggle)
	buttons = container.NewHBox(
		widget.NewButton("-5 min", func() { report(t.Adjust(-5)) }),
		tv.toggle,
		widget.NewButton("+5 min", func() { report(t.Adjust(5)) }),
		widget.NewButton("Reset", t.Reset),
	)
	tv.volume = widget.NewSlider(0, 100)
	tv.volume.Step = 5
	tv.volume.OnChanged = func(p float64) {
		if !a.updating {
			report(t.SetVolume(int(p)))
		}
	}
	return container.NewVBox(
		tv.clock, tv.progress, tv.state,
		container.NewCenter(buttons),
		widget.NewForm(widget.NewFormItem("Track volume", tv.volume)),
	)
}

func (a *App) refreshTone(s tone.Snapshot) {
	if a.toneButton == nil {
		return
	}
	a.updating = true
	defer func() { a.updating = false }()
	if s.Running {
		a.toneButton.SetText("Stop")
	} else {
		a.toneButton.SetText("Start")
	}
	a.carrier.SetValue(s.CarrierHz)
	a.beat.SetValue(s.BeatHz)
	a.volume.SetValue(s.Volume)
	a.readout.SetText(fmt.Sprintf("carrier %g Hz   beat %g Hz   L %g Hz / R %g Hz   volume %d%%",
		s.CarrierHz, s.BeatHz, s.LeftHz, s.RightHz, int(s.Volume*100+0.5)))
}

func (a *App) refreshTimer(s pomodoro.Snapshot) {
	tv := a.timers[s.Variant]
	if tv == nil {
		return
	}
	a.updating = true
	defer func() { a.updating = false }()
	tv.clock.SetText(pomodoro.Format(s.Remaining))
	if s.Duration > 0 {
		tv.progress.SetValue(1 - float64(s.Remaining)/float64(s.Duration))
	}
	if s.Running {
		tv.state.SetText("running")
	} else {
		tv.state.SetText("idle")
	}
	if tv.toggle != nil {
		if s.Running {
			tv.toggle.SetText("Pause")
		} else {
			tv.toggle.SetText("Start")
		}
	}
	if tv.volume != nil {
		tv.volume.SetValue(float64(s.TrackVolume))
	}
}

// EventSink implementation. Events arrive from engine and ticker goroutines,
// so every widget update goes through fyne.Do.
func (a *App) ToneChanged(s tone.Snapshot) {
	fyne.Do(func() { a.refreshTone(s) })
}

func (a *App) TimerChanged(s pomodoro.Snapshot) {
	fyne.Do(func() { a.refreshTimer(s) })
}

func (a *App) TimerFinished(s pomodoro.Snapshot) {
	fyne.Do(func() {
		a.refreshTimer(s)
		a.window.Show()
		a.window.RequestFocus()
		dialog.ShowInformation(s.Name, "Time's up!", a.window)
	})
}

func (a *App) Notice(text string) {
	fyne.Do(func() {
		dialog.ShowInformation("hum", text, a.window)
	})
}

func (a *App) DeviceLine(text string) {
	fyne.Do(func() {
		a.deviceText = text
		if a.device != nil {
			a.device.SetText(text)
		}
	})
}
