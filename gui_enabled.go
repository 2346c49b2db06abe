//go:build gui

package main

import (
	"runtime"

	"hum/gui"
	"hum/pomodoro"
	"hum/tone"
)

var guiApp *gui.App

func initGUI() {
	guiMode = true

	// Lock this goroutine to OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(func() {
		run()
		guiApp.Quit()
	})
	sink = guiApp
	if err := gui.Run(guiApp); err != nil {
		panic(err)
	}
}

func guiSurface() tone.Surface { return guiApp.Scope() }
func guiAttach(a *app)         { guiApp.Bind(guiController{a}) }
func guiDone() <-chan struct{} { return guiApp.Done() }
func guiQuit()                 { guiApp.Quit() }

// guiController exposes the app to the window.
type guiController struct{ a *app }

func (c guiController) ToggleTone() error                  { return c.a.toggleTone() }
func (c guiController) SetCarrier(hz float64)              { c.a.setCarrier(hz) }
func (c guiController) SetBeat(hz float64)                 { c.a.setBeat(hz) }
func (c guiController) SetVolume(v float64)                { c.a.setVolume(v) }
func (c guiController) ApplyPreset(name string) error      { return c.a.applyPreset(name) }
func (c guiController) Presets() []tone.Preset             { return c.a.presets }
func (c guiController) Controls() tone.Controls            { return c.a.engine.Controls() }
func (c guiController) Tone() tone.Snapshot                { return c.a.engine.Snapshot() }
func (c guiController) Timer(v pomodoro.Variant) gui.Timer { return c.a.timer(v) }
