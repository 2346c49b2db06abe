package main

import (
	"fmt"
	"time"

	"hum/audio"
	"hum/beep"
	"hum/config"
	"hum/hotkey"
	"hum/log"
	"hum/pomodoro"
	"hum/tone"
	"hum/track"
)

type appOptions struct {
	cfg        config.Config
	newContext tone.ContextFactory
	device     *audio.DeviceInfo
	surface    tone.Surface
	clock      pomodoro.Clock
	sink       EventSink

	// siteClock drives the site timer when set; otherwise both timers share clock.
	siteClock pomodoro.Clock

	// trackContext opens the companion track's output; newContext when nil.
	trackContext track.ContextFactory

	// frameInterval overrides the visualization period; zero keeps the default.
	frameInterval time.Duration
}

// app wires one tone engine and the two timers to a display sink. Every
// front-end drives the same methods.
type app struct {
	engine  *tone.Engine
	classic *pomodoro.Timer
	site    *pomodoro.Timer
	track   *track.Track
	presets []tone.Preset
	sink    EventSink

	preset int // index into presets of the last applied preset, -1 for none
}

func newApp(o appOptions) *app {
	if o.sink == nil {
		o.sink = nopSink{}
	}
	if o.siteClock == nil {
		o.siteClock = o.clock
	}
	if o.trackContext == nil {
		o.trackContext = track.ContextFactory(o.newContext)
	}
	a := &app{
		presets: o.cfg.Presets,
		sink:    o.sink,
		preset:  -1,
	}
	a.engine = tone.NewEngine(tone.Options{
		NewContext:    o.newContext,
		Device:        o.device,
		Controls:      o.cfg.Controls,
		Settings:      o.cfg.Settings,
		Surface:       o.surface,
		FrameInterval: o.frameInterval,
	})

	var companion pomodoro.Track
	if o.cfg.Track != "" {
		t, err := track.Load(o.cfg.Track, o.trackContext, o.device)
		if err != nil {
			log.Warnf("companion track unavailable: %v", err)
		} else {
			a.track = t
			companion = t
		}
	}

	a.classic = pomodoro.New(pomodoro.Options{
		Name:     "Pomodoro",
		Variant:  pomodoro.Classic,
		Duration: o.cfg.TimerSeconds(),
		Clock:    o.clock,
		OnChange: a.sink.TimerChanged,
		OnFinish: a.timerFinished,
	})
	a.site = pomodoro.New(pomodoro.Options{
		Name:        "Site pomodoro",
		Variant:     pomodoro.Site,
		Duration:    o.cfg.TimerSeconds(),
		Clock:       o.siteClock,
		Track:       companion,
		TrackVolume: o.cfg.TrackVolume,
		OnChange:    a.sink.TimerChanged,
		OnFinish:    a.timerFinished,
	})
	return a
}

func (a *app) timerFinished(s pomodoro.Snapshot) {
	beep.PlayFinished()
	a.sink.TimerFinished(s)
}

func (a *app) timer(v pomodoro.Variant) *pomodoro.Timer {
	if v == pomodoro.Site {
		return a.site
	}
	return a.classic
}

func (a *app) toneChanged() {
	a.sink.ToneChanged(a.engine.Snapshot())
}

func (a *app) startTone() error {
	err := a.engine.Start()
	a.toneChanged()
	if err != nil {
		log.Errorf("tone start: %v", err)
		return fmt.Errorf("could not start tone: %w", err)
	}
	return nil
}

func (a *app) stopTone() {
	a.engine.Stop()
	a.toneChanged()
}

func (a *app) toggleTone() error {
	if a.engine.Running() {
		a.stopTone()
		return nil
	}
	return a.startTone()
}

func (a *app) nudgeCarrier(steps int) {
	a.engine.NudgeCarrier(steps)
	a.toneChanged()
}

func (a *app) nudgeBeat(steps int) {
	a.engine.NudgeBeat(steps)
	a.toneChanged()
}

func (a *app) nudgeVolume(steps int) {
	a.engine.NudgeVolume(steps)
	a.toneChanged()
}

func (a *app) setCarrier(hz float64) {
	a.engine.SetCarrier(hz)
	a.toneChanged()
}

func (a *app) setBeat(hz float64) {
	a.engine.SetBeat(hz)
	a.toneChanged()
}

func (a *app) setVolume(v float64) {
	a.engine.SetVolume(v)
	a.toneChanged()
}

func (a *app) applyPreset(name string) error {
	p, err := tone.FindPreset(a.presets, name)
	if err != nil {
		return fmt.Errorf("preset %q: %w", name, err)
	}
	for i := range a.presets {
		if a.presets[i] == p {
			a.preset = i
			break
		}
	}
	a.engine.ApplyPreset(p)
	a.toneChanged()
	return nil
}

// cyclePreset applies the next (dir > 0) or previous preset, wrapping around.
func (a *app) cyclePreset(dir int) {
	n := len(a.presets)
	if n == 0 {
		return
	}
	i := a.preset
	switch {
	case i < 0 && dir < 0:
		i = n - 1
	case i < 0:
		i = 0
	default:
		i = ((i+dir)%n + n) % n
	}
	a.preset = i
	a.engine.ApplyPreset(a.presets[i])
	a.toneChanged()
}

func (a *app) presetName() string {
	if a.preset < 0 {
		return ""
	}
	return a.presets[a.preset].Name
}

// presetSnippet renders the current carrier and beat as a [[preset]] table.
func (a *app) presetSnippet() (string, error) {
	s := a.engine.Snapshot()
	name := a.presetName()
	if name == "" {
		name = "custom"
	}
	return config.PresetTOML(tone.Preset{Name: name, CarrierHz: s.CarrierHz, BeatHz: s.BeatHz})
}

// watchHotkey maps global gestures onto the app: a tap toggles the tone, a
// hold toggles the site timer. It returns when done is closed.
func (a *app) watchHotkey(g *hotkey.Gestures, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-g.Tap():
			wasRunning := a.engine.Running()
			if err := a.toggleTone(); err != nil {
				a.sink.Notice(err.Error())
				continue
			}
			if wasRunning {
				beep.PlayStop()
			} else {
				beep.PlayStart()
			}
		case <-g.Hold():
			a.site.Toggle()
			if a.site.Snapshot().Running {
				beep.PlayStart()
			} else {
				beep.PlayStop()
			}
		}
	}
}

func (a *app) close() {
	a.classic.Close()
	a.site.Close()
	if a.track != nil {
		a.track.Close()
	}
	a.engine.Close()
}
