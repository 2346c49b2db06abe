package main

import (
	"hum/pomodoro"
	"hum/tone"
)

// EventSink abstracts the display layer so the Bubble Tea TUI, the fyne
// window and the headless test driver receive the same engine and timer
// events.
type EventSink interface {
	ToneChanged(s tone.Snapshot)
	TimerChanged(s pomodoro.Snapshot)
	TimerFinished(s pomodoro.Snapshot)
	Notice(text string)
	DeviceLine(text string)
}

type nopSink struct{}

func (nopSink) ToneChanged(tone.Snapshot)       {}
func (nopSink) TimerChanged(pomodoro.Snapshot)  {}
func (nopSink) TimerFinished(pomodoro.Snapshot) {}
func (nopSink) Notice(string)                   {}
func (nopSink) DeviceLine(string)               {}
