//go:build !linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"
)

var keys = map[string]hotkey.Key{
	"space": hotkey.KeySpace,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD, "e": hotkey.KeyE,
	"f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH, "i": hotkey.KeyI, "j": hotkey.KeyJ,
	"k": hotkey.KeyK, "l": hotkey.KeyL, "m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO,
	"p": hotkey.KeyP, "q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX, "y": hotkey.KeyY,
	"z": hotkey.KeyZ,
}

type xHotkey struct {
	combo   Combo
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
	stop    chan struct{}
}

func New(c Combo) Hotkey {
	var mods []hotkey.Modifier
	if c.Ctrl {
		mods = append(mods, hotkey.ModCtrl)
	}
	if c.Shift {
		mods = append(mods, hotkey.ModShift)
	}
	return &xHotkey{
		combo:   c,
		hk:      hotkey.New(mods, keys[c.Key]),
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return fmt.Errorf("registering %s: %w", h.combo, err)
	}
	h.stop = make(chan struct{})
	go forward(h.hk.Keydown(), h.keydown, h.stop)
	go forward(h.hk.Keyup(), h.keyup, h.stop)
	return nil
}

func forward(src <-chan hotkey.Event, dst chan<- struct{}, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-src:
			select {
			case dst <- struct{}{}:
			default:
			}
		}
	}
}

func (h *xHotkey) Unregister() {
	if h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
	h.hk.Unregister()
}

func (h *xHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *xHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func Diagnose() (string, error) {
	return "global hotkey support available", nil
}
