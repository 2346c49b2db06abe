//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// evdev codes from linux/input-event-codes.h.
const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0
	keyLCtrl   = 29
	keyRCtrl   = 97
	keyLShift  = 42
	keyRShift  = 54
)

var keyCodes = map[string]uint16{
	"space": 57,
	"1": 2, "2": 3, "3": 4, "4": 5, "5": 6, "6": 7, "7": 8, "8": 9, "9": 10, "0": 11,
	"q": 16, "w": 17, "e": 18, "r": 19, "t": 20, "y": 21, "u": 22, "i": 23, "o": 24, "p": 25,
	"a": 30, "s": 31, "d": 32, "f": 33, "g": 34, "h": 35, "j": 36, "k": 37, "l": 38,
	"z": 44, "x": 45, "c": 46, "v": 47, "b": 48, "n": 49, "m": 50,
}

const inputEventSize = 24

type linuxHotkey struct {
	combo   Combo
	code    uint16
	keydown chan struct{}
	keyup   chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

func New(c Combo) Hotkey {
	return &linuxHotkey{
		combo:   c,
		code:    keyCodes[c.Key],
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
	}
}

func (h *linuxHotkey) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	h.stop = make(chan struct{})
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f)
	}
	if len(h.files) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}
	return nil
}

// comboState tracks one keyboard's modifiers and whether the combo key is
// down as part of the combo.
type comboState struct {
	ctrl, shift, active bool
}

// feed applies one key event and reports a combo press or release.
func (s *comboState) feed(c Combo, code uint16, comboKey uint16, value int32) (down, up bool) {
	pressed := value == keyPress
	released := value == keyRelease
	switch code {
	case keyLCtrl, keyRCtrl:
		s.ctrl = pressed || (!released && s.ctrl)
	case keyLShift, keyRShift:
		s.shift = pressed || (!released && s.shift)
	case comboKey:
		if pressed && !s.active && (!c.Ctrl || s.ctrl) && (!c.Shift || s.shift) {
			s.active = true
			return true, false
		}
		if released && s.active {
			s.active = false
			return false, true
		}
	}
	return false, false
}

func (h *linuxHotkey) readEvents(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var st comboState
	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			if binary.LittleEndian.Uint16(buf[i+16:]) != evKey {
				continue
			}
			code := binary.LittleEndian.Uint16(buf[i+18:])
			value := int32(binary.LittleEndian.Uint32(buf[i+20:]))
			down, up := st.feed(h.combo, code, h.code, value)
			if down {
				signal(h.keydown)
			}
			if up {
				signal(h.keyup)
			}
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (h *linuxHotkey) Unregister() {
	h.once.Do(func() {
		if h.stop != nil {
			close(h.stop)
		}
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *linuxHotkey) Keydown() <-chan struct{} {
	return h.keydown
}

func (h *linuxHotkey) Keyup() <-chan struct{} {
	return h.keyup
}

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}
	var keyboards []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "event") && isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

// isKeyboard guesses from the key capability bitmap; keyboards advertise
// far more keys than mice or power buttons.
func isKeyboard(eventName string) bool {
	capsPath := filepath.Join("/sys/class/input", eventName, "device", "capabilities", "key")
	data, err := os.ReadFile(capsPath)
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}

func Diagnose() (string, error) {
	keyboards, err := findKeyboards()
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}
	for _, path := range keyboards {
		if f, err := os.Open(path); err == nil {
			f.Close()
			return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), path), nil
		}
	}
	return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
}
