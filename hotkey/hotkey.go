// Package hotkey listens for a global key combination while the terminal
// is not focused.
package hotkey

import (
	"fmt"
	"strings"
)

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

const DefaultCombo = "ctrl+shift+space"

// Combo is one or two modifiers plus a key: space, a letter or a digit.
type Combo struct {
	Ctrl  bool
	Shift bool
	Key   string
}

// ParseCombo reads forms like "ctrl+shift+space" or "ctrl+b".
func ParseCombo(s string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i < len(parts)-1 {
			switch p {
			case "ctrl", "control":
				c.Ctrl = true
			case "shift":
				c.Shift = true
			default:
				return Combo{}, fmt.Errorf("hotkey %q: unknown modifier %q", s, p)
			}
			continue
		}
		if !validKey(p) {
			return Combo{}, fmt.Errorf("hotkey %q: unsupported key %q", s, p)
		}
		c.Key = p
	}
	if !c.Ctrl && !c.Shift {
		return Combo{}, fmt.Errorf("hotkey %q: needs ctrl or shift", s)
	}
	return c, nil
}

func validKey(k string) bool {
	if k == "space" {
		return true
	}
	return len(k) == 1 && (k[0] >= 'a' && k[0] <= 'z' || k[0] >= '0' && k[0] <= '9')
}

func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	return strings.Join(append(parts, c.Key), "+")
}
