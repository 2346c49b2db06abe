//go:build linux

package hotkey

import "testing"

func TestComboStateDefault(t *testing.T) {
	c, _ := ParseCombo(DefaultCombo)
	space := keyCodes["space"]
	var st comboState

	if down, _ := st.feed(c, space, space, keyPress); down {
		t.Fatal("space alone triggered the combo")
	}
	st.feed(c, space, space, keyRelease)

	st.feed(c, keyLCtrl, space, keyPress)
	if down, _ := st.feed(c, space, space, keyPress); down {
		t.Fatal("ctrl+space triggered ctrl+shift+space")
	}
	st.feed(c, space, space, keyRelease)

	st.feed(c, keyRShift, space, keyPress)
	if down, _ := st.feed(c, space, space, keyPress); !down {
		t.Fatal("ctrl+shift+space not detected")
	}
	// Autorepeat (value 2) is not a second press.
	if down, up := st.feed(c, space, space, 2); down || up {
		t.Error("autorepeat reported as press or release")
	}
	if _, up := st.feed(c, space, space, keyRelease); !up {
		t.Error("release not reported")
	}
}

func TestComboStateSingleModifier(t *testing.T) {
	c, _ := ParseCombo("ctrl+b")
	b := keyCodes["b"]
	var st comboState
	st.feed(c, keyRCtrl, b, keyPress)
	if down, _ := st.feed(c, b, b, keyPress); !down {
		t.Fatal("ctrl+b not detected")
	}
	st.feed(c, keyRCtrl, b, keyRelease)
	if _, up := st.feed(c, b, b, keyRelease); !up {
		t.Error("release after modifier release not reported")
	}
}

func TestEveryValidKeyHasCode(t *testing.T) {
	for _, k := range []string{"space", "a", "m", "z", "0", "9"} {
		if _, ok := keyCodes[k]; !ok {
			t.Errorf("no evdev code for %q", k)
		}
	}
}
