package waveform

import (
	"strings"
	"testing"
)

func flat(n int, v byte) []byte {
	frame := make([]byte, n)
	for i := range frame {
		frame[i] = v
	}
	return frame
}

func TestNewCanvasIsBlank(t *testing.T) {
	c := New(10, 3)
	if !c.Blank() {
		t.Error("new canvas not blank")
	}
	lines := c.Lines()
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	for _, l := range lines {
		if l != strings.Repeat("⠀", 10) {
			t.Errorf("line %q not empty braille", l)
		}
	}
}

func TestDrawSilenceIsMidline(t *testing.T) {
	c := New(8, 2)
	c.Draw(flat(2048, 128))
	if c.Blank() {
		t.Fatal("canvas blank after Draw")
	}
	lines := c.Lines()
	// Height is 8 dots; the midline is dot row 4, the top row of the second cell row.
	if lines[0] != strings.Repeat("⠀", 8) {
		t.Errorf("top row = %q, want empty", lines[0])
	}
	if lines[1] != strings.Repeat("⠉", 8) {
		t.Errorf("bottom row = %q, want top dots set", lines[1])
	}
}

func TestDrawSpansFullWidth(t *testing.T) {
	c := New(20, 4)
	frame := make([]byte, 2048)
	for i := range frame {
		if (i/64)%2 == 0 {
			frame[i] = 0
		} else {
			frame[i] = 255
		}
	}
	c.Draw(frame)

	lines := c.Lines()
	for col := 0; col < 20; col++ {
		empty := true
		for _, line := range lines {
			if []rune(line)[col] != '⠀' {
				empty = false
			}
		}
		if empty {
			t.Errorf("column %d empty", col)
		}
	}
}

func TestClearAfterDraw(t *testing.T) {
	c := New(5, 2)
	c.Draw(flat(100, 200))
	c.Clear()
	if !c.Blank() {
		t.Error("not blank after Clear")
	}
	if strings.ContainsFunc(c.String(), func(r rune) bool { return r != '⠀' && r != '\n' }) {
		t.Errorf("dots left after Clear: %q", c.String())
	}
}

func TestResize(t *testing.T) {
	c := New(5, 2)
	c.Draw(flat(10, 0))
	c.Resize(12, 3)
	if cols, rows := c.Size(); cols != 12 || rows != 3 {
		t.Errorf("Size = %d,%d want 12,3", cols, rows)
	}
	if !c.Blank() {
		t.Error("resize kept old content")
	}
	c.Resize(0, 0)
	if cols, rows := c.Size(); cols != 1 || rows != 1 {
		t.Errorf("Size = %d,%d want 1,1", cols, rows)
	}
}
