// Package waveform draws visualization frames onto a braille-dot terminal
// canvas. Each character cell holds a 2x4 grid of dots.
package waveform

import (
	"strings"
	"sync"
)

const brailleBase = '⠀'

// dotBits maps a dot position inside a cell, [x][y], to its braille bit.
var dotBits = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Canvas is safe for concurrent use: the visualization loop draws while the
// UI goroutine reads String.
type Canvas struct {
	mu    sync.Mutex
	cols  int
	rows  int
	cells []rune
	blank bool
}

func New(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the canvas size in character cells and blanks it.
func (c *Canvas) Resize(cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cols = max(1, cols)
	c.rows = max(1, rows)
	c.cells = make([]rune, c.cols*c.rows)
	c.clearLocked()
}

func (c *Canvas) Size() (cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cols, c.rows
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Canvas) clearLocked() {
	for i := range c.cells {
		c.cells[i] = brailleBase
	}
	c.blank = true
}

// Blank reports whether nothing has been drawn since the last Clear.
func (c *Canvas) Blank() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blank
}

// Draw replaces the canvas content with a polyline through the frame's
// samples. Samples are unsigned bytes with 128 at the vertical midline,
// spread evenly across the full width; the trace ends on the midline at the
// right edge.
func (c *Canvas) Draw(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	if len(frame) == 0 {
		return
	}
	c.blank = false

	w, h := c.cols*2, c.rows*4
	slice := float64(w) / float64(len(frame))
	px, py := -1, -1
	for i, b := range frame {
		x := int(float64(i) * slice)
		y := int(float64(b) / 128 * float64(h) / 2)
		if px < 0 {
			c.set(x, y)
		} else if x != px || y != py {
			c.line(px, py, x, y)
		}
		px, py = x, y
	}
	c.line(px, py, w-1, h/2)
}

func (c *Canvas) set(x, y int) {
	w, h := c.cols*2, c.rows*4
	x = max(0, min(w-1, x))
	y = max(0, min(h-1, y))
	c.cells[(y/4)*c.cols+x/2] |= dotBits[x%2][y%4]
}

// line strokes a segment with Bresenham's algorithm.
func (c *Canvas) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Lines returns the canvas rows, top first.
func (c *Canvas) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]string, c.rows)
	for r := range lines {
		lines[r] = string(c.cells[r*c.cols : (r+1)*c.cols])
	}
	return lines
}

func (c *Canvas) String() string {
	return strings.Join(c.Lines(), "\n")
}
