//go:build gui

package gui

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	scopeWidth  = 480
	scopeHeight = 140
)

var (
	scopeBackground = color.RGBA{12, 16, 20, 255}
	scopeTrace      = color.RGBA{95, 215, 215, 255}
	scopeMidline    = color.RGBA{48, 48, 48, 255}
)

// ScopeWidget shows the analyser trace. It is the tone engine's drawing
// surface in the desktop build: Draw and Clear may be called from any
// goroutine.
type ScopeWidget struct {
	widget.BaseWidget
	mu    sync.Mutex
	frame []byte
}

func NewScopeWidget() *ScopeWidget {
	s := &ScopeWidget{}
	s.ExtendBaseWidget(s)
	return s
}

func (s *ScopeWidget) Draw(frame []byte) {
	s.mu.Lock()
	s.frame = append(s.frame[:0], frame...)
	s.mu.Unlock()
	fyne.Do(s.Refresh)
}

func (s *ScopeWidget) Clear() {
	s.mu.Lock()
	s.frame = s.frame[:0]
	s.mu.Unlock()
	fyne.Do(s.Refresh)
}

func (s *ScopeWidget) MinSize() fyne.Size {
	return fyne.NewSize(scopeWidth, scopeHeight)
}

func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &scopeRenderer{scope: s}
	r.raster = canvas.NewRaster(r.paint)
	return r
}

type scopeRenderer struct {
	scope  *ScopeWidget
	raster *canvas.Raster
}

// paint strokes the frame as a polyline across the full width, the same
// mapping the terminal canvas uses: x = i*w/n, y = v/128 * h/2.
func (r *scopeRenderer) paint(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: scopeBackground}, image.Point{}, draw.Src)

	r.scope.mu.Lock()
	frame := append([]byte(nil), r.scope.frame...)
	r.scope.mu.Unlock()

	if len(frame) == 0 || w < 2 || h < 2 {
		for x := 0; x < w; x++ {
			img.Set(x, h/2, scopeMidline)
		}
		return img
	}

	n := len(frame)
	px, py := 0, h/2
	for i, v := range frame {
		x := i * w / n
		y := int(float64(v) / 128 * float64(h) / 2)
		if y >= h {
			y = h - 1
		}
		if i > 0 {
			line(img, px, py, x, y, scopeTrace)
		}
		px, py = x, y
	}
	line(img, px, py, w-1, h/2, scopeTrace)
	return img
}

func line(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
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

func (r *scopeRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.raster.Move(fyne.NewPos(0, 0))
}

func (r *scopeRenderer) MinSize() fyne.Size {
	return r.scope.MinSize()
}

func (r *scopeRenderer) Refresh() {
	r.raster.Refresh()
}

func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster}
}

func (r *scopeRenderer) Destroy() {}
