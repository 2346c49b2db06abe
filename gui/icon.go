//go:build gui

package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"fyne.io/fyne/v2"
)

// trayIcon draws the 22px tray icon: two offset sine strokes, one per ear.
func trayIcon() fyne.Resource {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	left := color.RGBA{95, 215, 215, 255}
	right := color.RGBA{175, 135, 255, 255}
	for x := 0; x < size; x++ {
		t := float64(x) / size * 2 * math.Pi
		yl := int(math.Round(float64(size)/2 - 1 + math.Sin(t)*6))
		yr := int(math.Round(float64(size)/2 + 1 + math.Sin(t*1.25)*6))
		img.Set(x, yl, left)
		img.Set(x, yl+1, left)
		img.Set(x, yr, right)
		img.Set(x, yr+1, right)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return fyne.NewStaticResource("hum.png", buf.Bytes())
}
