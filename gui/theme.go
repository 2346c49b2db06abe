//go:build gui

package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// scopeTheme is the default dark theme tinted with the trace color.
type scopeTheme struct {
	base fyne.Theme
}

func newScopeTheme() fyne.Theme {
	return &scopeTheme{base: theme.DefaultTheme()}
}

var themeColors = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:      scopeBackground,
	theme.ColorNameForeground:      color.RGBA{200, 200, 200, 255},
	theme.ColorNamePrimary:         scopeTrace,
	theme.ColorNameFocus:           scopeTrace,
	theme.ColorNameSuccess:         color.RGBA{95, 215, 135, 255},
	theme.ColorNameInputBackground: color.RGBA{28, 34, 40, 255},
}

func (t *scopeTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if c, ok := themeColors[name]; ok {
		return c
	}
	return t.base.Color(name, theme.VariantDark)
}

func (t *scopeTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *scopeTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *scopeTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameHeadingText:
		return 48 // countdown readouts
	case theme.SizeNamePadding:
		return 6
	}
	return t.base.Size(name)
}
