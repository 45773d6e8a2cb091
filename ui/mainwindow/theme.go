package mainwindow

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// MapViewTheme darkens the window chrome so the map stands out.
type MapViewTheme struct{}

var _ fyne.Theme = (*MapViewTheme)(nil)

func (t *MapViewTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x4F, G: 0x8A, B: 0x3C, A: 0xFF} // Meadow green
	case theme.ColorNameBackground:
		if variant == theme.VariantDark {
			return color.NRGBA{R: 0x28, G: 0x28, B: 0x28, A: 0xFF} // Matches the canvas backdrop
		}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *MapViewTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *MapViewTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *MapViewTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNamePadding {
		return 3 // Tighter toolbar
	}
	return theme.DefaultTheme().Size(name)
}
