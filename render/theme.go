package render

import "math"

// Theme carries the pane's drawing colors. The background palette is
// sized with one spare slot past the active set so the acquire path can
// read index activeBgIndex+1 without wrapping.
type Theme struct {
	Background      Color
	Text            Color
	SecondaryText   Color
	Selected        Color
	SelectedText    Color
	Focused         Color
	Hover           Color
	FocusBorder     Color
	SearchPill      Color
	SearchPillText  Color
	SearchHighlight Color
	OverlayPanel    Color
	OverlayText     Color

	backgroundPalette []Color
	activeBgIndex     int

	// RainbowSelection tints selected rows by each item's stable hash
	// instead of the flat Selected color.
	RainbowSelection bool
}

// DefaultTheme returns the pane's built-in dark theme.
func DefaultTheme() Theme {
	t := Theme{
		Background:      Color{0.117, 0.117, 0.117, 1},
		Text:            Color{0.92, 0.92, 0.92, 1},
		SecondaryText:   Color{0.65, 0.65, 0.65, 1},
		Selected:        Color{0.16, 0.32, 0.55, 1},
		SelectedText:    Color{1, 1, 1, 1},
		Focused:         Color{0.22, 0.22, 0.28, 1},
		Hover:           Color{0.18, 0.18, 0.20, 1},
		FocusBorder:     Color{0.45, 0.62, 0.92, 1},
		SearchPill:      Color{0.13, 0.13, 0.16, 0.94},
		SearchPillText:  Color{0.95, 0.95, 0.95, 1},
		SearchHighlight: Color{0.95, 0.78, 0.25, 1},
		OverlayPanel:    Color{0.10, 0.10, 0.12, 0.92},
		OverlayText:     Color{0.95, 0.95, 0.95, 1},
	}
	t.setBackgroundPalette([]Color{t.Background})
	return t
}

// setBackgroundPalette installs the rotating background set with the
// spare trailing slot the acquire path expects.
func (t *Theme) setBackgroundPalette(colors []Color) {
	if len(colors) == 0 {
		colors = []Color{t.Background}
	}
	palette := make([]Color, len(colors)+1)
	copy(palette, colors)
	palette[len(colors)] = colors[0]
	t.backgroundPalette = palette
	t.activeBgIndex = 0
}

// AcquireBackgroundColor returns the palette entry one past the active
// index. The palette always carries that spare slot, so the read never
// runs past the end.
func (t *Theme) AcquireBackgroundColor() Color {
	return t.backgroundPalette[t.activeBgIndex+1]
}

// AdvanceBackground rotates the active background within the real
// (non-spare) palette entries.
func (t *Theme) AdvanceBackground() {
	n := len(t.backgroundPalette) - 1
	if n <= 0 {
		return
	}
	t.activeBgIndex = (t.activeBgIndex + 1) % n
}

// RainbowTint converts an item's stable hash into a selection tint:
// hue = hash mod 360 with fixed saturation/value, so identical names get
// identical colors across runs.
func RainbowTint(stableHash32 uint32) Color {
	return hsv(float64(stableHash32%360), 0.45, 0.42)
}

// hsv converts HSV (h in degrees) to an opaque Color.
func hsv(h, s, v float64) Color {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return Color{r + m, g + m, b + m, 1}
}
