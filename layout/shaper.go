package layout

import "github.com/redsalamander/folderview/models"

// FixedShaper is a metrics-only Shaper for headless hosts: every
// character is CharWidthDip wide and every line LineHeightDip tall. It
// produces real TextLayout objects so the lazy-shaping and distant-release
// machinery behaves identically with or without a text engine.
type FixedShaper struct {
	CharWidthDip  float64
	LineHeightDip float64
}

func (s FixedShaper) Measure(sampleText string, role FontRole) (float64, float64) {
	return s.CharWidthDip, s.LineHeightDip
}

func (s FixedShaper) Shape(text string, maxWidth, maxHeight float64, role FontRole) *models.TextLayout {
	width := float64(len(text)) * s.CharWidthDip
	if width > maxWidth {
		width = maxWidth
	}
	return &models.TextLayout{
		Text:      text,
		WidthDip:  width,
		HeightDip: s.LineHeightDip,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
	}
}

var _ Shaper = FixedShaper{}
