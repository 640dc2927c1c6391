// Package layout implements the tiling/viewport math for the item grid:
// estimated text metrics, per-item sizing, column tiling, the visible-range
// query, hit testing, and the idle/distant-state housekeeping passes.
package layout

import "github.com/redsalamander/folderview/models"

// FontRole selects which of the pane's text formats a measurement or shape
// request applies to.
type FontRole int

const (
	FontLabel FontRole = iota
	FontDetails
	FontMetadata
)

// Shaper is the opaque text-measurement/shaping surface the renderer
// supplies; the layout engine never touches DirectWrite (or any other text
// stack) directly, mirroring how the pane treats GPU/OS text APIs as an
// external interface.
type Shaper interface {
	// Measure returns the average per-character width and the line height
	// for role, both in DIPs, as produced by shaping sampleText once.
	Measure(sampleText string, role FontRole) (charWidthDip, lineHeightDip float64)
	// Shape creates or reshapes a layout constrained to maxWidth/maxHeight.
	Shape(text string, maxWidth, maxHeight float64, role FontRole) *models.TextLayout
}

// sampleText is measured once per DPI change to derive per-character width
// estimates cheaply, instead of shaping every item's label up front.
const sampleText = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// estimatedMetrics caches the font-derived measurements a layout pass needs
// to estimate item sizes without shaping every label.
type estimatedMetrics struct {
	valid             bool
	charWidthDip      float64
	labelHeightDip    float64
	detailsHeightDip  float64
	metadataHeightDip float64
}

// update measures sampleText against the label and details fonts once
// (the metadata line reuses the details height); subsequent calls are
// no-ops until invalidate() is called
// (e.g. on a DPI or font change).
func (m *estimatedMetrics) update(shaper Shaper) {
	if m.valid || shaper == nil {
		return
	}

	m.charWidthDip, m.labelHeightDip = shaper.Measure(sampleText, FontLabel)
	_, m.detailsHeightDip = shaper.Measure(sampleText, FontDetails)
	m.metadataHeightDip = m.detailsHeightDip

	if m.labelHeightDip <= 0 {
		m.labelHeightDip = 16
	}
	m.valid = true
}

func (m *estimatedMetrics) invalidate() {
	m.valid = false
}
