package layout

import "github.com/redsalamander/folderview/models"

// ScheduleIdleBatch resets the idle pre-creation cursor to just past the
// currently visible range and reports whether any item still lacks a
// label layout. The caller (the pane's UI-thread timer) starts a ticker
// only when this returns true.
func (e *Engine) ScheduleIdleBatch(items []*models.Item) bool {
	if len(items) == 0 {
		e.idleDone = true
		return false
	}

	_, end := e.VisibleItemRange(items)
	e.idleNextIndex = end

	for i := e.idleNextIndex; i < len(items); i++ {
		if items[i].LabelLayout == nil && items[i].DisplayName != "" {
			e.idleDone = false
			return true
		}
	}
	start, _ := e.VisibleItemRange(items)
	for i := 0; i < start; i++ {
		if items[i].LabelLayout == nil && items[i].DisplayName != "" {
			e.idleNextIndex = i
			e.idleDone = false
			return true
		}
	}

	e.idleDone = true
	return false
}

// ProcessIdleBatch shapes layouts for up to idleBatchSize items outside
// the visible window, wrapping from the end of the list back to its start
// once. It returns false once every item has a layout, at which point the
// caller should stop its idle ticker.
func (e *Engine) ProcessIdleBatch(items []*models.Item) bool {
	if e.shaper == nil || len(items) == 0 || e.idleDone {
		return false
	}

	labelWidth := max0(e.tileWidthDip-labelHorizontalPadDip*2-e.iconSizeDip-iconTextGapDip)
	constrainedWidth := maxf(labelWidth, 1)
	constrainedHeight := maxf(e.labelHeightDip, 1)
	constrainedDetailsHeight := maxf(e.detailsLineHeightDip, 1)
	constrainedMetadataHeight := maxf(e.metadataLineHeightDip, 1)

	startIdx := e.idleNextIndex
	processed := 0
	for processed < idleBatchSize && e.idleNextIndex < len(items) {
		it := items[e.idleNextIndex]
		e.idleNextIndex++

		if it.DisplayName == "" || it.LabelLayout != nil {
			continue
		}
		e.shapeItem(it, constrainedWidth, constrainedHeight, constrainedDetailsHeight, constrainedMetadataHeight)
		processed++
	}

	if e.idleNextIndex >= len(items) {
		visStart, _ := e.VisibleItemRange(items)
		if startIdx > 0 && visStart > 0 {
			e.idleNextIndex = 0
		} else {
			e.idleDone = true
			return false
		}
	}

	return true
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func max0(a float64) float64 { return maxf(a, 0) }

// ReleaseDistantState drops layouts, icon bitmaps, and cached secondary
// text for items far from the visible range once the list is large
// enough for that to matter, bounding memory on very large directories.
// This is pure cache behavior: every dropped field is reconstructible on
// demand, so it never changes correctness.
func (e *Engine) ReleaseDistantState(items []*models.Item) (released int) {
	if len(items) < sparseItemThreshold {
		return 0
	}

	visStart, visEnd := e.VisibleItemRange(items)

	keepStart := visStart - keepAroundVisible
	if keepStart < 0 {
		keepStart = 0
	}
	keepEnd := visEnd + keepAroundVisible
	if keepEnd > len(items) {
		keepEnd = len(items)
	}

	releaseIfDistant := func(it *models.Item) {
		if it.LabelLayout != nil || it.DetailsLayout != nil || it.MetadataLayout != nil || it.Icon != nil {
			it.ReleaseDistantState()
			it.DetailsText = ""
			released++
		}
	}

	for i := 0; i < keepStart; i++ {
		releaseIfDistant(items[i])
	}
	for i := keepEnd; i < len(items); i++ {
		releaseIfDistant(items[i])
	}

	return released
}
