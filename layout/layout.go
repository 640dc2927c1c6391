package layout

import (
	"math"

	"github.com/redsalamander/folderview/config"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/utils"
)

const (
	iconTextGapDip         = 6.0
	labelHorizontalPadDip  = 4.0
	labelVerticalPadDip    = 3.0
	detailsGapDip          = 2.0
	columnSpacingDip       = 8.0
	rowSpacingDip          = 2.0
	secondaryLineShrink    = 0.85
	maxSizeSlotChars       = 12

	leadingBufferItems  = 64 // buffer biased toward the leading scroll edge
	trailingBufferItems = 10

	idleBatchSize  = 16
	idleIntervalMs = 5

	sparseItemThreshold = 10000 // distant-state release threshold
	keepAroundVisible   = 2000
)

// DetailsTextFunc renders an item's secondary text line; a nil func falls
// back to defaultDetailsText.
type DetailsTextFunc func(it *models.Item, sizeSlotChars int) string

// MetadataTextFunc renders an item's tertiary text line (ExtraDetailed
// mode only).
type MetadataTextFunc func(it *models.Item) string

// Engine owns the pane's tiling state: estimated metrics, column geometry,
// scroll offsets, and the lazily-created per-item text layouts. One Engine
// per pane.
type Engine struct {
	shaper Shaper
	cfg    *config.PaneDisplayConfig

	detailsTextFn  DetailsTextFunc
	metadataTextFn MetadataTextFunc

	metrics estimatedMetrics

	iconSizeDip float64
	displayMode models.DisplayMode

	clientWidthDip  float64
	clientHeightDip float64

	tileWidthDip          float64
	tileHeightDip         float64
	labelHeightDip        float64
	detailsLineHeightDip  float64
	metadataLineHeightDip float64

	columns       int
	rowsPerColumn int
	columnCounts  []int
	prefixSums    []int

	contentWidth  float64
	contentHeight float64

	horizontalOffset     float64
	scrollOffset         float64
	lastHorizontalOffset float64
	lastScrollOffset     float64
	scrollDirectionX     int
	scrollDirectionY     int

	detailsSizeSlotChars int

	itemMetricsCached bool
	cachedMaxLabel    float64
	cachedMaxDetails  float64
	cachedMaxMetadata float64

	idleNextIndex int
	idleDone      bool
}

// NewEngine creates a layout engine for one pane. shaper may be nil in
// headless/test contexts; in that case estimated metrics stay zero and
// text layouts are never shaped, but tiling math still runs off the
// configured column/row size.
func NewEngine(shaper Shaper, cfg *config.PaneDisplayConfig, iconSizeDip float64) *Engine {
	return &Engine{
		shaper:      shaper,
		cfg:         cfg,
		iconSizeDip: iconSizeDip,
		columns:     1,
		idleDone:    true,
	}
}

// SetTextProviders overrides the default details/metadata text builders.
func (e *Engine) SetTextProviders(details DetailsTextFunc, metadata MetadataTextFunc) {
	e.detailsTextFn = details
	e.metadataTextFn = metadata
}

// SetDisplayMode changes how many secondary text lines a tile reserves.
// A mode change invalidates cached item metrics so the next Compute
// recomputes tile size.
func (e *Engine) SetDisplayMode(mode models.DisplayMode) {
	if e.displayMode == mode {
		return
	}
	e.displayMode = mode
	e.itemMetricsCached = false
}

// SetClientSize updates the viewport size in DIPs.
func (e *Engine) SetClientSize(widthDip, heightDip float64) {
	e.clientWidthDip = math.Max(0, widthDip)
	e.clientHeightDip = math.Max(0, heightDip)
}

// InvalidateMetrics forces the next Compute to re-measure sample text and
// re-estimate every item's size, used after a DPI or font change.
func (e *Engine) InvalidateMetrics() {
	e.metrics.invalidate()
	e.itemMetricsCached = false
}

// InvalidateItemMetrics drops the cached per-pass width maxima without
// re-measuring fonts, used when the item list itself is replaced.
func (e *Engine) InvalidateItemMetrics() {
	e.itemMetricsCached = false
}

// Compute runs a full layout pass over items: estimating sizes, computing
// tile/column geometry, and shaping the visible window's text layouts.
func (e *Engine) Compute(items []*models.Item) {
	e.metrics.update(e.shaper)
	e.detailsLineHeightDip = e.metrics.detailsHeightDip * secondaryLineShrink
	e.metadataLineHeightDip = e.metrics.metadataHeightDip * secondaryLineShrink

	if len(items) == 0 || e.clientWidthDip <= 0 {
		e.columns = 1
		e.rowsPerColumn = 0
		e.columnCounts = nil
		e.prefixSums = nil
		e.contentHeight = math.Max(e.clientHeightDip, 0)
		e.contentWidth = math.Max(e.clientWidthDip, 0)
		e.horizontalOffset = 0
		return
	}

	maxLabel, maxDetails, maxMetadata := e.estimateItemSizes(items)

	labelHeight := e.metrics.labelHeightDip
	if labelHeight <= 0 {
		labelHeight = 16
	}

	textWidthForLayout := maxLabel
	switch e.displayMode {
	case models.Detailed:
		textWidthForLayout = math.Max(maxLabel, maxDetails)
	case models.ExtraDetailed:
		textWidthForLayout = math.Max(math.Max(maxLabel, maxDetails), maxMetadata)
	}

	minColumnWidth := e.iconSizeDip + iconTextGapDip + labelHorizontalPadDip*2
	textWidthSafety := math.Max(e.metrics.charWidthDip, 8)
	desiredColumnWidth := e.iconSizeDip + iconTextGapDip + textWidthForLayout + labelHorizontalPadDip*2 + textWidthSafety
	targetColumnWidth := math.Max(minColumnWidth, desiredColumnWidth)
	maxAllowedWidth := math.Max(1, e.clientWidthDip)
	e.tileWidthDip = math.Min(targetColumnWidth, maxAllowedWidth)

	e.labelHeightDip = labelHeight + labelVerticalPadDip*2
	if e.displayMode == models.Detailed || e.displayMode == models.ExtraDetailed {
		detailsHeight := e.detailsLineHeightDip
		if detailsHeight <= 0 {
			detailsHeight = 12
		}
		textBlockHeight := labelHeight + detailsGapDip + detailsHeight
		if e.displayMode == models.ExtraDetailed && maxMetadata > 0 {
			metadataHeight := e.metadataLineHeightDip
			if metadataHeight <= 0 {
				metadataHeight = detailsHeight
			}
			textBlockHeight += detailsGapDip + metadataHeight
		}
		e.tileHeightDip = math.Max(e.iconSizeDip, textBlockHeight) + labelVerticalPadDip*2
	} else {
		e.tileHeightDip = math.Max(e.iconSizeDip, labelHeight) + labelVerticalPadDip*2
	}

	e.tileColumns(items)

	labelWidth := math.Max(0, e.tileWidthDip-labelHorizontalPadDip*2-e.iconSizeDip-iconTextGapDip)
	e.updateItemTextLayouts(items, labelWidth)

	e.contentHeight = e.clientHeightDip
	e.contentWidth = math.Max(e.maxTileRight()+columnSpacingDip, e.clientWidthDip)
	e.scrollOffset = 0
	maxHorizontalOffset := math.Max(0, e.contentWidth-e.clientWidthDip)
	e.horizontalOffset = utils.Clamp(e.horizontalOffset, 0, maxHorizontalOffset)
}

// estimateItemSizes fills each item's estimated label/details/metadata
// widths from the sample-text char-width estimate,
// caching the per-pass maxima until the display mode or metrics change.
func (e *Engine) estimateItemSizes(items []*models.Item) (maxLabel, maxDetails, maxMetadata float64) {
	if e.itemMetricsCached {
		return e.cachedMaxLabel, e.cachedMaxDetails, e.cachedMaxMetadata
	}

	detailed := e.displayMode == models.Detailed || e.displayMode == models.ExtraDetailed
	if detailed {
		e.detailsSizeSlotChars = e.computeSizeSlotChars(items)
	} else {
		e.detailsSizeSlotChars = 0
	}

	for _, it := range items {
		if it.DisplayName == "" {
			continue
		}

		width := float64(len(it.DisplayName)) * e.metrics.charWidthDip
		maxLabel = math.Max(maxLabel, width)

		if !detailed {
			continue
		}

		if it.DetailsText == "" {
			it.DetailsText = e.detailsText(it)
		}
		detailsWidth := float64(len(it.DetailsText)) * e.metrics.charWidthDip * secondaryLineShrink
		maxDetails = math.Max(maxDetails, detailsWidth)

		if e.displayMode == models.ExtraDetailed && e.metadataTextFn != nil {
			metadataWidth := float64(len(e.metadataTextFn(it))) * e.metrics.charWidthDip * secondaryLineShrink
			maxMetadata = math.Max(maxMetadata, metadataWidth)
		}
	}

	e.cachedMaxLabel, e.cachedMaxDetails, e.cachedMaxMetadata = maxLabel, maxDetails, maxMetadata
	e.itemMetricsCached = true
	return
}

func (e *Engine) computeSizeSlotChars(items []*models.Item) int {
	slot := 0
	for _, it := range items {
		if it.IsDirectory {
			continue
		}
		n := len(utils.FormatBytes(it.SizeBytes))
		if n > slot {
			slot = n
		}
	}
	if slot == 0 {
		slot = len(utils.FormatBytes(0))
	}
	return utils.ClampInt(slot, 0, maxSizeSlotChars)
}

func (e *Engine) detailsText(it *models.Item) string {
	if e.detailsTextFn != nil {
		return e.detailsTextFn(it, e.detailsSizeSlotChars)
	}
	return defaultDetailsText(it, e.detailsSizeSlotChars)
}

// defaultDetailsText renders a right-aligned (left-padded) size column
// for files, blank for directories.
func defaultDetailsText(it *models.Item, sizeSlotChars int) string {
	if it.IsDirectory {
		return ""
	}
	return utils.PadLeft(utils.FormatBytes(it.SizeBytes), sizeSlotChars)
}

// tileColumns distributes items into top-to-bottom, left-to-right columns
// and assigns each item's Column/Row/Bounds, building
// columnPrefixSums for O(1) range queries.
func (e *Engine) tileColumns(items []*models.Item) {
	columnStride := e.tileWidthDip + columnSpacingDip
	rowStride := e.tileHeightDip + rowSpacingDip

	rowsPerColumn := int(math.Floor((e.clientHeightDip + rowSpacingDip) / rowStride))
	if rowsPerColumn < 1 {
		rowsPerColumn = 1
	}
	e.rowsPerColumn = rowsPerColumn

	columns := int(math.Ceil(float64(len(items)) / float64(rowsPerColumn)))
	if columns < 1 {
		columns = 1
	}

	e.columnCounts = e.columnCounts[:0]
	remaining := len(items)
	for c := 0; c < columns && remaining > 0; c++ {
		count := rowsPerColumn
		if count > remaining {
			count = remaining
		}
		e.columnCounts = append(e.columnCounts, count)
		remaining -= count
	}
	if len(e.columnCounts) == 0 {
		e.columnCounts = append(e.columnCounts, 0)
	}
	e.columns = len(e.columnCounts)

	e.prefixSums = e.prefixSums[:0]
	sum := 0
	for _, c := range e.columnCounts {
		e.prefixSums = append(e.prefixSums, sum)
		sum += c
	}
	e.prefixSums = append(e.prefixSums, sum) // sentinel

	index := 0
	x := columnSpacingDip
	for col, count := range e.columnCounts {
		y := rowSpacingDip
		for row := 0; row < count && index < len(items); row, index = row+1, index+1 {
			it := items[index]
			it.Column = col
			it.Row = row
			it.Bounds = models.Rect{Left: x, Top: y, Right: x + e.tileWidthDip, Bottom: y + e.tileHeightDip}
			y += rowStride
		}
		x += columnStride
	}
}

func (e *Engine) maxTileRight() float64 {
	if e.columns == 0 {
		return 0
	}
	return columnSpacingDip + float64(e.columns)*(e.tileWidthDip+columnSpacingDip)
}

// updateItemTextLayouts shapes label/details/metadata layouts for items in
// the visible window plus a scroll-direction-biased buffer, leaving
// layouts outside the window as they were.
func (e *Engine) updateItemTextLayouts(items []*models.Item, labelWidth float64) {
	if e.shaper == nil {
		return
	}

	start, end := e.VisibleItemRange(items)
	if start >= len(items) {
		return
	}

	if e.horizontalOffset != e.lastHorizontalOffset {
		if e.horizontalOffset > e.lastHorizontalOffset {
			e.scrollDirectionX = 1
		} else {
			e.scrollDirectionX = -1
		}
		e.lastHorizontalOffset = e.horizontalOffset
	}

	bufBack, bufFwd := trailingBufferItems, trailingBufferItems
	if e.scrollDirectionX < 0 {
		bufBack = leadingBufferItems
	} else if e.scrollDirectionX > 0 {
		bufFwd = leadingBufferItems
	}

	// The pane's configured viewport buffer extends both sides further,
	// in whole rows, on top of the fixed leading/trailing bias.
	if e.cfg != nil && e.cfg.ViewportBufferRows > 0 && e.rowsPerColumn > 0 {
		extra := e.cfg.ViewportBufferRows * e.rowsPerColumn
		bufBack += extra
		bufFwd += extra
	}

	rangeStart := start - bufBack
	if rangeStart < 0 {
		rangeStart = 0
	}
	rangeEnd := end + bufFwd
	if rangeEnd > len(items) {
		rangeEnd = len(items)
	}

	constrainedWidth := math.Max(labelWidth, 1)
	constrainedHeight := math.Max(e.labelHeightDip, 1)
	constrainedDetailsHeight := math.Max(e.detailsLineHeightDip, 1)
	constrainedMetadataHeight := math.Max(e.metadataLineHeightDip, 1)

	for i := rangeStart; i < rangeEnd; i++ {
		e.shapeItem(items[i], constrainedWidth, constrainedHeight, constrainedDetailsHeight, constrainedMetadataHeight)
	}
}

// shapeItem creates any missing label/details/metadata layouts for it and
// updates their constraints.
func (e *Engine) shapeItem(it *models.Item, labelWidth, labelHeight, detailsHeight, metadataHeight float64) {
	if it.DisplayName == "" {
		return
	}

	if it.LabelLayout == nil {
		it.LabelLayout = e.shaper.Shape(it.DisplayName, labelWidth, labelHeight, FontLabel)
	}

	if e.displayMode == models.Brief {
		it.DetailsLayout = nil
		it.MetadataLayout = nil
		return
	}

	if it.DetailsText == "" {
		it.DetailsText = e.detailsText(it)
	}
	if it.DetailsLayout == nil && it.DetailsText != "" {
		it.DetailsLayout = e.shaper.Shape(it.DetailsText, labelWidth, detailsHeight, FontDetails)
	}

	if e.displayMode != models.ExtraDetailed {
		it.MetadataLayout = nil
		return
	}

	if e.metadataTextFn != nil && it.MetadataLayout == nil {
		if text := e.metadataTextFn(it); text != "" {
			it.MetadataLayout = e.shaper.Shape(text, labelWidth, metadataHeight, FontMetadata)
		}
	}
}

// EnsureItemTextLayout shapes a single item's layouts on demand, used by
// the renderer for items scrolled into view between layout passes.
func (e *Engine) EnsureItemTextLayout(it *models.Item) {
	if e.shaper == nil {
		return
	}
	labelWidth := math.Max(0, e.tileWidthDip-labelHorizontalPadDip*2-e.iconSizeDip-iconTextGapDip)
	e.shapeItem(it,
		math.Max(labelWidth, 1),
		math.Max(e.labelHeightDip, 1),
		math.Max(e.detailsLineHeightDip, 1),
		math.Max(e.metadataLineHeightDip, 1),
	)
}

// VisibleItemRange returns [start, end) in O(1) using columnPrefixSums and
// the horizontal-offset-derived visible column bounds.
func (e *Engine) VisibleItemRange(items []*models.Item) (start, end int) {
	if len(items) == 0 || len(e.columnCounts) == 0 || e.tileWidthDip <= 0 || e.tileHeightDip <= 0 {
		return 0, len(items)
	}

	columnStride := e.tileWidthDip + columnSpacingDip
	if columnStride <= 0 || e.clientWidthDip <= 0 {
		return 0, len(items)
	}

	layoutLeft := e.horizontalOffset
	layoutRight := e.horizontalOffset + e.clientWidthDip

	firstCol := int(math.Floor((layoutLeft - columnSpacingDip) / columnStride))
	lastCol := int(math.Ceil((layoutRight - columnSpacingDip) / columnStride))

	firstCol = utils.ClampInt(firstCol, 0, len(e.columnCounts)-1)
	lastCol = utils.ClampInt(lastCol, 0, len(e.columnCounts)-1)
	if firstCol > lastCol {
		return 0, 0
	}

	start = e.prefixSums[firstCol]
	end = e.prefixSums[lastCol+1]
	if end > len(items) {
		end = len(items)
	}
	return start, end
}

// HitTest returns the item index under (xDip, yDip) in the pane's scrolled
// content space, or ok=false if the point lands outside every tile.
func (e *Engine) HitTest(items []*models.Item, xDip, yDip float64) (index int, ok bool) {
	x := xDip + e.horizontalOffset
	y := yDip + e.scrollOffset

	if len(e.columnCounts) == 0 || e.tileWidthDip <= 0 || e.tileHeightDip <= 0 {
		for i, it := range items {
			if it.Bounds.Contains(x, y) {
				return i, true
			}
		}
		return 0, false
	}

	columnStride := e.tileWidthDip + columnSpacingDip
	rowStride := e.tileHeightDip + rowSpacingDip
	if columnStride <= 0 || rowStride <= 0 {
		return 0, false
	}

	if x < columnSpacingDip || y < rowSpacingDip {
		return 0, false
	}

	col := int(math.Floor((x - columnSpacingDip) / columnStride))
	if col < 0 || col >= len(e.columnCounts) {
		return 0, false
	}
	columnLeft := columnSpacingDip + float64(col)*columnStride
	if x > columnLeft+e.tileWidthDip {
		return 0, false
	}

	row := int(math.Floor((y - rowSpacingDip) / rowStride))
	if row < 0 || row >= e.columnCounts[col] {
		return 0, false
	}
	rowTop := rowSpacingDip + float64(row)*rowStride
	if y > rowTop+e.tileHeightDip {
		return 0, false
	}

	idx := e.prefixSums[col] + row
	if idx >= len(items) {
		return 0, false
	}
	return idx, true
}

// EnsureVisible scrolls horizontally so index's column is on-screen,
// snapping to column boundaries.
func (e *Engine) EnsureVisible(items []*models.Item, index int) {
	if index < 0 || index >= len(items) {
		return
	}

	it := items[index]
	columnStride := e.tileWidthDip + columnSpacingDip
	columnLeft := columnSpacingDip + float64(it.Column)*columnStride

	switch {
	case columnLeft < e.horizontalOffset:
		e.horizontalOffset = columnLeft
	case it.Bounds.Right > e.horizontalOffset+e.clientWidthDip:
		e.horizontalOffset = columnLeft
		if e.horizontalOffset > it.Bounds.Right-e.clientWidthDip {
			e.horizontalOffset = it.Bounds.Right - e.clientWidthDip
			colIndex := math.Round((e.horizontalOffset - columnSpacingDip) / columnStride)
			e.horizontalOffset = columnSpacingDip + colIndex*columnStride
		}
	}

	maxOffset := math.Max(0, e.contentWidth-e.clientWidthDip)
	e.horizontalOffset = utils.Clamp(e.horizontalOffset, 0, maxOffset)
}

// HorizontalOffset returns the current horizontal scroll offset in DIPs.
func (e *Engine) HorizontalOffset() float64 { return e.horizontalOffset }

// SetHorizontalOffset sets the scroll offset directly, clamped to content
// bounds, used by mouse-wheel column scrolling.
func (e *Engine) SetHorizontalOffset(offset float64) {
	maxOffset := math.Max(0, e.contentWidth-e.clientWidthDip)
	e.horizontalOffset = utils.Clamp(offset, 0, maxOffset)
}

// ContentWidth and ContentHeight report the scrollable content extents.
func (e *Engine) ContentWidth() float64  { return e.contentWidth }
func (e *Engine) ContentHeight() float64 { return e.contentHeight }

// TileSize returns the current tile dimensions in DIPs.
func (e *Engine) TileSize() (width, height float64) { return e.tileWidthDip, e.tileHeightDip }

// Columns returns the current column count.
func (e *Engine) Columns() int { return e.columns }

// RowsPerColumn returns the row capacity of a full column.
func (e *Engine) RowsPerColumn() int { return e.rowsPerColumn }

// ColumnItemCount returns the number of items column col actually holds
// (the last column may be short).
func (e *Engine) ColumnItemCount(col int) int {
	if col < 0 || col >= len(e.columnCounts) {
		return 0
	}
	return e.columnCounts[col]
}

// IndexAt returns the item index at (col, row), with row clamped into the
// column's actual count, for arrow-key navigation between columns.
func (e *Engine) IndexAt(col, row int) (int, bool) {
	if col < 0 || col >= len(e.columnCounts) || e.columnCounts[col] == 0 {
		return 0, false
	}
	row = utils.ClampInt(row, 0, e.columnCounts[col]-1)
	return e.prefixSums[col] + row, true
}

// ColumnStride returns the horizontal distance between adjacent column
// origins, used for wheel scrolling and column snapping.
func (e *Engine) ColumnStride() float64 { return e.tileWidthDip + columnSpacingDip }

// SnapOffsetToColumn rounds a horizontal offset onto the nearest column
// boundary and clamps it into the content extent.
func (e *Engine) SnapOffsetToColumn(offset float64) float64 {
	stride := e.ColumnStride()
	if stride <= 0 {
		return 0
	}
	colIndex := math.Round(offset / stride)
	snapped := colIndex * stride
	maxOffset := math.Max(0, e.contentWidth-e.clientWidthDip)
	return utils.Clamp(snapped, 0, maxOffset)
}

// VisibleColumnSpan returns how many whole columns fit the viewport
// width (at least 1), the page unit for PageUp/PageDown.
func (e *Engine) VisibleColumnSpan() int {
	stride := e.ColumnStride()
	if stride <= 0 || e.clientWidthDip <= 0 {
		return 1
	}
	span := int(e.clientWidthDip / stride)
	if span < 1 {
		span = 1
	}
	return span
}
