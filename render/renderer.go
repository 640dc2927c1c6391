package render

import (
	"fmt"
	"math"

	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/layout"
	"github.com/redsalamander/folderview/logger"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/overlay"
	"github.com/redsalamander/folderview/plugin"
)

const (
	iconSizeDip        = 16.0
	iconPadDip         = 4.0
	placeholderAlpha   = 0.4
	focusBorderWidth   = 1.5
	unfocusedBorderDip = 1.0
	unfocusedAlpha     = 0.5
	pillPadDip         = 8.0
	pillHeightDip      = 24.0
	pillMarginDip      = 12.0
	pillSlideDip       = 10.0
	overlayPanelWidth  = 360.0
	overlayPanelHeight = 120.0
)

// SearchIndicator carries the incremental-search pill's render state,
// produced by the input controller's animation ticks.
type SearchIndicator struct {
	Active     bool
	Query      string
	MatchStart int // rune offset of the match on the focused item, -1 when none
	MatchLen   int
	PillAlpha  float64 // visibility fade, 0..1
	Pulse      float64 // typing pulse, 0..1, decays after each keystroke
}

// Frame is everything one paint needs beyond the item list itself.
type Frame struct {
	Invalid     PixelRect
	Scroll      *ScrollRect
	PaneFocused bool
	Search      SearchIndicator
	Overlay     *overlay.Overlay
	OverlayFade float64
	// EmptyMessage is drawn centered when the item list is empty.
	EmptyMessage string
}

// Renderer owns the pane's device resources and draws frames. UI-thread
// only. On any draw or presentation failure it discards the device and
// swap chain, and the next frame recreates them and performs a full
// present before partial presents are allowed again.
type Renderer struct {
	backend Backend
	cache   *iconcache.Cache
	engine  *layout.Engine
	shaper  layout.Shaper
	log     *logger.Logger

	theme Theme

	device            Device
	widthPx, heightPx int

	// fullPresented gates the partial-present path: at least one full
	// present must succeed on the current swap chain first.
	fullPresented bool
	forceFull     bool

	placeholderFolder *iconcache.Bitmap
	placeholderFile   *iconcache.Bitmap

	onDeviceReady func(iconcache.DeviceID)

	pillLayout *models.TextLayout
	pillQuery  string
}

// New creates a renderer over backend. onDeviceReady, if non-nil, runs
// after a device is (re)created, letting the pane re-queue icon loading
// that was deferred while no device existed.
func New(backend Backend, cache *iconcache.Cache, engine *layout.Engine, shaper layout.Shaper, onDeviceReady func(iconcache.DeviceID)) *Renderer {
	return &Renderer{
		backend:       backend,
		cache:         cache,
		engine:        engine,
		shaper:        shaper,
		log:           logger.Get(),
		theme:         DefaultTheme(),
		onDeviceReady: onDeviceReady,
	}
}

// SetTheme replaces the theme; its colors are read at draw time, so the
// next frame uses them.
func (r *Renderer) SetTheme(t Theme) { r.theme = t }

// Theme returns the active theme.
func (r *Renderer) Theme() *Theme { return &r.theme }

// SetSize resizes the target surface in device pixels.
func (r *Renderer) SetSize(widthPx, heightPx int) error {
	r.widthPx, r.heightPx = widthPx, heightPx
	if r.device == nil {
		return nil
	}
	if err := r.device.Resize(widthPx, heightPx); err != nil {
		r.discardDevice()
		return err
	}
	// A resize invalidates the preserved backbuffer contents.
	r.fullPresented = false
	return nil
}

// DPI returns the backend's pixels-per-DIP scale.
func (r *Renderer) DPI() float64 {
	dpi := r.backend.DPI()
	if dpi <= 0 {
		return 1
	}
	return dpi
}

// DeviceID returns the live device's id, or 0 when no device exists yet.
func (r *Renderer) DeviceID() iconcache.DeviceID {
	if r.device == nil {
		return 0
	}
	return r.device.ID()
}

// HasDevice reports whether a device currently exists; icon loading is
// deferred until it does.
func (r *Renderer) HasDevice() bool { return r.device != nil }

// ConvertIcon converts an extracted OS icon handle into a device bitmap
// cached under (iconIndex, device). UI-thread only.
func (r *Renderer) ConvertIcon(handle plugin.IconHandle, iconIndex int32, sizeDip float64) (*iconcache.Bitmap, error) {
	if r.device == nil {
		return nil, fmt.Errorf("render: no device")
	}
	defer handle.Release()
	return r.cache.ConvertHandleToDeviceBitmap(func(h plugin.IconHandle) (interface{}, int64, error) {
		return r.device.ConvertIcon(h, sizeDip)
	}, handle, iconIndex, r.device.ID())
}

// ensureDevice creates the device bundle on first paint or after loss.
func (r *Renderer) ensureDevice() error {
	if r.device != nil {
		return nil
	}

	device, err := r.backend.CreateDevice(r.widthPx, r.heightPx)
	if err != nil {
		return fmt.Errorf("render: create device: %w", err)
	}
	r.device = device
	r.fullPresented = false
	r.forceFull = true

	r.placeholderFolder, err = device.CreatePlaceholder(PlaceholderFolder)
	if err != nil {
		r.placeholderFolder = nil
	}
	r.placeholderFile, err = device.CreatePlaceholder(PlaceholderFile)
	if err != nil {
		r.placeholderFile = nil
	}

	if r.onDeviceReady != nil {
		r.onDeviceReady(device.ID())
	}
	return nil
}

// discardDevice drops the device, its cached bitmaps, and the
// partial-present eligibility after a loss or failure.
func (r *Renderer) discardDevice() {
	if r.device == nil {
		return
	}
	r.cache.ClearDeviceCache(r.device.ID())
	r.device.Release()
	r.device = nil
	r.placeholderFolder = nil
	r.placeholderFile = nil
	r.fullPresented = false
	r.forceFull = true
	r.pillLayout = nil
}

// Render draws one frame and presents it. On failure the device is
// discarded; the caller should invalidate and try again next frame.
func (r *Renderer) Render(items []*models.Item, frame Frame) error {
	if err := r.ensureDevice(); err != nil {
		return err
	}

	dpi := r.DPI()
	invalid := frame.Invalid.Clamp(r.widthPx, r.heightPx)
	if invalid.Empty() || r.forceFull || !r.fullPresented {
		invalid = PixelRect{Right: r.widthPx, Bottom: r.heightPx}
	}
	clipDip := models.Rect{
		Left:   float64(invalid.Left) / dpi,
		Top:    float64(invalid.Top) / dpi,
		Right:  float64(invalid.Right) / dpi,
		Bottom: float64(invalid.Bottom) / dpi,
	}

	r.device.BeginDraw()
	r.device.Clear(clipDip, r.theme.Background)

	if len(items) == 0 {
		r.drawEmptyState(frame.EmptyMessage)
	} else {
		r.drawItems(items, clipDip, frame)
	}

	if frame.Search.Active || frame.Search.PillAlpha > 0 {
		r.drawSearchPill(frame.Search)
	}
	if frame.Overlay != nil || frame.OverlayFade > 0 {
		r.drawOverlayPanel(frame.Overlay, frame.OverlayFade)
	}

	if err := r.device.EndDraw(); err != nil {
		r.log.Render("draw failed, discarding device: %v", err)
		r.discardDevice()
		return err
	}

	return r.present(invalid, frame.Scroll)
}

// present submits the frame: the partial path only after at least one
// full present has succeeded for this swap chain, the full path
// otherwise and after any failure.
func (r *Renderer) present(invalid PixelRect, scroll *ScrollRect) error {
	if !r.fullPresented || r.forceFull {
		if err := r.device.Present(nil, nil); err != nil {
			r.log.Render("full present failed, discarding device: %v", err)
			r.discardDevice()
			return err
		}
		r.fullPresented = true
		r.forceFull = false
		return nil
	}

	if err := r.device.Present(&invalid, scroll); err != nil {
		r.log.Render("partial present failed, discarding device: %v", err)
		r.discardDevice()
		return err
	}
	return nil
}

// drawItems iterates the visible range restricted to tiles intersecting
// the invalid clip.
func (r *Renderer) drawItems(items []*models.Item, clipDip models.Rect, frame Frame) {
	start, end := r.engine.VisibleItemRange(items)
	offsetX := r.engine.HorizontalOffset()

	for i := start; i < end && i < len(items); i++ {
		it := items[i]
		tile := models.Rect{
			Left:   it.Bounds.Left - offsetX,
			Top:    it.Bounds.Top,
			Right:  it.Bounds.Right - offsetX,
			Bottom: it.Bounds.Bottom,
		}
		if !tile.Intersects(clipDip) {
			continue
		}
		r.drawItem(it, tile, frame)
	}
}

func (r *Renderer) drawItem(it *models.Item, tile models.Rect, frame Frame) {
	r.engine.EnsureItemTextLayout(it)

	// Background by state: selected > focused-and-pane-focused > hovered.
	switch {
	case it.Selected:
		tint := r.theme.Selected
		if r.theme.RainbowSelection {
			tint = RainbowTint(it.StableHash32)
		}
		r.device.FillRect(tile, tint)
	case it.Focused && frame.PaneFocused:
		r.device.FillRect(tile, r.theme.Focused)
	case it.Hovered:
		r.device.FillRect(tile, r.theme.Hover)
	}

	if it.Focused {
		border := r.theme.FocusBorder
		width := focusBorderWidth
		if !frame.PaneFocused {
			border = border.WithAlpha(border.A * unfocusedAlpha)
			width = unfocusedBorderDip
		}
		r.device.DrawRectOutline(tile, border, width)
	}

	iconRect := models.Rect{
		Left:   tile.Left + iconPadDip,
		Top:    tile.Top + (tile.Height()-iconSizeDip)/2,
		Right:  tile.Left + iconPadDip + iconSizeDip,
		Bottom: tile.Top + (tile.Height()-iconSizeDip)/2 + iconSizeDip,
	}
	r.drawIcon(it, iconRect)

	textX := iconRect.Right + iconPadDip
	textY := tile.Top + 2
	textColor := r.theme.Text
	if it.Selected {
		textColor = r.theme.SelectedText
	}

	if it.LabelLayout != nil {
		r.device.DrawTextLayout(it.LabelLayout, textX, textY, textColor)
		textY += it.LabelLayout.HeightDip
	}
	if it.DetailsLayout != nil {
		r.device.DrawTextLayout(it.DetailsLayout, textX, textY, r.theme.SecondaryText)
		textY += it.DetailsLayout.HeightDip
	}
	if it.MetadataLayout != nil {
		r.device.DrawTextLayout(it.MetadataLayout, textX, textY, r.theme.SecondaryText)
	}

	if it.Focused && frame.Search.MatchStart >= 0 && frame.Search.MatchLen > 0 && it.LabelLayout != nil {
		r.drawSearchMatch(it, textX, tile.Top+2, frame.Search.MatchStart, frame.Search.MatchLen)
	}
}

func (r *Renderer) drawIcon(it *models.Item, iconRect models.Rect) {
	switch {
	case it.Icon != nil:
		r.device.DrawBitmap(it.Icon, iconRect, 1)
	case it.IsDirectory && r.placeholderFolder != nil:
		r.device.DrawBitmap(r.placeholderFolder, iconRect, placeholderAlpha)
	case !it.IsDirectory && r.placeholderFile != nil:
		r.device.DrawBitmap(r.placeholderFile, iconRect, placeholderAlpha)
	default:
		r.device.FillRect(iconRect, r.theme.SecondaryText.WithAlpha(0.25))
	}

	if it.IsShortcut {
		overlaySize := iconSizeDip * 0.4
		r.device.FillRoundedRect(models.Rect{
			Left:   iconRect.Left,
			Top:    iconRect.Bottom - overlaySize,
			Right:  iconRect.Left + overlaySize,
			Bottom: iconRect.Bottom,
		}, 2, r.theme.FocusBorder)
	}
}

// drawSearchMatch paints a rounded highlight behind the matched character
// range of the focused item's label and redraws the covered text in a
// contrasting color.
func (r *Renderer) drawSearchMatch(it *models.Item, labelX, labelY float64, start, length int) {
	layoutObj := it.LabelLayout
	if layoutObj == nil || len(it.DisplayName) == 0 {
		return
	}
	if start < 0 || length <= 0 || start+length > len(it.DisplayName) {
		return
	}

	charWidth := layoutObj.WidthDip / float64(len(it.DisplayName))
	highlight := models.Rect{
		Left:   labelX + float64(start)*charWidth - 1,
		Top:    labelY - 1,
		Right:  labelX + float64(start+length)*charWidth + 1,
		Bottom: labelY + layoutObj.HeightDip + 1,
	}
	r.device.FillRoundedRect(highlight, 3, r.theme.SearchHighlight)
	r.device.DrawTextLayout(layoutObj, labelX, labelY, Color{0.05, 0.05, 0.05, 1})
}

// drawSearchPill draws the floating incremental-search indicator with its
// slide and pulse animation.
func (r *Renderer) drawSearchPill(s SearchIndicator) {
	if s.PillAlpha <= 0 {
		return
	}

	if r.pillLayout == nil || r.pillQuery != s.Query {
		if r.shaper == nil {
			return
		}
		r.pillLayout = r.shaper.Shape(s.Query, 400, pillHeightDip, layout.FontLabel)
		r.pillQuery = s.Query
	}
	if r.pillLayout == nil {
		return
	}

	clientH := float64(r.heightPx) / r.DPI()
	width := r.pillLayout.WidthDip + pillPadDip*2
	slide := pillSlideDip * (1 - s.PillAlpha)
	pulse := 1 + 0.08*s.Pulse

	pill := models.Rect{
		Left:   pillMarginDip,
		Top:    clientH - pillMarginDip - pillHeightDip*pulse + slide,
		Right:  pillMarginDip + width*pulse,
		Bottom: clientH - pillMarginDip + slide,
	}
	r.device.FillRoundedRect(pill, pillHeightDip/2, r.theme.SearchPill.WithAlpha(r.theme.SearchPill.A*s.PillAlpha))
	r.device.DrawTextLayout(r.pillLayout, pill.Left+pillPadDip, pill.Top+(pill.Height()-r.pillLayout.HeightDip)/2,
		r.theme.SearchPillText.WithAlpha(s.PillAlpha))
}

// drawOverlayPanel draws the busy/error alert panel centered in the pane.
func (r *Renderer) drawOverlayPanel(o *overlay.Overlay, fade float64) {
	if fade <= 0 || o == nil {
		return
	}

	dpi := r.DPI()
	clientW := float64(r.widthPx) / dpi
	clientH := float64(r.heightPx) / dpi

	panel := models.Rect{
		Left:   (clientW - overlayPanelWidth) / 2,
		Top:    (clientH - overlayPanelHeight) / 2,
		Right:  (clientW + overlayPanelWidth) / 2,
		Bottom: (clientH + overlayPanelHeight) / 2,
	}
	r.device.FillRoundedRect(panel, 8, r.theme.OverlayPanel.WithAlpha(r.theme.OverlayPanel.A*fade))

	if r.shaper == nil {
		return
	}
	title := r.shaper.Shape(o.Title, overlayPanelWidth-32, 24, layout.FontLabel)
	if title != nil {
		r.device.DrawTextLayout(title, panel.Left+16, panel.Top+16, r.theme.OverlayText.WithAlpha(fade))
	}
	message := r.shaper.Shape(o.Message, overlayPanelWidth-32, 48, layout.FontDetails)
	if message != nil {
		r.device.DrawTextLayout(message, panel.Left+16, panel.Top+48, r.theme.SecondaryText.WithAlpha(fade))
	}
}

func (r *Renderer) drawEmptyState(message string) {
	if message == "" || r.shaper == nil {
		return
	}
	text := r.shaper.Shape(message, 400, 24, layout.FontDetails)
	if text == nil {
		return
	}
	dpi := r.DPI()
	clientW := float64(r.widthPx) / dpi
	clientH := float64(r.heightPx) / dpi
	r.device.DrawTextLayout(text,
		math.Max(0, (clientW-text.WidthDip)/2),
		math.Max(0, (clientH-text.HeightDip)/2),
		r.theme.SecondaryText)
}
