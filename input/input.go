package input

import (
	"time"

	"github.com/redsalamander/folderview/layout"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/overlay"
	"github.com/redsalamander/folderview/render"
)

// Callbacks are the events the input controller raises toward the pane
// host. Nil members are ignored.
type Callbacks struct {
	// Activate descends a directory or opens a file.
	Activate func(it *models.Item)
	// NavigateToParent handles Backspace above the root check.
	NavigateToParent func()
	// NavigateUpFromRoot fires when Backspace is pressed at a
	// storage-root equivalent.
	NavigateUpFromRoot func()
	// IsAtRoot reports whether the current folder is a storage root.
	IsAtRoot func() bool
	// SwitchPane handles Tab.
	SwitchPane func()
	// Invalidate requests a repaint.
	Invalidate func()
	// SearchChanged fires whenever the incremental-search query or match
	// changes.
	SearchChanged func()
	// EnsureVisible scrolls the given index into view.
	EnsureVisible func(index int)
}

// Controller runs on the UI thread and owns hover state and the
// incremental-search mode.
type Controller struct {
	model      *models.ItemModel
	engine     *layout.Engine
	overlayCtl *overlay.Controller
	dispatcher *overlay.Dispatcher
	cb         Callbacks

	search      *searchState
	searchSubID uint64

	hoveredIndex int
	paneFocused  bool
}

// New creates an input controller bound to one pane's model and layout.
func New(model *models.ItemModel, engine *layout.Engine, overlayCtl *overlay.Controller, dispatcher *overlay.Dispatcher, cb Callbacks) *Controller {
	return &Controller{
		model:        model,
		engine:       engine,
		overlayCtl:   overlayCtl,
		dispatcher:   dispatcher,
		cb:           cb,
		search:       newSearchState(),
		hoveredIndex: -1,
	}
}

// SetPaneFocused records whether the pane has keyboard focus (affects
// focus-border rendering only).
func (c *Controller) SetPaneFocused(focused bool) {
	c.paneFocused = focused
	c.invalidate()
}

// PaneFocused reports the pane's focus state for the renderer.
func (c *Controller) PaneFocused() bool { return c.paneFocused }

// SearchActive reports whether incremental search is in progress.
func (c *Controller) SearchActive() bool { return c.search.active }

// SearchQuery returns the current query string.
func (c *Controller) SearchQuery() string { return c.search.query }

// Indicator builds the search pill's render state for the next frame.
func (c *Controller) Indicator() render.SearchIndicator {
	ind := render.SearchIndicator{
		Active:     c.search.active,
		Query:      c.search.query,
		MatchStart: -1,
		PillAlpha:  c.search.pillAlpha(),
		Pulse:      c.search.pulse(),
	}
	if c.search.active {
		if focused := c.model.FocusedIndex(); focused >= 0 && focused < c.model.Len() {
			ind.MatchStart, ind.MatchLen = c.search.matchOffset(c.model.Items()[focused].DisplayName)
		}
	}
	return ind
}

func (c *Controller) invalidate() {
	if c.cb.Invalidate != nil {
		c.cb.Invalidate()
	}
}

func (c *Controller) searchChanged() {
	if c.cb.SearchChanged != nil {
		c.cb.SearchChanged()
	}
	c.startPillTicks()
	c.invalidate()
}

func (c *Controller) ensureVisible(index int) {
	if c.cb.EnsureVisible != nil {
		c.cb.EnsureVisible(index)
	}
}

// HandleKey processes one key event. Returns true if the event was
// consumed.
func (c *Controller) HandleKey(ev KeyEvent) bool {
	// A blocking overlay swallows everything except pane switch and
	// cancel/dismiss.
	if c.overlayCtl != nil && c.overlayCtl.BlocksInput() {
		switch ev.Key {
		case KeyTab:
			if c.cb.SwitchPane != nil {
				c.cb.SwitchPane()
			}
			return true
		case KeyEscape:
			c.overlayCtl.CancelBusy()
			return true
		default:
			return true
		}
	}

	if c.search.active {
		if c.handleSearchKey(ev) {
			return true
		}
		// Unhandled navigation keys exit search mode and fall through.
		c.search.exit()
		c.searchChanged()
	}

	return c.handleNavigationKey(ev)
}

// handleSearchKey implements the in-search key contract.
// Returns false for keys that should exit the mode and be re-handled.
func (c *Controller) handleSearchKey(ev KeyEvent) bool {
	switch ev.Key {
	case KeyChar:
		if !isSearchChar(ev.Rune) {
			return false
		}
		c.search.extend(ev.Rune)
		c.reanchorSearch()
		return true
	case KeyBackspace:
		if !c.search.backspace() {
			c.search.exit()
			c.searchChanged()
			return true
		}
		c.reanchorSearch()
		return true
	case KeyRight, KeyDown:
		c.iterateSearch(true)
		return true
	case KeyLeft, KeyUp:
		c.iterateSearch(false)
		return true
	case KeyEscape:
		c.search.exit()
		c.searchChanged()
		return true
	default:
		return false
	}
}

// reanchorSearch keeps focus on the current item while it still matches
// the (possibly longer) query, otherwise advances to the next match.
func (c *Controller) reanchorSearch() {
	items := c.model.Items()
	focused := c.model.FocusedIndex()
	if focused >= 0 && focused < len(items) && c.search.matches(items[focused].DisplayName) {
		c.searchChanged()
		return
	}
	if idx, ok := c.search.findFrom(items, focused, true); ok {
		c.model.FocusIndex(idx)
		c.ensureVisible(idx)
	}
	c.searchChanged()
}

// iterateSearch moves to the next/previous match cyclically from
// focusedIndex +1/-1.
func (c *Controller) iterateSearch(forward bool) {
	items := c.model.Items()
	if idx, ok := c.search.findFrom(items, c.model.FocusedIndex(), forward); ok {
		c.model.FocusIndex(idx)
		c.ensureVisible(idx)
	}
	c.searchChanged()
}

func (c *Controller) handleNavigationKey(ev KeyEvent) bool {
	switch ev.Key {
	case KeyChar:
		if !isSearchChar(ev.Rune) {
			return false
		}
		c.search.start(ev.Rune)
		c.reanchorSearch()
		return true

	case KeyUp:
		return c.moveFocusVertical(-1, ev.Modifiers)
	case KeyDown:
		return c.moveFocusVertical(+1, ev.Modifiers)
	case KeyLeft:
		return c.moveFocusHorizontal(-1, ev.Modifiers)
	case KeyRight:
		return c.moveFocusHorizontal(+1, ev.Modifiers)

	case KeyPageUp:
		return c.pageFocus(-1, ev.Modifiers)
	case KeyPageDown:
		return c.pageFocus(+1, ev.Modifiers)

	case KeyHome:
		return c.jumpFocus(0, ev.Modifiers)
	case KeyEnd:
		return c.jumpFocus(c.model.Len()-1, ev.Modifiers)

	case KeySpace:
		focused := c.model.FocusedIndex()
		if focused < 0 {
			return true
		}
		c.model.ToggleSelection(focused)
		if focused+1 < c.model.Len() {
			c.model.FocusIndex(focused + 1)
			c.ensureVisible(focused + 1)
		}
		c.invalidate()
		return true

	case KeyEnter:
		focused := c.model.FocusedIndex()
		if focused >= 0 && focused < c.model.Len() && c.cb.Activate != nil {
			c.cb.Activate(c.model.Items()[focused])
		}
		return true

	case KeyBackspace:
		if c.cb.IsAtRoot != nil && c.cb.IsAtRoot() {
			if c.cb.NavigateUpFromRoot != nil {
				c.cb.NavigateUpFromRoot()
			}
			return true
		}
		if c.cb.NavigateToParent != nil {
			c.cb.NavigateToParent()
		}
		return true

	case KeyTab:
		if c.cb.SwitchPane != nil {
			c.cb.SwitchPane()
		}
		return true

	case KeyEscape:
		if c.overlayCtl != nil && c.overlayCtl.Dismiss() {
			return true
		}
		c.model.ClearSelection()
		c.invalidate()
		return true
	}

	return false
}

// moveFocusVertical moves within the focused item's column.
func (c *Controller) moveFocusVertical(dir int, mods Modifiers) bool {
	items := c.model.Items()
	focused := c.model.FocusedIndex()
	if focused < 0 || focused >= len(items) {
		return true
	}

	it := items[focused]
	target := focused
	if dir < 0 && it.Row > 0 {
		target = focused - 1
	} else if dir > 0 && it.Row < c.engine.ColumnItemCount(it.Column)-1 {
		target = focused + 1
	}
	c.applyFocusMove(target, mods)
	return true
}

// moveFocusHorizontal moves to the neighboring column at the same row,
// clamped to that column's count.
func (c *Controller) moveFocusHorizontal(dir int, mods Modifiers) bool {
	items := c.model.Items()
	focused := c.model.FocusedIndex()
	if focused < 0 || focused >= len(items) {
		return true
	}

	it := items[focused]
	if target, ok := c.engine.IndexAt(it.Column+dir, it.Row); ok {
		c.applyFocusMove(target, mods)
	}
	return true
}

// pageFocus scrolls by one full viewport width of columns and moves
// focus the same distance.
func (c *Controller) pageFocus(dir int, mods Modifiers) bool {
	items := c.model.Items()
	focused := c.model.FocusedIndex()
	if focused < 0 || focused >= len(items) {
		return true
	}

	span := c.engine.VisibleColumnSpan()
	it := items[focused]
	targetCol := it.Column + dir*span
	if targetCol < 0 {
		targetCol = 0
	}
	if targetCol >= c.engine.Columns() {
		targetCol = c.engine.Columns() - 1
	}

	offset := c.engine.HorizontalOffset() + float64(dir*span)*c.engine.ColumnStride()
	c.engine.SetHorizontalOffset(c.engine.SnapOffsetToColumn(offset))

	if target, ok := c.engine.IndexAt(targetCol, it.Row); ok {
		c.applyFocusMove(target, mods)
	}
	return true
}

func (c *Controller) jumpFocus(target int, mods Modifiers) bool {
	if target < 0 || target >= c.model.Len() {
		return true
	}
	c.applyFocusMove(target, mods)
	return true
}

// applyFocusMove commits a navigation target: Shift extends the range
// selection from the anchor, a plain move just relocates focus.
func (c *Controller) applyFocusMove(target int, mods Modifiers) {
	if mods.Shift() {
		c.model.RangeSelect(target)
	} else {
		c.model.FocusIndex(target)
	}
	c.ensureVisible(target)
	c.invalidate()
}

// HandleMouse processes one button event in client DIPs.
func (c *Controller) HandleMouse(ev MouseEvent) bool {
	if c.overlayCtl != nil && c.overlayCtl.BlocksInput() {
		return true
	}
	if ev.Button != ButtonLeft {
		return false
	}

	items := c.model.Items()
	idx, hit := c.engine.HitTest(items, ev.X, ev.Y)
	if !hit {
		if !ev.Modifiers.Control() && !ev.Modifiers.Shift() {
			c.model.ClearSelection()
			c.invalidate()
		}
		return true
	}

	switch {
	case ev.DoubleClick:
		c.model.SelectSingle(idx)
		if c.cb.Activate != nil {
			c.cb.Activate(items[idx])
		}
	case ev.Modifiers.Control():
		c.model.ToggleSelection(idx)
	case ev.Modifiers.Shift():
		c.model.RangeSelect(idx)
	default:
		c.model.SelectSingle(idx)
	}
	c.invalidate()
	return true
}

// HandleMouseMove tracks hover state, invalidating only when the hovered
// item changes.
func (c *Controller) HandleMouseMove(x, y float64) {
	items := c.model.Items()
	idx, hit := c.engine.HitTest(items, x, y)
	if !hit {
		idx = -1
	}
	if idx == c.hoveredIndex {
		return
	}

	if c.hoveredIndex >= 0 && c.hoveredIndex < len(items) {
		items[c.hoveredIndex].Hovered = false
	}
	if idx >= 0 {
		items[idx].Hovered = true
	}
	c.hoveredIndex = idx
	c.invalidate()
}

// ClearHover resets hover tracking (mouse left the pane).
func (c *Controller) ClearHover() {
	items := c.model.Items()
	if c.hoveredIndex >= 0 && c.hoveredIndex < len(items) {
		items[c.hoveredIndex].Hovered = false
		c.invalidate()
	}
	c.hoveredIndex = -1
}

// HandleWheel maps vertical wheel deltas onto horizontal column scrolling
// (the layout is column-major), snapping to column boundaries. Shift
// inverts the axis.
func (c *Controller) HandleWheel(ev WheelEvent) bool {
	if c.overlayCtl != nil && c.overlayCtl.BlocksInput() {
		return true
	}

	delta := ev.Delta
	if ev.Modifiers.Shift() {
		delta = -delta
	}

	offset := c.engine.HorizontalOffset() - delta*c.engine.ColumnStride()
	c.engine.SetHorizontalOffset(c.engine.SnapOffsetToColumn(offset))
	c.invalidate()
	return true
}

// startPillTicks subscribes the pill animation while it has frames left;
// the subscription drops itself once the fade and pulse settle.
func (c *Controller) startPillTicks() {
	if c.dispatcher == nil || c.searchSubID != 0 {
		return
	}
	c.searchSubID = c.dispatcher.Subscribe(func(now time.Time) bool {
		c.invalidate()
		if !c.search.animating() && c.search.pulse() == 0 {
			c.searchSubID = 0
			return false
		}
		return true
	})
}

// Close drops the controller's animation subscription.
func (c *Controller) Close() {
	if c.dispatcher != nil && c.searchSubID != 0 {
		c.dispatcher.Unsubscribe(c.searchSubID)
		c.searchSubID = 0
	}
}
