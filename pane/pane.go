// Package pane assembles the folder view pane: the host-facing API
// wired over the item model, enumeration worker, layout engine,
// icon loader, renderer, input controller, and overlay controller. A Pane
// owns one UI-thread work queue; hosts pump it with Drain or Run.
package pane

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/redsalamander/folderview/config"
	"github.com/redsalamander/folderview/diag"
	"github.com/redsalamander/folderview/enumerate"
	"github.com/redsalamander/folderview/fsadapter"
	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/iconloader"
	"github.com/redsalamander/folderview/input"
	"github.com/redsalamander/folderview/layout"
	"github.com/redsalamander/folderview/logger"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/overlay"
	"github.com/redsalamander/folderview/plugin"
	"github.com/redsalamander/folderview/render"
	"github.com/redsalamander/folderview/watch"
)

// Navigation identifies a host navigation request.
type Navigation int

const (
	// NavigationSwitchPane asks the host to move keyboard focus to the
	// other pane.
	NavigationSwitchPane Navigation = iota
)

// ViewFileRequest asks the host to open its file viewer.
type ViewFileRequest struct {
	Path string
}

// Callbacks are the events a pane emits toward its host shell. Nil
// members are ignored.
type Callbacks struct {
	PathChanged              func(path string)
	SelectionChanged         func(stats models.SelectionStats)
	IncrementalSearchChanged func()
	EnumerationCompleted     func(folder string)
	NavigationRequest        func(n Navigation)
	NavigateUpFromRoot       func()
	OpenFileRequest          func(path string) bool
	FileOperationRequest     func(req plugin.FileOperationRequest) error
	PropertiesRequest        func(path string) error
	ViewFileRequest          func(req ViewFileRequest) bool
}

const (
	iconSizeDip       = 16.0
	idleTickInterval  = 5 * time.Millisecond
	iconBoostBuffer   = 64
	defaultEmptyState = "This folder is empty"
)

// Pane is one folder view. All exported methods except Post must run on
// the thread pumping the pane's UI queue.
type Pane struct {
	log     *logger.Logger
	cfg     *config.Config
	cb      Callbacks
	diags   *diag.StartupMetrics
	history *diag.History

	source  plugin.DirectoryListingSource
	adapter *fsadapter.Adapter
	cache   *iconcache.Cache

	model      *models.ItemModel
	engine     *layout.Engine
	worker     *enumerate.Worker
	dispatcher *overlay.Dispatcher
	overlayCtl *overlay.Controller
	renderer   *render.Renderer
	inputCtl   *input.Controller
	focusMem   *models.FocusMemory
	watcher    *watch.Watcher

	ui chan func()

	folder      string
	payload     *models.Payload
	enumStarted time.Time

	displayMode   models.DisplayMode
	sortField     models.SortField
	sortDirection models.SortDirection

	clientWidthPx  int
	clientHeightPx int

	// invalidMu guards the dirty region: animation ticks accumulate
	// invalidation from the dispatcher goroutine.
	invalidMu  sync.Mutex
	invalid    render.PixelRect
	invalidAll bool

	idleTimer *time.Timer

	closed bool
}

// New creates a pane over a filesystem source, a render backend, and a
// text shaper. cache may be shared across panes (it is process-wide by
// design); pass nil to create a private one.
func New(source plugin.DirectoryListingSource, backend render.Backend, shaper layout.Shaper, cache *iconcache.Cache, cb Callbacks) *Pane {
	cfg := config.GetManager().Get()

	if cache == nil {
		budget := int64(64 << 20)
		if cfg != nil && cfg.Icons.BudgetBytes > 0 {
			budget = cfg.Icons.BudgetBytes
		}
		cache = iconcache.New(nil, budget, nil)
	}

	tick := 16 * time.Millisecond
	debounce := 300 * time.Millisecond
	var displayCfg *config.PaneDisplayConfig
	if cfg != nil {
		if cfg.Overlay.AnimationTick > 0 {
			tick = cfg.Overlay.AnimationTick
		}
		if cfg.Overlay.BusyDebounce > 0 {
			debounce = cfg.Overlay.BusyDebounce
		}
		displayCfg = &cfg.Display
	}

	p := &Pane{
		log:      logger.Get(),
		cfg:      cfg,
		cb:       cb,
		diags:    diag.NewStartupMetrics(),
		history:  diag.NewHistory(64),
		source:   source,
		adapter:  fsadapter.New(source),
		cache:    cache,
		model:    models.NewItemModel(),
		engine:   layout.NewEngine(shaper, displayCfg, iconSizeDip),
		focusMem: models.NewFocusMemory(),
		ui:       make(chan func(), 256),

		displayMode: models.Detailed,
		sortField:   models.SortByName,
	}

	p.engine.SetDisplayMode(p.displayMode)
	p.dispatcher = overlay.NewDispatcher(tick, nil)
	p.overlayCtl = overlay.NewController(debounce, p.dispatcher, p.Post, p.InvalidateAll)

	p.worker = enumerate.NewWorker(p.adapter, cache,
		func(payload *models.Payload) { p.Post(func() { p.onPayload(payload) }) },
		func(msg enumerate.IconMessage) { p.Post(func() { p.onIconMessage(msg) }) },
	)

	p.renderer = render.New(backend, cache, p.engine, shaper, func(iconcache.DeviceID) {
		// Icon loading deferred while no device existed resumes here.
		p.Post(p.queueIconLoading)
	})

	p.inputCtl = input.New(p.model, p.engine, p.overlayCtl, p.dispatcher, input.Callbacks{
		Activate:           p.activate,
		NavigateToParent:   p.navigateToParent,
		NavigateUpFromRoot: func() { p.emitNavigateUpFromRoot() },
		IsAtRoot:           p.atStorageRoot,
		SwitchPane: func() {
			if p.cb.NavigationRequest != nil {
				p.cb.NavigationRequest(NavigationSwitchPane)
			}
		},
		Invalidate:    p.InvalidateAll,
		SearchChanged: p.onSearchChanged,
		EnsureVisible: p.ensureVisible,
	})

	p.model.OnChange(func(stats models.SelectionStats) {
		if p.cb.SelectionChanged != nil {
			p.cb.SelectionChanged(stats)
		}
	})

	p.watcher = watch.New(func(folder string) {
		p.Post(func() {
			if folder == p.folder {
				p.ForceRefresh()
			}
		})
	})

	p.applyConfiguredDefaults()
	return p
}

// applyConfiguredDefaults seeds display mode and sort from configuration.
func (p *Pane) applyConfiguredDefaults() {
	if p.cfg == nil {
		return
	}

	switch p.cfg.Display.Mode {
	case "list":
		p.displayMode = models.Brief
	case "large-icons":
		p.displayMode = models.ExtraDetailed
	default:
		p.displayMode = models.Detailed
	}
	p.engine.SetDisplayMode(p.displayMode)

	switch p.cfg.Sort.Field {
	case "extension":
		p.sortField = models.SortByExtension
	case "time":
		p.sortField = models.SortByTime
	case "size":
		p.sortField = models.SortBySize
	case "attributes":
		p.sortField = models.SortByAttributes
	default:
		p.sortField = models.SortByName
	}
	if p.cfg.Sort.Descending {
		p.sortDirection = models.Descending
	}
	p.model.ApplySort(p.sortField, p.sortDirection)
}

// Post enqueues fn onto the pane's UI queue. Safe from any goroutine.
func (p *Pane) Post(fn func()) {
	p.ui <- fn
}

// Drain runs queued UI work until the queue is momentarily empty.
func (p *Pane) Drain() {
	for {
		select {
		case fn := <-p.ui:
			fn()
		default:
			return
		}
	}
}

// Run pumps the UI queue until stop is closed, for hosts without their
// own message loop.
func (p *Pane) Run(stop <-chan struct{}) {
	for {
		select {
		case fn := <-p.ui:
			fn()
		case <-stop:
			return
		}
	}
}

// Close joins the worker, stops the watcher, and releases the payload.
func (p *Pane) Close() {
	if p.closed {
		return
	}
	p.closed = true

	p.stopIdleTimer()
	p.worker.Stop()
	p.watcher.Close()
	p.inputCtl.Close()
	p.overlayCtl.Close()
	if p.payload != nil {
		p.payload.Release()
		p.payload = nil
	}
}

// --- Host-facing API ---

// SetFolder begins enumerating path; an empty path clears the pane.
func (p *Pane) SetFolder(path string) {
	if p.folder != "" {
		if focused := p.model.FocusedIndex(); focused >= 0 && focused < p.model.Len() {
			p.focusMem.Remember(p.folder, p.model.Items()[focused].DisplayName)
		}
	}

	p.folder = path
	if p.cb.PathChanged != nil {
		p.cb.PathChanged(path)
	}

	if path == "" {
		p.worker.CancelPending()
		p.overlayCtl.Disarm()
		p.adoptItems("", nil, nil)
		p.watcher.SetFolder("")
		return
	}

	p.watcher.SetFolder(path)
	p.overlayCtl.ArmBusy(func() { p.worker.CancelPending() })
	p.enumStarted = time.Now()
	p.worker.RequestEnumeration(path)
}

// ForceRefresh invalidates any cached listing and re-enumerates the
// current folder.
func (p *Pane) ForceRefresh() {
	if p.folder == "" {
		return
	}
	p.overlayCtl.ArmBusy(func() { p.worker.CancelPending() })
	p.enumStarted = time.Now()
	p.worker.RequestEnumeration(p.folder)
}

// CancelPendingEnumeration bumps the generation so an in-flight
// enumeration is dropped without posting.
func (p *Pane) CancelPendingEnumeration() {
	p.worker.CancelPending()
	p.overlayCtl.Disarm()
}

// Folder returns the pane's current folder path.
func (p *Pane) Folder() string { return p.folder }

// Generation returns the current enumeration generation, exposed for
// hosts and tests.
func (p *Pane) Generation() uint64 { return p.worker.Generation() }

// SetDisplayMode switches between Brief, Detailed, and ExtraDetailed.
func (p *Pane) SetDisplayMode(mode models.DisplayMode) {
	if mode == p.displayMode {
		return
	}
	p.displayMode = mode
	p.engine.SetDisplayMode(mode)
	p.recomputeLayout()
	p.InvalidateAll()
	p.persistViewState()
}

// SetSort changes the active sort field and direction.
func (p *Pane) SetSort(field models.SortField, direction models.SortDirection) {
	p.sortField = field
	p.sortDirection = direction
	p.model.ApplySort(field, direction)
	p.recomputeLayout()
	p.InvalidateAll()
	p.persistViewState()
}

// SelectByPredicate selects items whose display name satisfies fn; when
// replace is set the previous selection is discarded first.
func (p *Pane) SelectByPredicate(fn func(name string) bool, replace bool) {
	p.model.SelectByPredicate(fn, replace)
	p.InvalidateAll()
}

// Model exposes the item model for hosts and tests.
func (p *Pane) Model() *models.ItemModel { return p.model }

// Engine exposes the layout engine for hosts and tests.
func (p *Pane) Engine() *layout.Engine { return p.engine }

// Overlay exposes the overlay controller.
func (p *Pane) Overlay() *overlay.Controller { return p.overlayCtl }

// Input exposes the input controller; hosts translate OS events into its
// Handle methods.
func (p *Pane) Input() *input.Controller { return p.inputCtl }

// History exposes the pane's recent-activity window for diagnostics.
func (p *Pane) History() *diag.History { return p.history }

// SetStorageRoot records the pane's storage root; changing it clears the
// focus memory.
func (p *Pane) SetStorageRoot(root string) {
	p.focusMem.SetRoot(root)
}

// RequestFileOperation forwards a file operation to the host's handler.
// Without a handler it returns plugin.ErrNotSupported; the plugin's own
// copy/move/delete/rename operations are not called.
func (p *Pane) RequestFileOperation(req plugin.FileOperationRequest) error {
	if p.cb.FileOperationRequest != nil {
		return p.cb.FileOperationRequest(req)
	}
	return plugin.ErrNotSupported
}

// RequestProperties asks the host to show a properties sheet for path.
func (p *Pane) RequestProperties(path string) error {
	if p.cb.PropertiesRequest != nil {
		return p.cb.PropertiesRequest(path)
	}
	return plugin.ErrNotSupported
}

// --- Sizing and invalidation ---

// SetClientSize resizes the pane in device pixels.
func (p *Pane) SetClientSize(widthPx, heightPx int) {
	p.clientWidthPx, p.clientHeightPx = widthPx, heightPx
	if err := p.renderer.SetSize(widthPx, heightPx); err != nil {
		p.log.Render("resize: %v", err)
	}
	dpi := p.renderer.DPI()
	p.engine.SetClientSize(float64(widthPx)/dpi, float64(heightPx)/dpi)
	p.recomputeLayout()
	p.InvalidateAll()
}

// NotifyDPIChanged re-measures estimated text metrics after a DPI or
// font change.
func (p *Pane) NotifyDPIChanged() {
	p.engine.InvalidateMetrics()
	p.recomputeLayout()
	p.InvalidateAll()
}

// InvalidateAll schedules a full repaint. Safe from any goroutine (it is
// used as the overlay/input invalidate hook).
func (p *Pane) InvalidateAll() {
	p.invalidMu.Lock()
	p.invalidAll = true
	p.invalidMu.Unlock()
}

// invalidateItem accumulates one item's tile rectangle into the dirty
// region.
func (p *Pane) invalidateItem(index int) {
	items := p.model.Items()
	if index < 0 || index >= len(items) {
		return
	}
	dpi := p.renderer.DPI()
	b := items[index].Bounds
	offset := p.engine.HorizontalOffset()
	rect := render.PixelRect{
		Left:   int((b.Left - offset) * dpi),
		Top:    int(b.Top * dpi),
		Right:  int((b.Right-offset)*dpi) + 1,
		Bottom: int(b.Bottom*dpi) + 1,
	}
	p.invalidMu.Lock()
	p.invalid = p.invalid.Union(rect)
	p.invalidMu.Unlock()
}

// NeedsPaint reports whether any region awaits redraw.
func (p *Pane) NeedsPaint() bool {
	p.invalidMu.Lock()
	defer p.invalidMu.Unlock()
	return p.invalidAll || !p.invalid.Empty()
}

// RenderFrame draws the accumulated dirty region and presents it.
func (p *Pane) RenderFrame() error {
	p.invalidMu.Lock()
	invalid := p.invalid
	if p.invalidAll {
		invalid = render.PixelRect{Right: p.clientWidthPx, Bottom: p.clientHeightPx}
	}
	p.invalid = render.PixelRect{}
	p.invalidAll = false
	p.invalidMu.Unlock()

	frame := render.Frame{
		Invalid:      invalid,
		PaneFocused:  p.inputCtl.PaneFocused(),
		Search:       p.inputCtl.Indicator(),
		Overlay:      p.overlayCtl.Current(),
		OverlayFade:  p.overlayCtl.FadeProgress(),
		EmptyMessage: defaultEmptyState,
	}

	err := p.renderer.Render(p.model.Items(), frame)
	if err == nil {
		p.diags.MarkFirstPaint()
	} else {
		// Device was discarded; repaint fully next frame.
		p.InvalidateAll()
	}
	return err
}

// --- Enumeration pipeline (UI side) ---

// onPayload merges a posted enumeration result into the model.
func (p *Pane) onPayload(payload *models.Payload) {
	if payload.Generation != p.worker.Generation() {
		payload.Release()
		return
	}

	p.overlayCtl.Disarm()

	record := diag.EnumerationRecord{
		Folder:   payload.Folder,
		Items:    len(payload.Items),
		Duration: time.Since(p.enumStarted),
		Failed:   payload.Status != models.StatusOK,
	}
	p.history.RecordEnumeration(record)

	if payload.Status != models.StatusOK {
		p.overlayCtl.ShowStatus(payload.Status)
		payload.Release()
		return
	}

	p.overlayCtl.ShowStatus(models.StatusOK)
	restoreName := ""
	if name, ok := p.focusMem.Recall(payload.Folder); ok {
		restoreName = name
	}
	p.adoptItems(payload.Folder, payload.Items, payload)

	if restoreName != "" {
		for i, it := range p.model.Items() {
			if it.DisplayName == restoreName {
				p.model.FocusIndex(i)
				p.ensureVisible(i)
				break
			}
		}
	}

	p.diags.MarkFirstEnumeration()
	if p.cb.EnumerationCompleted != nil {
		p.cb.EnumerationCompleted(payload.Folder)
	}
}

// adoptItems swaps the model's list and arena owner: the old payload is
// released only after the new items (with their carried-over state) are
// in place.
func (p *Pane) adoptItems(folder string, items []*models.Item, payload *models.Payload) {
	p.model.AdoptPayload(folder, items, 0)
	p.engine.InvalidateItemMetrics()

	old := p.payload
	p.payload = payload
	if old != nil {
		old.Release()
	}

	p.recomputeLayout()
	p.queueIconLoading()
	p.startIdleTimer()
	p.InvalidateAll()
}

func (p *Pane) recomputeLayout() {
	p.engine.Compute(p.model.Items())
	p.engine.ReleaseDistantState(p.model.Items())
}

// --- Icon pipeline (UI side) ---

// queueIconLoading groups unresolved items by icon index and hands the
// prioritized queue to the worker. Deferred while no device exists; the
// renderer re-invokes it on device creation.
func (p *Pane) queueIconLoading() {
	if !p.renderer.HasDevice() {
		return
	}

	items := p.model.Items()
	if len(items) == 0 {
		return
	}
	device := p.renderer.DeviceID()

	views := p.iconViews(items)
	result := iconloader.Build(views, p.cache, device)

	// Cache hits are stamped synchronously; only misses travel to the
	// worker.
	for iconIndex, indices := range result.StampedIndices {
		bmp, ok := p.cache.GetCachedBitmap(iconIndex, device)
		if !ok {
			continue
		}
		for _, idx := range indices {
			if idx < len(items) && items[idx].IconIndex == iconIndex {
				items[idx].Icon = bmp
			}
		}
	}
	if len(result.StampedIndices) > 0 {
		p.InvalidateAll()
	}

	if len(result.Queue) > 0 {
		batch := p.worker.QueueIconLoading(result.Queue, device, iconSizeDip)
		stats := iconloader.Stats{BatchID: batch}
		stats.Merge(result)
		p.log.IconLoad("batch %d queued: total=%d visible=%d cacheHits=%d unique=%d",
			stats.BatchID, stats.TotalRequests, stats.VisibleRequests, stats.CacheHits, stats.UniqueIconsQueued)
	}
}

func (p *Pane) iconViews(items []*models.Item) []iconloader.ItemIconView {
	visStart, visEnd := p.engine.VisibleItemRange(items)
	views := make([]iconloader.ItemIconView, len(items))
	for i, it := range items {
		views[i] = iconloader.ItemIconView{
			Index:     i,
			IconIndex: it.IconIndex,
			HasBitmap: it.Icon != nil,
			Visible:   i >= visStart && i < visEnd,
		}
	}
	return views
}

// BoostIconLoadingForVisibleRange promotes queued icon groups the new
// viewport needs; if the queue has drained but items still lack icons it
// rebuilds the queue. Idempotent without a scroll in between.
func (p *Pane) BoostIconLoadingForVisibleRange() {
	items := p.model.Items()
	if len(items) == 0 || !p.renderer.HasDevice() {
		return
	}

	visStart, visEnd := p.engine.VisibleItemRange(items)
	needed := iconloader.VisibleRangeIconIndices(p.iconViews(items), visStart, visEnd, iconBoostBuffer)
	if len(needed) == 0 {
		return
	}
	if !p.worker.BoostVisible(needed) {
		p.queueIconLoading()
	}
}

// onIconMessage converts a posted icon handle on the UI thread and stamps
// every carried item whose icon index still matches.
func (p *Pane) onIconMessage(msg enumerate.IconMessage) {
	if msg.BatchID != p.worker.IconBatchID() {
		if msg.Handle != nil {
			msg.Handle.Release()
		}
		return
	}

	bmp := msg.Cached
	if bmp == nil && msg.Handle != nil {
		converted, err := p.renderer.ConvertIcon(msg.Handle, msg.IconIndex, iconSizeDip)
		if err != nil {
			p.log.IconLoad("convert iconIndex=%d: %v", msg.IconIndex, err)
			return
		}
		bmp = converted
	}
	if bmp == nil {
		return
	}

	items := p.model.Items()
	applied := 0
	lastApplied := -1
	for _, idx := range msg.ItemIndices {
		if idx < 0 || idx >= len(items) {
			continue
		}
		it := items[idx]
		if it.IconIndex != msg.IconIndex || it.Icon != nil {
			continue
		}
		it.Icon = bmp
		applied++
		lastApplied = idx
	}

	switch applied {
	case 0:
	case 1:
		p.invalidateItem(lastApplied)
	default:
		p.InvalidateAll()
	}
}

// --- Idle pre-shaping ---

func (p *Pane) startIdleTimer() {
	p.stopIdleTimer()
	if !p.engine.ScheduleIdleBatch(p.model.Items()) {
		return
	}
	p.idleTimer = time.AfterFunc(idleTickInterval, func() {
		p.Post(p.idleTick)
	})
}

func (p *Pane) idleTick() {
	if p.closed || p.idleTimer == nil {
		return
	}
	if p.engine.ProcessIdleBatch(p.model.Items()) {
		p.idleTimer = time.AfterFunc(idleTickInterval, func() {
			p.Post(p.idleTick)
		})
		return
	}
	p.idleTimer = nil
}

func (p *Pane) stopIdleTimer() {
	if p.idleTimer != nil {
		p.idleTimer.Stop()
		p.idleTimer = nil
	}
}

// --- Navigation helpers ---

func (p *Pane) activate(it *models.Item) {
	if it.IsDirectory {
		p.SetFolder(joinPath(p.folder, it.DisplayName))
		return
	}

	path := joinPath(p.folder, it.DisplayName)
	if p.cb.OpenFileRequest != nil && p.cb.OpenFileRequest(path) {
		return
	}
	if p.cb.ViewFileRequest != nil {
		p.cb.ViewFileRequest(ViewFileRequest{Path: path})
	}
}

func (p *Pane) navigateToParent() {
	if p.folder == "" {
		return
	}
	parent := filepath.Dir(p.folder)
	if parent == p.folder {
		p.emitNavigateUpFromRoot()
		return
	}
	p.SetFolder(parent)
}

func (p *Pane) emitNavigateUpFromRoot() {
	if p.cb.NavigateUpFromRoot != nil {
		p.cb.NavigateUpFromRoot()
	}
}

// atStorageRoot reports whether the current folder is a storage-root
// equivalent (its own parent).
func (p *Pane) atStorageRoot() bool {
	if p.folder == "" {
		return true
	}
	return filepath.Dir(p.folder) == p.folder
}

func (p *Pane) ensureVisible(index int) {
	before := p.engine.HorizontalOffset()
	p.engine.EnsureVisible(p.model.Items(), index)
	if p.engine.HorizontalOffset() != before {
		p.recomputeLayout()
		p.BoostIconLoadingForVisibleRange()
		p.InvalidateAll()
	}
}

func (p *Pane) onSearchChanged() {
	if p.cb.IncrementalSearchChanged != nil {
		p.cb.IncrementalSearchChanged()
	}
}

// Scroll applies a horizontal offset change (host scrollbar), snapping
// to column boundaries and boosting icon work for the new viewport.
func (p *Pane) Scroll(offsetDip float64) {
	p.engine.SetHorizontalOffset(p.engine.SnapOffsetToColumn(offsetDip))
	p.recomputeLayout()
	p.BoostIconLoadingForVisibleRange()
	p.InvalidateAll()
}

// persistViewState writes the pane's sort and display mode back to the
// configuration.
func (p *Pane) persistViewState() {
	if p.cfg == nil {
		return
	}
	_ = config.GetManager().Update(func(c *config.Config) {
		switch p.displayMode {
		case models.Brief:
			c.Display.Mode = "list"
		case models.ExtraDetailed:
			c.Display.Mode = "large-icons"
		default:
			c.Display.Mode = "details"
		}
		switch p.sortField {
		case models.SortByExtension:
			c.Sort.Field = "extension"
		case models.SortByTime:
			c.Sort.Field = "time"
		case models.SortBySize:
			c.Sort.Field = "size"
		case models.SortByAttributes:
			c.Sort.Field = "attributes"
		default:
			c.Sort.Field = "name"
		}
		c.Sort.Descending = p.sortDirection == models.Descending
	})
}

// joinPath joins with the separator family the folder already uses, so
// plugin paths (which may be Windows-style on any host) stay consistent.
func joinPath(folder, name string) string {
	if folder == "" {
		return name
	}
	if strings.Contains(folder, "\\") && !strings.Contains(folder, "/") {
		return strings.TrimRight(folder, "\\") + "\\" + name
	}
	return strings.TrimRight(folder, "/") + "/" + name
}
