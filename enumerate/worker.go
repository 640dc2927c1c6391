package enumerate

import (
	"context"
	"sync"
	"time"

	"github.com/redsalamander/folderview/fsadapter"
	"github.com/redsalamander/folderview/iconcache"
	"github.com/redsalamander/folderview/iconloader"
	"github.com/redsalamander/folderview/logger"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/plugin"
)

// IconMessage is one extracted icon posted to the UI thread: either a
// handle still to be converted, or a bitmap already cached for the target
// device. The apply step must verify each item's IconIndex still matches
// and that BatchID has not advanced.
type IconMessage struct {
	BatchID     uint64
	IconIndex   int32
	ItemIndices []int
	Handle      plugin.IconHandle
	Cached      *iconcache.Bitmap
}

// PostPayloadFunc delivers an owned enumeration payload to the UI thread.
type PostPayloadFunc func(*models.Payload)

// PostIconFunc delivers an owned icon message to the UI thread.
type PostIconFunc func(IconMessage)

// offscreenYield is the pause inserted every offscreenYieldStride
// off-screen icon posts so boosted visible work can interleave.
const (
	offscreenYield       = time.Millisecond
	offscreenYieldStride = 25
)

// Worker is the single background thread per pane. It blocks
// on a condition variable and wakes for either a pending enumeration or
// queued icon-load groups; it never touches the Item Model directly.
type Worker struct {
	adapter *fsadapter.Adapter
	cache   *iconcache.Cache
	log     *logger.Logger

	postPayload PostPayloadFunc
	postIcon    PostIconFunc

	mu   sync.Mutex
	cond *sync.Cond

	pendingFolder    string
	pendingRequested bool
	generation       uint64

	iconQueue   []iconloader.Request
	iconBatchID uint64
	iconDevice  iconcache.DeviceID
	iconSizeDip float64
	iconStats   iconloader.Stats

	stopping bool
	done     chan struct{}

	// offscreenPosted is only touched on the worker goroutine.
	offscreenPosted int

	cancelMu    sync.Mutex
	cancelRun   context.CancelFunc
	lifetimeCtx context.Context
	lifetime    context.CancelFunc
}

// NewWorker creates the pane's enumeration worker and starts its
// goroutine. postPayload and postIcon must marshal onto the UI thread.
func NewWorker(adapter *fsadapter.Adapter, cache *iconcache.Cache, postPayload PostPayloadFunc, postIcon PostIconFunc) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		adapter:     adapter,
		cache:       cache,
		log:         logger.Get(),
		postPayload: postPayload,
		postIcon:    postIcon,
		done:        make(chan struct{}),
		lifetimeCtx: ctx,
		lifetime:    cancel,
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// RequestEnumeration queues folder for enumeration, discarding any
// earlier pending request (latest wins), and returns the generation the
// request was stamped with. Any in-flight run for an older generation is
// interrupted.
func (w *Worker) RequestEnumeration(folder string) uint64 {
	w.mu.Lock()
	w.generation++
	generation := w.generation
	w.pendingFolder = folder
	w.pendingRequested = true
	w.mu.Unlock()

	w.interruptRun()
	w.cond.Signal()
	return generation
}

// CancelPending bumps the generation so any in-flight or queued
// enumeration goes stale and returns without posting. Dropped results are
// silent: cancellation is not an error.
func (w *Worker) CancelPending() uint64 {
	w.mu.Lock()
	w.generation++
	generation := w.generation
	w.pendingRequested = false
	w.mu.Unlock()

	w.interruptRun()
	w.cond.Signal()
	return generation
}

// Generation returns the current enumeration generation.
func (w *Worker) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generation
}

// QueueIconLoading replaces the icon deque with a freshly built queue and
// advances the batch id, invalidating any in-flight apply callbacks.
func (w *Worker) QueueIconLoading(queue []iconloader.Request, device iconcache.DeviceID, sizeDip float64) uint64 {
	w.mu.Lock()
	w.iconBatchID++
	batch := w.iconBatchID
	w.iconQueue = queue
	w.iconDevice = device
	w.iconSizeDip = sizeDip
	w.iconStats = iconloader.Stats{BatchID: batch, UniqueIconsQueued: uint64(len(queue))}
	w.mu.Unlock()

	w.cond.Signal()
	return batch
}

// BoostVisible promotes queued groups whose icon indices the viewport now
// needs to the front of the deque. Idempotent when the viewport has not
// changed. Returns false if the deque is empty, in which case the caller
// should rebuild the queue if items still lack icons.
func (w *Worker) BoostVisible(visibleIconIndices []int32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	boosted, did := iconloader.Boost(w.iconQueue, visibleIconIndices)
	w.iconQueue = boosted
	if did {
		w.cond.Signal()
	}
	return len(w.iconQueue) > 0
}

// IconBatchID returns the current icon batch id, used by apply callbacks
// to drop work from a superseded batch.
func (w *Worker) IconBatchID() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.iconBatchID
}

// Stop cancels in-flight work and joins the worker goroutine.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopping {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.stopping = true
	w.mu.Unlock()

	w.lifetime()
	w.interruptRun()
	w.cond.Broadcast()
	<-w.done
}

// interruptRun cancels the context of the currently executing
// enumeration, if any, so it re-checks its generation promptly.
func (w *Worker) interruptRun() {
	w.cancelMu.Lock()
	if w.cancelRun != nil {
		w.cancelRun()
	}
	w.cancelMu.Unlock()
}

func (w *Worker) run() {
	defer close(w.done)

	for {
		w.mu.Lock()
		for !w.stopping && !w.pendingRequested && len(w.iconQueue) == 0 {
			w.cond.Wait()
		}
		if w.stopping {
			w.mu.Unlock()
			return
		}

		if w.pendingRequested {
			folder := w.pendingFolder
			generation := w.generation
			w.pendingRequested = false
			w.mu.Unlock()
			w.runEnumeration(folder, generation)
			continue
		}

		req := w.iconQueue[0]
		w.iconQueue = w.iconQueue[1:]
		batch := w.iconBatchID
		device := w.iconDevice
		sizeDip := w.iconSizeDip
		offscreen := !req.HasVisibleItems
		w.mu.Unlock()

		w.serviceIconGroup(req, batch, device, sizeDip, offscreen)
	}
}

func (w *Worker) runEnumeration(folder string, generation uint64) {
	ctx, cancel := context.WithCancel(w.lifetimeCtx)
	w.cancelMu.Lock()
	w.cancelRun = cancel
	w.cancelMu.Unlock()
	defer func() {
		w.cancelMu.Lock()
		w.cancelRun = nil
		w.cancelMu.Unlock()
		cancel()
	}()

	started := time.Now()
	payload, err := buildListing(ctx, w.adapter, w.cache, folder, generation, w.Generation)
	if err != nil {
		payload = &models.Payload{Generation: generation, Status: models.StatusUnknownError, Folder: folder}
	}
	if payload == nil {
		return // canceled or superseded, dropped silently
	}

	w.mu.Lock()
	current := w.generation
	w.mu.Unlock()
	if current != generation {
		payload.Release()
		return
	}

	w.log.Enumeration("folder=%q items=%d status=%d in %v", folder, len(payload.Items), payload.Status, time.Since(started))
	w.postPayload(payload)
}

// serviceIconGroup extracts one group's icon (at most once per icon
// index) and posts the handle to the UI thread for conversion. Groups
// whose bitmap is already cached skip extraction entirely.
func (w *Worker) serviceIconGroup(req iconloader.Request, batch uint64, device iconcache.DeviceID, sizeDip float64, offscreen bool) {
	w.mu.Lock()
	stale := w.iconBatchID != batch
	w.mu.Unlock()
	if stale {
		return
	}

	msg := IconMessage{BatchID: batch, IconIndex: req.IconIndex, ItemIndices: req.ItemIndices}
	if bmp, ok := w.cache.GetCachedBitmap(req.IconIndex, device); ok {
		msg.Cached = bmp
		w.bumpStats(batch, func(s *iconloader.Stats) { s.CacheHits++ })
	} else {
		handle, err := w.cache.ExtractBitmapHandle(req.IconIndex, sizeDip)
		if err != nil {
			w.bumpStats(batch, func(s *iconloader.Stats) { s.ExtractFailed++ })
			w.maybeLogBatch(batch)
			return // drop the group; items keep their placeholder
		}
		msg.Handle = handle
		w.bumpStats(batch, func(s *iconloader.Stats) { s.Extracted++ })
	}

	w.postIcon(msg)
	w.bumpStats(batch, func(s *iconloader.Stats) { s.Posted++ })
	w.maybeLogBatch(batch)

	if offscreen {
		w.offscreenPosted++
		if w.offscreenPosted%offscreenYieldStride == 0 {
			time.Sleep(offscreenYield)
		}
	}
}

func (w *Worker) bumpStats(batch uint64, update func(*iconloader.Stats)) {
	w.mu.Lock()
	if w.iconBatchID == batch {
		update(&w.iconStats)
	}
	w.mu.Unlock()
}

// maybeLogBatch emits the one-line batch summary once the deque drains.
func (w *Worker) maybeLogBatch(batch uint64) {
	w.mu.Lock()
	stats := w.iconStats
	drained := w.iconBatchID == batch && len(w.iconQueue) == 0
	w.mu.Unlock()
	if drained {
		w.log.IconLoad("batch %d drained: unique=%d extracted=%d failed=%d cacheHits=%d posted=%d",
			stats.BatchID, stats.UniqueIconsQueued, stats.Extracted, stats.ExtractFailed, stats.CacheHits, stats.Posted)
	}
}

// IconStats returns a snapshot of the current batch's counters.
func (w *Worker) IconStats() iconloader.Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.iconStats
}
