// Package overlay implements the pane's alert panel controller: the
// debounced busy overlay shown during slow enumerations, the
// error taxonomy mapping enumeration failures onto titled alerts, and the
// shared animation tick dispatcher driving panel and search-pill fades.
package overlay

import (
	"sync"
	"time"

	"github.com/redsalamander/folderview/logger"
	"github.com/redsalamander/folderview/models"
)

// Kind is the overlay's state.
type Kind int

const (
	KindNone Kind = iota
	KindBusy
	KindInformation
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindBusy:
		return "busy"
	case KindInformation:
		return "information"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "none"
	}
}

// Overlay is one alert panel's state.
type Overlay struct {
	Kind        Kind
	Severity    Kind
	Title       string
	Message     string
	Closable    bool
	BlocksInput bool
	StartTick   time.Time
}

// fadeDuration is the panel's visibility transition length.
const fadeDuration = 180 * time.Millisecond

// Controller owns the pane's single overlay slot. All methods must be
// called on the UI thread; the debounce timer marshals its firing back
// through the post func.
type Controller struct {
	log        *logger.Logger
	post       func(func())
	dispatcher *Dispatcher
	invalidate func()

	debounce time.Duration

	// mu guards the overlay slot and fade state: in production every
	// mutation is marshaled onto the UI thread through post, but a nil
	// post (tests, headless hosts) lets the debounce timer and tick
	// goroutines touch them directly.
	mu      sync.Mutex
	current *Overlay

	busyTimer   *time.Timer
	busyArmedMu sync.Mutex
	busyArmed   bool
	busySeq     uint64
	onCancel    func()

	fadeStart      time.Time
	fadingIn       bool
	fadeProgress   float64
	subscriptionID uint64
	now            func() time.Time
}

// NewController creates an overlay controller. post marshals timer
// firings onto the UI thread; invalidate requests a repaint of the pane.
func NewController(debounce time.Duration, dispatcher *Dispatcher, post func(func()), invalidate func()) *Controller {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if post == nil {
		post = func(fn func()) { fn() }
	}
	if invalidate == nil {
		invalidate = func() {}
	}
	return &Controller{
		log:        logger.Get(),
		post:       post,
		dispatcher: dispatcher,
		invalidate: invalidate,
		debounce:   debounce,
		now:        time.Now,
	}
}

// Current returns the visible overlay, or nil.
func (c *Controller) Current() *Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// BlocksInput reports whether the visible overlay swallows input events
// (Tab and Esc always pass through, handled by the input controller).
func (c *Controller) BlocksInput() bool {
	o := c.Current()
	return o != nil && o.BlocksInput
}

// FadeProgress returns the current visibility fade in [0, 1], for the
// renderer's alpha ramp.
func (c *Controller) FadeProgress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fadeProgress
}

// ArmBusy arms the busy-overlay debounce timer for an enumeration that
// just started. If the enumeration completes before the timer fires, no
// overlay is shown. onCancel runs when the user cancels the busy overlay
// (it must bump the enumeration generation).
func (c *Controller) ArmBusy(onCancel func()) {
	c.onCancel = onCancel

	c.busyArmedMu.Lock()
	c.busySeq++
	seq := c.busySeq
	c.busyArmed = true
	c.busyArmedMu.Unlock()

	if c.busyTimer != nil {
		c.busyTimer.Stop()
	}
	c.busyTimer = time.AfterFunc(c.debounce, func() {
		c.post(func() { c.busyFired(seq) })
	})
}

func (c *Controller) busyFired(seq uint64) {
	c.busyArmedMu.Lock()
	live := c.busyArmed && seq == c.busySeq
	c.busyArmedMu.Unlock()
	if !live {
		return
	}

	c.show(&Overlay{
		Kind:        KindBusy,
		Severity:    KindInformation,
		Title:       "Reading folder",
		Message:     "This is taking longer than usual.",
		Closable:    false,
		BlocksInput: true,
	})
}

// Disarm clears the pending busy timer and hides a visible busy overlay,
// called when an enumeration completes.
func (c *Controller) Disarm() {
	c.busyArmedMu.Lock()
	c.busyArmed = false
	c.busyArmedMu.Unlock()
	if c.busyTimer != nil {
		c.busyTimer.Stop()
	}

	if o := c.Current(); o != nil && o.Kind == KindBusy {
		c.hide()
	}
}

// CancelBusy handles the busy overlay's Cancel action (button or Esc):
// the pending enumeration is canceled through onCancel and the overlay
// transitions to a closable "canceled" informational state.
func (c *Controller) CancelBusy() {
	if o := c.Current(); o == nil || o.Kind != KindBusy {
		return
	}
	if c.onCancel != nil {
		c.onCancel()
	}

	c.busyArmedMu.Lock()
	c.busyArmed = false
	c.busyArmedMu.Unlock()

	c.show(&Overlay{
		Kind:        KindInformation,
		Severity:    KindInformation,
		Title:       "Enumeration canceled",
		Message:     "The folder listing was canceled before it finished.",
		Closable:    true,
		BlocksInput: false,
	})
}

// Dismiss hides a closable overlay. Returns false if the overlay refuses
// (busy overlays are canceled, not dismissed).
func (c *Controller) Dismiss() bool {
	if o := c.Current(); o == nil || !o.Closable {
		return false
	}
	c.hide()
	return true
}

// ShowStatus classifies a failed enumeration status and shows the
// corresponding alert. StatusOK hides any
// visible error overlay.
func (c *Controller) ShowStatus(status models.Status) {
	if status == models.StatusOK {
		if o := c.Current(); o != nil && o.Kind != KindBusy {
			c.hide()
		}
		return
	}

	o := Classify(status)
	c.log.Overlay("%s: %s (status=%d)", o.Title, o.Message, status)
	c.show(o)
}

// Classify maps an enumeration status onto the alert taxonomy.
func Classify(status models.Status) *Overlay {
	switch status {
	case models.StatusNetworkUnreachable:
		return &Overlay{
			Kind:     KindInformation,
			Severity: KindInformation,
			Title:    "Disconnected",
			Message:  "The folder's location is not reachable.",
			Closable: false,
		}
	case models.StatusAuthenticationFailed:
		return &Overlay{
			Kind:     KindError,
			Severity: KindError,
			Title:    "Login failed",
			Message:  "The server rejected the supplied credentials.",
			Closable: true,
		}
	case models.StatusCertificateFailed:
		return &Overlay{
			Kind:     KindError,
			Severity: KindError,
			Title:    "Certificate failed",
			Message:  "The server's certificate could not be verified.",
			Closable: true,
		}
	case models.StatusAccessDenied:
		return &Overlay{
			Kind:     KindError,
			Severity: KindError,
			Title:    "Access denied",
			Message:  "You do not have permission to list this folder.",
			Closable: true,
		}
	default:
		return &Overlay{
			Kind:     KindError,
			Severity: KindError,
			Title:    "Enumeration failed",
			Message:  "The folder listing could not be read.",
			Closable: true,
		}
	}
}

func (c *Controller) show(o *Overlay) {
	c.mu.Lock()
	o.StartTick = c.now()
	c.current = o
	c.fadingIn = true
	c.fadeStart = o.StartTick
	if c.dispatcher == nil {
		c.fadeProgress = 1 // no tick source: appear immediately
	}
	c.startTicksLocked()
	c.mu.Unlock()
	c.invalidate()
}

func (c *Controller) hide() {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.fadingIn = false
	c.fadeStart = c.now()
	if c.dispatcher == nil {
		c.fadeProgress = 0
	}
	c.startTicksLocked()
	c.mu.Unlock()
	c.invalidate()
}

// startTicksLocked subscribes the controller's tick callback while an
// overlay is present or a visibility transition is in flight; the
// callback returning false drops the subscription, which lets the
// dispatcher stop itself once nothing animates.
func (c *Controller) startTicksLocked() {
	if c.dispatcher == nil || c.subscriptionID != 0 {
		return
	}
	c.subscriptionID = c.dispatcher.Subscribe(func(now time.Time) bool {
		more := c.tick(now)
		if !more {
			c.mu.Lock()
			c.subscriptionID = 0
			c.mu.Unlock()
		}
		return more
	})
}

// tick advances the fade and requests a repaint; it returns whether more
// ticks are needed.
func (c *Controller) tick(now time.Time) bool {
	c.mu.Lock()
	elapsed := now.Sub(c.fadeStart)
	progress := float64(elapsed) / float64(fadeDuration)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}

	if c.fadingIn {
		c.fadeProgress = progress
	} else {
		c.fadeProgress = 1 - progress
	}
	more := progress < 1 || (c.current != nil && c.current.Kind == KindBusy)
	c.mu.Unlock()

	c.invalidate()
	return more
}

// Close releases the controller's timer and tick subscription.
func (c *Controller) Close() {
	if c.busyTimer != nil {
		c.busyTimer.Stop()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dispatcher != nil && c.subscriptionID != 0 {
		c.dispatcher.Unsubscribe(c.subscriptionID)
		c.subscriptionID = 0
	}
}
