package overlay

import (
	"sync"
	"time"
)

// TickFunc is one animation subscriber. It receives the tick time and
// returns true while it still needs further ticks; returning false
// unsubscribes it.
type TickFunc func(now time.Time) bool

// Dispatcher is the shared 16 ms animation tick source used by the
// overlay panel and the incremental-search pill. It starts its ticker
// when the first subscriber arrives and stops it when the subscriber
// list drains, so an idle pane costs no timer wakeups. Subscribe and
// Unsubscribe are safe while a tick is being delivered: changes made
// mid-tick are buffered and applied after the pass.
type Dispatcher struct {
	interval time.Duration
	post     func(func())

	mu            sync.Mutex
	subscriptions []subscription
	pendingAdds   []subscription
	nextID        uint64
	inTick        bool
	running       bool
	stop          chan struct{}
}

type subscription struct {
	id            uint64
	tick          TickFunc
	pendingRemove bool
}

var (
	sharedDispatcher *Dispatcher
	dispatcherOnce   sync.Once
)

// SharedDispatcher returns the process-wide dispatcher, ticking at the
// default 16 ms interval with callbacks invoked on the ticker goroutine.
// Panes that need ticks marshaled onto their UI thread construct their
// own with NewDispatcher.
func SharedDispatcher() *Dispatcher {
	dispatcherOnce.Do(func() {
		sharedDispatcher = NewDispatcher(16*time.Millisecond, nil)
	})
	return sharedDispatcher
}

// NewDispatcher creates a dispatcher ticking at interval. post, when
// non-nil, marshals each tick pass onto the caller's UI thread.
func NewDispatcher(interval time.Duration, post func(func())) *Dispatcher {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Dispatcher{interval: interval, post: post}
}

// Subscribe registers tick and returns a subscription id (never 0 for a
// non-nil callback). The ticker starts if it was idle.
func (d *Dispatcher) Subscribe(tick TickFunc) uint64 {
	if tick == nil {
		return 0
	}

	d.mu.Lock()
	d.nextID++
	entry := subscription{id: d.nextID, tick: tick}
	if d.inTick {
		d.pendingAdds = append(d.pendingAdds, entry)
	} else {
		d.subscriptions = append(d.subscriptions, entry)
	}
	d.ensureRunningLocked()
	id := entry.id
	d.mu.Unlock()
	return id
}

// Unsubscribe removes the subscription with the given id. Safe to call
// with 0 or an already-removed id.
func (d *Dispatcher) Unsubscribe(id uint64) {
	if id == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	markPendingRemove(d.subscriptions, id)
	markPendingRemove(d.pendingAdds, id)
	if !d.inTick {
		d.compactLocked()
	}
}

func markPendingRemove(subs []subscription, id uint64) {
	for i := range subs {
		if subs[i].id == id {
			subs[i].pendingRemove = true
		}
	}
}

func (d *Dispatcher) ensureRunningLocked() {
	if d.running {
		return
	}
	d.running = true
	d.stop = make(chan struct{})
	go d.loop(d.stop)
}

func (d *Dispatcher) loop(stop chan struct{}) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if d.post != nil {
				done := make(chan struct{})
				d.post(func() {
					d.tickOnce(now)
					close(done)
				})
				<-done
			} else {
				d.tickOnce(now)
			}

			d.mu.Lock()
			if len(d.subscriptions) == 0 && len(d.pendingAdds) == 0 {
				d.running = false
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
		}
	}
}

// tickOnce delivers one pass over the subscriber list. Callbacks that
// return false, and any Unsubscribe calls made during the pass, are
// compacted out afterward.
func (d *Dispatcher) tickOnce(now time.Time) {
	d.mu.Lock()
	d.inTick = true
	subs := d.subscriptions
	d.mu.Unlock()

	for i := range subs {
		if subs[i].pendingRemove {
			continue
		}
		if !subs[i].tick(now) {
			subs[i].pendingRemove = true
		}
	}

	d.mu.Lock()
	d.inTick = false
	d.subscriptions = append(d.subscriptions, d.pendingAdds...)
	d.pendingAdds = nil
	d.compactLocked()
	d.mu.Unlock()
}

func (d *Dispatcher) compactLocked() {
	kept := d.subscriptions[:0]
	for _, s := range d.subscriptions {
		if !s.pendingRemove {
			kept = append(kept, s)
		}
	}
	d.subscriptions = kept
}

// ActiveSubscribers returns the current subscriber count, used by tests
// and diagnostics to confirm the auto-stop behavior.
func (d *Dispatcher) ActiveSubscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscriptions) + len(d.pendingAdds)
}
