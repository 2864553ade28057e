// Package completion keeps just-completed items on screen for a short grace
// window before the hide-completed filter removes them.
package completion

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultGrace is how long a completed item stays visible under an active
// hide-completed filter.
const DefaultGrace = time.Second

// Scheduler runs f once after d. Implementations need not support
// cancellation.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// RealScheduler fires tasks on the runtime timer.
func RealScheduler() Scheduler {
	return realScheduler{}
}

// Tracker owns the pending-hide set. All mutations, including timer
// callbacks, are serialised on mu.
type Tracker struct {
	mu      sync.Mutex
	pending map[int64]struct{}
	delay   time.Duration
	sched   Scheduler
	onHide  func(id int64)
	logger  *slog.Logger
}

// NewTracker creates a tracker. onHide, if non-nil, is called after an id
// leaves the pending set because its grace window elapsed. It is invoked
// without the tracker lock held.
func NewTracker(delay time.Duration, sched Scheduler, onHide func(id int64), logger *slog.Logger) *Tracker {
	if delay <= 0 {
		delay = DefaultGrace
	}
	if sched == nil {
		sched = RealScheduler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		pending: make(map[int64]struct{}),
		delay:   delay,
		sched:   sched,
		onHide:  onHide,
		logger:  logger,
	}
}

// Delay returns the grace window length.
func (t *Tracker) Delay() time.Duration {
	return t.delay
}

// OnComplete records that id just became completed. With the hide filter
// off nothing is tracked, matching the list where completed items stay.
func (t *Tracker) OnComplete(id int64, hidingCompleted bool) {
	if !hidingCompleted {
		return
	}

	t.mu.Lock()
	t.pending[id] = struct{}{}
	t.mu.Unlock()

	t.logger.Debug("grace window started", "item_id", id, "delay", t.delay)
	t.sched.AfterFunc(t.delay, func() { t.OnTimerFire(id) })
}

// OnUncomplete drops id from the pending set immediately. A timer already
// scheduled for it becomes a no-op.
func (t *Tracker) OnUncomplete(id int64) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

// OnTimerFire ends the grace window for id. The removal is guarded on
// current membership, so stale timers do nothing.
func (t *Tracker) OnTimerFire(id int64) {
	t.mu.Lock()
	_, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Debug("stale grace timer ignored", "item_id", id)
		return
	}
	t.logger.Debug("grace window elapsed", "item_id", id)
	if t.onHide != nil {
		t.onHide(id)
	}
}

// Forget removes a deleted item from the pending set.
func (t *Tracker) Forget(id int64) {
	t.OnUncomplete(id)
}

func (t *Tracker) IsPending(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[id]
	return ok
}

// Pending returns a snapshot of the pending set.
func (t *Tracker) Pending() map[int64]struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[int64]struct{}, len(t.pending))
	for id := range t.pending {
		out[id] = struct{}{}
	}
	return out
}
