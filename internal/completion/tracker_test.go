package completion

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// manualScheduler queues tasks and runs them in schedule order on demand.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []func()
	delay []time.Duration
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, f)
	m.delay = append(m.delay, d)
}

func (m *manualScheduler) fireAll() {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()
	for _, f := range tasks {
		f()
	}
}

func (m *manualScheduler) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func newTestTracker(t *testing.T) (*Tracker, *manualScheduler, *[]int64) {
	t.Helper()
	sched := &manualScheduler{}
	var hidden []int64
	tr := NewTracker(0, sched, func(id int64) { hidden = append(hidden, id) }, slog.Default())
	return tr, sched, &hidden
}

func TestOnCompleteWithHideOff(t *testing.T) {
	tr, sched, _ := newTestTracker(t)

	tr.OnComplete(1, false)

	if tr.IsPending(1) {
		t.Error("item should not be pending when hide is off")
	}
	if sched.len() != 0 {
		t.Errorf("expected no scheduled tasks, got %d", sched.len())
	}
}

func TestGraceWindowThenHide(t *testing.T) {
	tr, sched, hidden := newTestTracker(t)

	tr.OnComplete(7, true)
	if !tr.IsPending(7) {
		t.Fatal("item should be pending during grace window")
	}
	if sched.delay[0] != DefaultGrace {
		t.Errorf("delay = %v, want %v", sched.delay[0], DefaultGrace)
	}

	sched.fireAll()

	if tr.IsPending(7) {
		t.Error("item should leave pending set when timer fires")
	}
	if len(*hidden) != 1 || (*hidden)[0] != 7 {
		t.Errorf("hidden = %v, want [7]", *hidden)
	}
}

func TestUncompleteDuringGraceCancelsHide(t *testing.T) {
	tr, sched, hidden := newTestTracker(t)

	tr.OnComplete(3, true)
	tr.OnUncomplete(3)

	if tr.IsPending(3) {
		t.Error("uncompleted item should not be pending")
	}

	sched.fireAll()

	if len(*hidden) != 0 {
		t.Errorf("stale timer should be a no-op, hidden = %v", *hidden)
	}
}

func TestRecompleteSharesFirstTimer(t *testing.T) {
	tr, sched, hidden := newTestTracker(t)

	tr.OnComplete(5, true)
	tr.OnUncomplete(5)
	tr.OnComplete(5, true)

	if sched.len() != 2 {
		t.Fatalf("expected 2 scheduled tasks, got %d", sched.len())
	}

	// The first timer finds the id pending again and hides it; the second
	// is then stale.
	sched.fireAll()

	if len(*hidden) != 1 {
		t.Errorf("expected exactly one hide, got %v", *hidden)
	}
	if tr.IsPending(5) {
		t.Error("item should not be pending after timers fired")
	}
}

func TestTimerFireUnknownID(t *testing.T) {
	tr, _, hidden := newTestTracker(t)

	tr.OnTimerFire(99)

	if len(*hidden) != 0 {
		t.Errorf("unexpected hide for unknown id: %v", *hidden)
	}
}

func TestForget(t *testing.T) {
	tr, sched, hidden := newTestTracker(t)

	tr.OnComplete(4, true)
	tr.Forget(4)
	sched.fireAll()

	if tr.IsPending(4) || len(*hidden) != 0 {
		t.Error("forgotten item should never be hidden")
	}
}

func TestPendingSnapshotIsCopy(t *testing.T) {
	tr, _, _ := newTestTracker(t)

	tr.OnComplete(1, true)
	snap := tr.Pending()
	delete(snap, 1)

	if !tr.IsPending(1) {
		t.Error("mutating snapshot should not affect tracker")
	}
}

func TestRealSchedulerFires(t *testing.T) {
	defer goleak.VerifyNone(t)

	done := make(chan int64, 1)
	tr := NewTracker(10*time.Millisecond, RealScheduler(), func(id int64) { done <- id }, slog.Default())

	tr.OnComplete(11, true)

	select {
	case id := <-done:
		if id != 11 {
			t.Errorf("hidden id = %d, want 11", id)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for grace timer")
	}
	if tr.IsPending(11) {
		t.Error("item should not be pending after timer")
	}
}

func TestConcurrentToggles(t *testing.T) {
	defer goleak.VerifyNone(t)

	tr := NewTracker(time.Millisecond, RealScheduler(), nil, slog.Default())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			tr.OnComplete(id, true)
			if id%2 == 0 {
				tr.OnUncomplete(id)
			}
		}(int64(i))
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for len(tr.Pending()) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := len(tr.Pending()); n != 0 {
		t.Errorf("expected empty pending set, got %d", n)
	}
}
