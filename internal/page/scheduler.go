package page

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Timer is the cancel handle of a deferred callback.
type Timer interface {
	// Stop cancels the callback. It reports false when the callback already
	// ran or was stopped before.
	Stop() bool
}

// Scheduler supplies the current time and deferred callbacks. Callbacks must
// run on the same single thread of control as event dispatch.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// EventLoop serializes posted work and timer callbacks on the goroutine that
// calls Run, which gives page handlers a single-threaded world.
type EventLoop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

func NewEventLoop(buffer int) *EventLoop {
	return &EventLoop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Post queues f to run on the loop. It returns false once the loop stopped.
func (l *EventLoop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- f:
		return true
	case <-l.done:
		return false
	}
}

// Run executes queued work until ctx is cancelled.
func (l *EventLoop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.tasks:
			f()
		}
	}
}

func (l *EventLoop) Now() time.Time { return time.Now() }

// AfterFunc posts f to the loop once d elapses.
func (l *EventLoop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.fired.CompareAndSwap(false, true) {
				f()
			}
		})
	})
	return t
}

type loopTimer struct {
	timer *time.Timer
	fired atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.fired.CompareAndSwap(false, true)
}

// ManualScheduler is a Scheduler whose clock only moves when Advance is
// called. Due callbacks run synchronously inside Advance.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*manualTimer
}

func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{sched: s, due: s.now.Add(d), seq: s.seq, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Pending reports how many callbacks are still scheduled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way in due-time order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		sort.SliceStable(s.pending, func(i, j int) bool {
			if s.pending[i].due.Equal(s.pending[j].due) {
				return s.pending[i].seq < s.pending[j].seq
			}
			return s.pending[i].due.Before(s.pending[j].due)
		})
		if len(s.pending) == 0 || s.pending[0].due.After(target) {
			s.now = target
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.now = next.due
		s.mu.Unlock()

		next.f()
	}
}

type manualTimer struct {
	sched *ManualScheduler
	due   time.Time
	seq   int
	f     func()
}

func (t *manualTimer) Stop() bool {
	s := t.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}
