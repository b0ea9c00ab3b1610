package page

import (
	"strings"
	"sync"
	"time"
)

// RefreshInterval is the delay before an order-tracking page reloads while
// the order is still moving.
const RefreshInterval = 30 * time.Second

const ClassOrderStatus = "order-status"

var activeStatuses = map[string]bool{
	"pending":          true,
	"preparing":        true,
	"ready":            true,
	"out-for-delivery": true,
}

// NormalizeStatus lowercases a status label and joins its words with hyphens,
// so "Out for Delivery" and "out_for_delivery" compare equal.
func NormalizeStatus(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.ReplaceAll(label, "_", " ")
	return strings.Join(strings.Fields(label), "-")
}

// IsActiveStatus reports whether an order in this status is still in progress.
func IsActiveStatus(label string) bool {
	return activeStatuses[NormalizeStatus(label)]
}

// Reloader reloads the whole page.
type Reloader interface {
	Reload()
}

type ReloadFunc func()

func (f ReloadFunc) Reload() { f() }

func (l *Layer) scheduleRefresh() Timer {
	if l.opts.Reloader == nil {
		return nil
	}
	el := l.doc.Root.FirstByClass(ClassOrderStatus)
	if el == nil || !IsActiveStatus(el.TextContent()) {
		return nil
	}
	return l.after(RefreshInterval, func() error {
		l.opts.Reloader.Reload()
		return nil
	})
}

// Debouncer delays fn until calls stop arriving for the wait period.
type Debouncer struct {
	sched Scheduler
	wait  time.Duration
	fn    func()

	mu    sync.Mutex
	timer Timer
}

func NewDebouncer(sched Scheduler, wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{sched: sched, wait: wait, fn: fn}
}

// Call restarts the wait period.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.sched.AfterFunc(d.wait, d.fn)
}

// Cancel drops a pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
