// Package page keeps a rendered page's validation feedback and money totals
// consistent with its current form and cart state.
//
// A page is an explicit tree (Document) handed to a Layer. Layer.Init binds
// every listener once; after that the layer reacts to dispatched events and
// to scheduler callbacks only, all on one thread of control.
package page

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const DefaultReservationPhone = "+1 (555) 123-4567"

type Options struct {
	// TaxRate falls back to DefaultTaxRate only when it is not set; a set
	// zero rate is kept.
	TaxRate          decimal.NullDecimal
	ReservationPhone string
	// Confirmer answers destructive-action prompts. Without one every
	// prompt is declined.
	Confirmer Confirmer
	// Reloader is called when an active order page is due for a refresh.
	Reloader Reloader
}

// Layer is the interaction layer bound to one page.
type Layer struct {
	doc   *Document
	sched Scheduler
	opts  Options

	bound   bool
	refresh Timer
}

func NewLayer(doc *Document, sched Scheduler, opts Options) *Layer {
	if !opts.TaxRate.Valid {
		opts.TaxRate = decimal.NewNullDecimal(DefaultTaxRate)
	}
	if opts.ReservationPhone == "" {
		opts.ReservationPhone = DefaultReservationPhone
	}
	if opts.Confirmer == nil {
		opts.Confirmer = ConfirmFunc(func(string) bool { return false })
	}
	l := &Layer{doc: doc, sched: sched, opts: opts}
	doc.onError = l.reportError
	return l
}

func (l *Layer) Document() *Document { return l.doc }

// Init attaches every page listener. It runs at most once per layer; later
// calls return false and change nothing.
func (l *Layer) Init() bool {
	if l.bound {
		return false
	}
	l.bound = true

	l.bindConfirmations()
	l.bindForms()
	l.bindCart()
	l.bindModals()
	l.bindAlerts()
	l.refresh = l.scheduleRefresh()
	return true
}

func (l *Layer) Bound() bool { return l.bound }

// RefreshPending reports whether an auto refresh is scheduled.
func (l *Layer) RefreshPending() bool { return l.refresh != nil }

// Debounce returns a debouncer driven by the layer's scheduler.
func (l *Layer) Debounce(wait time.Duration, fn func()) *Debouncer {
	return NewDebouncer(l.sched, wait, func() { l.doc.guard(func() error { fn(); return nil }) })
}

// after schedules f with the same error reporting as event listeners.
func (l *Layer) after(d time.Duration, f func() error) Timer {
	return l.sched.AfterFunc(d, func() { l.doc.guard(f) })
}

func (l *Layer) reportError(err error) {
	log.Error().Err(err).Msg("page handler failed")
	l.ShowAlert(GenericErrorMessage, SeverityDanger)
}
