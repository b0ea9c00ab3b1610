package page

import (
	"time"
)

const (
	// SubmitLockTimeout re-enables a locked submit button even when the
	// request it started never came back.
	SubmitLockTimeout = 10 * time.Second

	BusyLabel = "Processing..."

	ClassConfirmDelete = "confirm-delete"
	ClassNeedsValidity = "needs-validation"

	IDCheckoutForm    = "checkout-form"
	IDReservationForm = "reservation-form"

	DefaultConfirmMessage = "Are you sure you want to delete this item? This action cannot be undone."
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// LockSubmit disables btn and swaps its label for BusyLabel until
// SubmitLockTimeout passes. The returned timer restores it early.
func (l *Layer) LockSubmit(btn *Element) Timer {
	label := btn.Text
	btn.Disabled = true
	btn.Text = BusyLabel
	return l.after(SubmitLockTimeout, func() error {
		btn.Disabled = false
		btn.Text = label
		return nil
	})
}

func (l *Layer) bindConfirmations() {
	destructive := l.doc.Root.Find(func(n *Element) bool {
		return n.HasClass(ClassConfirmDelete) || n.HasAttr("data-confirm")
	})
	for _, el := range destructive {
		msg := el.AttrOr("data-confirm", "")
		if msg == "" {
			msg = DefaultConfirmMessage
		}
		el.onFirst(EventClick, func(ev *Event) error {
			if !l.opts.Confirmer.Confirm(msg) {
				ev.PreventDefault()
				ev.StopImmediatePropagation()
			}
			return nil
		})
	}
}

func (l *Layer) bindForms() {
	for _, form := range l.doc.Root.ByTag("form") {
		for _, f := range form.Find(needsValidation) {
			check := func(*Event) error {
				ValidateField(f)
				return nil
			}
			f.On(EventBlur, check)
			f.On(EventInput, check)
		}

		switch {
		case form.ID == IDCheckoutForm:
			form.On(EventSubmit, func(ev *Event) error {
				if !ValidateCheckoutForm(form) {
					ev.PreventDefault()
				}
				return nil
			})
		case form.ID == IDReservationForm:
			form.On(EventSubmit, func(ev *Event) error {
				if !l.ValidateReservationForm(form) {
					ev.PreventDefault()
				}
				return nil
			})
		case form.HasClass(ClassNeedsValidity):
			form.On(EventSubmit, func(ev *Event) error {
				if !ValidateForm(form) {
					ev.PreventDefault()
				}
				return nil
			})
		}

		// Registered after validation so a blocked submit never locks the button.
		form.On(EventSubmit, func(ev *Event) error {
			if ev.DefaultPrevented() {
				return nil
			}
			btn := ev.Submitter
			if btn == nil {
				btn = form.First((*Element).IsSubmitButton)
			}
			if btn == nil || btn.Disabled {
				return nil
			}
			l.LockSubmit(btn)
			return nil
		})
	}
}

// ValidateReservationForm blocks reservations dated before today and
// diverts large parties to a phone call.
func (l *Layer) ValidateReservationForm(form *Element) bool {
	ok := true
	if date := form.FirstByName("reservation_date"); date != nil && date.Value != "" {
		res := CheckReservationDate(date.Value, l.sched.Now())
		Mark(date, res)
		ok = ok && res.Valid
	}
	if IsLargeParty(FieldValue(form, "number_of_people")) {
		l.ShowAlert(LargePartyMessage(l.opts.ReservationPhone), SeverityInfo)
		ok = false
	}
	return ok
}

// LargePartyMessage is shown instead of booking a party of 13 or more.
func LargePartyMessage(phone string) string {
	return "For parties of 13 or more people, please call us directly at " + phone + "."
}
