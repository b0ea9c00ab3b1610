package page

import (
	"fmt"
)

// Event names dispatched by the layer and by the widgets it consumes.
const (
	EventClick  = "click"
	EventChange = "change"
	EventInput  = "input"
	EventBlur   = "blur"
	EventSubmit = "submit"
	EventShown  = "shown"
	EventHidden = "hidden"
)

// Event is dispatched to the listeners of a single element.
type Event struct {
	Type      string
	Target    *Element
	Submitter *Element

	prevented bool
	stopped   bool
}

// PreventDefault cancels the target's default action.
func (ev *Event) PreventDefault() { ev.prevented = true }

func (ev *Event) DefaultPrevented() bool { return ev.prevented }

// StopImmediatePropagation keeps the remaining listeners from running.
func (ev *Event) StopImmediatePropagation() { ev.stopped = true }

// Listener handles an event. A returned error is reported through the
// document's error hook and never reaches the caller of Dispatch.
type Listener func(ev *Event) error

// On appends a listener for typ.
func (e *Element) On(typ string, l Listener) {
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	e.listeners[typ] = append(e.listeners[typ], l)
}

// onFirst registers l ahead of every listener already attached for typ.
func (e *Element) onFirst(typ string, l Listener) {
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	e.listeners[typ] = append([]Listener{l}, e.listeners[typ]...)
}

// ListenerCount reports how many listeners are attached for typ.
func (e *Element) ListenerCount(typ string) int {
	return len(e.listeners[typ])
}

// Dispatch runs target's listeners for ev in registration order and then the
// target's default action unless a listener prevented it. It reports whether
// the default action was allowed to run.
func (d *Document) Dispatch(target *Element, ev *Event) bool {
	ev.Target = target
	listeners := append([]Listener(nil), target.listeners[ev.Type]...)
	for _, l := range listeners {
		if ev.stopped {
			break
		}
		d.guard(func() error { return l(ev) })
	}
	if ev.prevented {
		return false
	}
	if target.Action != nil {
		d.guard(target.Action)
	}
	return true
}

// Click activates target. A click on a submit button that is not prevented
// submits the enclosing form.
func (d *Document) Click(target *Element) bool {
	if target.Disabled {
		return false
	}
	if !d.Dispatch(target, &Event{Type: EventClick}) {
		return false
	}
	if target.IsSubmitButton() {
		if form := target.Form(); form != nil {
			return d.Submit(form, target)
		}
	}
	return true
}

// Submit dispatches a submit event on form. The form's Action only runs when
// no listener blocked the submission.
func (d *Document) Submit(form, submitter *Element) bool {
	return d.Dispatch(form, &Event{Type: EventSubmit, Submitter: submitter})
}

// Change sets a field's value the way a user edit would and notifies listeners.
func (d *Document) Change(field *Element, value string) {
	field.Value = value
	d.Dispatch(field, &Event{Type: EventInput})
	d.Dispatch(field, &Event{Type: EventChange})
}

// Blur notifies field that it lost focus.
func (d *Document) Blur(field *Element) {
	if d.focused == field {
		d.focused = nil
	}
	d.Dispatch(field, &Event{Type: EventBlur})
}

// guard runs f and reports any error or panic through the error hook.
func (d *Document) guard(f func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.report(fmt.Errorf("page: handler panic: %v", r))
		}
	}()
	if err := f(); err != nil {
		d.report(err)
	}
}

func (d *Document) report(err error) {
	if d.onError != nil {
		d.onError(err)
	}
}
