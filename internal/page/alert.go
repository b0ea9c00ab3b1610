package page

import (
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

const (
	// AlertTimeout is how long an alert stays up without a manual dismiss.
	AlertTimeout = 5 * time.Second

	IDAlertContainer = "alert-container"
	ClassAlert       = "alert"

	GenericErrorMessage = "Something went wrong. Please try again."
)

// Alert is a transient notice shown by ShowAlert.
type Alert struct {
	el    *Element
	timer Timer
}

func (a *Alert) Element() *Element { return a.el }

// Visible reports whether the alert is still in the tree.
func (a *Alert) Visible() bool { return a.el.Attached() }

// Dismiss removes the alert and cancels its pending auto-dismiss.
func (a *Alert) Dismiss() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.el.Remove()
}

// ShowAlert renders a notice into the alert container, below any alerts
// already showing, and removes it after AlertTimeout.
func (l *Layer) ShowAlert(message string, severity Severity) *Alert {
	if severity == "" {
		severity = SeverityInfo
	}
	closeBtn := El("button", Type("button"), Class("btn-close"), Attr("aria-label", "Close"))
	el := El("div",
		Class(ClassAlert, "alert-"+string(severity), "alert-dismissible"),
		Attr("role", "alert"),
		Children(El("span", Class("alert-message"), Text(message)), closeBtn),
	)
	a := &Alert{el: el}
	closeBtn.On(EventClick, func(*Event) error {
		a.Dismiss()
		return nil
	})

	l.alertContainer().AppendChild(el)
	a.timer = l.after(AlertTimeout, func() error {
		el.Remove()
		return nil
	})
	return a
}

func (l *Layer) alertContainer() *Element {
	if c := l.doc.GetByID(IDAlertContainer); c != nil {
		return c
	}
	c := El("div", ID(IDAlertContainer))
	l.doc.Root.InsertChild(0, c)
	return c
}

// bindAlerts schedules removal of alerts that were already on the page.
func (l *Layer) bindAlerts() {
	for _, el := range l.doc.Root.ByClass(ClassAlert) {
		if btn := el.FirstByClass("btn-close"); btn != nil {
			btn.On(EventClick, func(*Event) error {
				el.Remove()
				return nil
			})
		}
		l.after(AlertTimeout, func() error {
			el.Remove()
			return nil
		})
	}
}
