package page

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 19, 8, 30, 0, 0, time.UTC)

func newTestLayer(t *testing.T, opts Options, children ...*Element) (*Layer, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler(testNow)
	l := NewLayer(NewDocument(children...), sched, opts)
	require.True(t, l.Init())
	return l, sched
}

func cartItem(price, qty string, extra ...Option) *Element {
	input := El("input", append([]Option{Type("number"), Class(ClassQuantityInput), Value(qty)}, extra...)...)
	return El("div", Class(ClassCartItem), Attr("data-price", price), Children(
		El("div", Class(ClassQuantityCtl), Children(
			El("button", Type("button"), Class(ClassQuantityBtn), Attr("data-action", "decrease")),
			input,
			El("button", Type("button"), Class(ClassQuantityBtn), Attr("data-action", "increase")),
		)),
		El("span", Class(ClassItemSubtotal)),
	))
}

func cartSummary() []*Element {
	return []*Element{
		El("span", ID(IDCartSubtotal)),
		El("span", ID(IDCartTax)),
		El("span", ID(IDCartTotal)),
	}
}

func stepButton(item *Element, action string) *Element {
	return item.First(func(n *Element) bool {
		return n.HasClass(ClassQuantityBtn) && n.AttrOr("data-action", "") == action
	})
}

func TestUpdateCartTotalsRoundsAtDisplay(t *testing.T) {
	first := cartItem("10.00", "2")
	second := cartItem("5.00", "3")
	l, _ := newTestLayer(t, Options{}, append([]*Element{first, second}, cartSummary()...)...)

	totals := l.UpdateCartTotals()

	assert.Equal(t, "35", totals.Subtotal.String())
	assert.Equal(t, "2.975", totals.Tax.String())
	assert.Equal(t, "37.975", totals.Total.String())

	doc := l.Document()
	assert.Equal(t, "$20.00", first.FirstByClass(ClassItemSubtotal).Text)
	assert.Equal(t, "$15.00", second.FirstByClass(ClassItemSubtotal).Text)
	assert.Equal(t, "$35.00", doc.GetByID(IDCartSubtotal).Text)
	assert.Equal(t, "$2.98", doc.GetByID(IDCartTax).Text)
	assert.Equal(t, "$37.98", doc.GetByID(IDCartTotal).Text)
}

func TestUpdateCartTotalsEmptyCart(t *testing.T) {
	l, _ := newTestLayer(t, Options{}, cartSummary()...)

	l.UpdateCartTotals()

	doc := l.Document()
	assert.Equal(t, "$0.00", doc.GetByID(IDCartSubtotal).Text)
	assert.Equal(t, "$0.00", doc.GetByID(IDCartTax).Text)
	assert.Equal(t, "$0.00", doc.GetByID(IDCartTotal).Text)
}

func TestUpdateCartTotalsSkipsMissingLineDisplay(t *testing.T) {
	bare := El("div", Class(ClassCartItem), Attr("data-price", "4.50"), Children(
		El("input", Class(ClassQuantityInput), Value("2")),
	))
	l, _ := newTestLayer(t, Options{}, append([]*Element{bare}, cartSummary()...)...)

	require.NotPanics(t, func() { l.UpdateCartTotals() })
	assert.Equal(t, "$9.00", l.Document().GetByID(IDCartSubtotal).Text)
}

func TestUpdateCartTotalsIsIdempotent(t *testing.T) {
	l, _ := newTestLayer(t, Options{}, append([]*Element{cartItem("3.25", "3")}, cartSummary()...)...)

	first := l.UpdateCartTotals()
	second := l.UpdateCartTotals()

	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, "$9.75", l.Document().GetByID(IDCartSubtotal).Text)
}

func TestUpdateCartTotalsKeepsZeroTaxRate(t *testing.T) {
	opts := Options{TaxRate: decimal.NewNullDecimal(decimal.Zero)}
	l, _ := newTestLayer(t, opts, append([]*Element{cartItem("10.00", "2")}, cartSummary()...)...)

	totals := l.UpdateCartTotals()

	assert.True(t, totals.Tax.IsZero())
	assert.Equal(t, "$0.00", l.Document().GetByID(IDCartTax).Text)
	assert.Equal(t, "$20.00", l.Document().GetByID(IDCartTotal).Text)
}

func TestQuantityStepperClampsToDefaults(t *testing.T) {
	item := cartItem("2.00", "1")
	l, _ := newTestLayer(t, Options{}, append([]*Element{item}, cartSummary()...)...)
	doc := l.Document()
	input := item.FirstByClass(ClassQuantityInput)

	for i := 0; i < 3; i++ {
		doc.Click(stepButton(item, "decrease"))
	}
	assert.Equal(t, "1", input.Value)

	for i := 0; i < 15; i++ {
		doc.Click(stepButton(item, "increase"))
	}
	assert.Equal(t, "10", input.Value)
	assert.Equal(t, "$20.00", doc.GetByID(IDCartSubtotal).Text)
}

func TestQuantityStepperHonoursDeclaredBounds(t *testing.T) {
	item := cartItem("1.00", "3", Attr("min", "2"), Attr("max", "4"))
	l, _ := newTestLayer(t, Options{}, item)
	input := item.FirstByClass(ClassQuantityInput)

	assert.Equal(t, 4, l.StepQuantity(input, 1))
	assert.Equal(t, 4, l.StepQuantity(input, 1))
	assert.Equal(t, 3, l.StepQuantity(input, -1))
	assert.Equal(t, 2, l.StepQuantity(input, -1))
	assert.Equal(t, 2, l.StepQuantity(input, -1))
	assert.Equal(t, "2", input.Value)
}

func TestTotalsOnlyRecomputeOnChange(t *testing.T) {
	item := cartItem("5.00", "1")
	l, _ := newTestLayer(t, Options{}, append([]*Element{item}, cartSummary()...)...)
	doc := l.Document()
	input := item.FirstByClass(ClassQuantityInput)

	input.Value = "4"
	assert.Empty(t, doc.GetByID(IDCartSubtotal).Text)

	doc.Change(input, "4")
	assert.Equal(t, "$20.00", doc.GetByID(IDCartSubtotal).Text)

	doc.Change(input, "99")
	assert.Equal(t, "10", input.Value)
	assert.Equal(t, "$50.00", doc.GetByID(IDCartSubtotal).Text)
}

func TestCheckValuePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		value string
		c     Constraints
		want  ValidationResult
	}{
		{"missing required", "  ", Constraints{Required: true, Type: "email"}, ValidationResult{Message: MsgRequired}},
		{"empty optional", "", Constraints{Type: "email"}, ValidationResult{Valid: true}},
		{"bad email", "not-an-email", Constraints{Required: true, Type: "email", Pattern: ".*"}, ValidationResult{Message: MsgEmail}},
		{"bad phone", "abc", Constraints{Type: "tel", Pattern: "[0-9]+"}, ValidationResult{Message: MsgPhone}},
		{"pattern after type", "+63 912 345 6789", Constraints{Type: "tel", Pattern: "[0-9]+"}, ValidationResult{Message: MsgPattern}},
		{"number out of range", "12", Constraints{Type: "number", Max: "10"}, ValidationResult{Message: MsgInvalid}},
		{"bad date", "19/10/2026", Constraints{Type: "date"}, ValidationResult{Message: MsgInvalid}},
		{"good email", "guest@example.com", Constraints{Required: true, Type: "email"}, ValidationResult{Valid: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckValue(tt.value, tt.c))
		})
	}
}

func TestValidateFieldSetsExactlyOneMarker(t *testing.T) {
	field := El("input", Type("email"), Name("customer_email"), Required())
	form := El("form", Children(field))

	field.Value = "guest@example.com"
	require.True(t, ValidateField(field).Valid)
	assert.Equal(t, []string{ClassValid}, field.Classes())

	field.Value = "guest"
	require.False(t, ValidateField(field).Valid)
	assert.Equal(t, []string{ClassInvalid}, field.Classes())

	field.Value = "guest@example.com"
	require.True(t, ValidateField(field).Valid)
	assert.Equal(t, []string{ClassValid}, field.Classes())
	assert.Empty(t, form.ByClass(ClassFeedback))
}

func TestValidateFieldIsIdempotent(t *testing.T) {
	field := El("input", Type("tel"), Name("customer_phone"), Required())
	form := El("form", Children(field, El("button", Type("submit"))))

	ValidateField(field)
	ValidateField(field)
	ValidateField(field)

	notes := form.ByClass(ClassFeedback)
	require.Len(t, notes, 1)
	assert.Equal(t, MsgRequired, notes[0].Text)
	assert.Same(t, notes[0], field.NextSibling())

	field.Value = "12"
	ValidateField(field)
	notes = form.ByClass(ClassFeedback)
	require.Len(t, notes, 1)
	assert.Equal(t, MsgPhone, notes[0].Text)
}

func checkoutForm(mode, address string) (*Element, *int) {
	sent := 0
	form := El("form", ID(IDCheckoutForm),
		Action(func() error { sent++; return nil }),
		Children(
			El("input", Name("customer_name"), Required(), Value("Ana Reyes")),
			El("input", Type("email"), Name("customer_email"), Required(), Value("ana@example.com")),
			El("input", Type("tel"), Name("customer_phone"), Required(), Value("+63 912 345 6789")),
			El("input", Type("radio"), Name("order_type"), Value("delivery"), func(e *Element) { e.Checked = mode == "delivery" }),
			El("input", Type("radio"), Name("order_type"), Value("pickup"), func(e *Element) { e.Checked = mode == "pickup" }),
			El("textarea", Name("customer_address"), Value(address)),
			El("button", Type("submit"), Text("Place Order")),
		))
	return form, &sent
}

func TestValidateCheckoutFormDeliveryAddressLength(t *testing.T) {
	form, _ := checkoutForm("delivery", "  123456789  ")
	assert.False(t, ValidateCheckoutForm(form))
	addr := form.FirstByName("customer_address")
	assert.True(t, addr.HasClass(ClassInvalid))
	assert.Equal(t, MsgDeliveryAddress, addr.NextSibling().Text)

	form, _ = checkoutForm("delivery", "1234567890")
	assert.True(t, ValidateCheckoutForm(form))

	form, _ = checkoutForm("pickup", "")
	assert.True(t, ValidateCheckoutForm(form))
}

func TestValidateCheckoutFormKeepsAddressPatternFailure(t *testing.T) {
	form, _ := checkoutForm("delivery", "Main Street Lucena")
	addr := form.FirstByName("customer_address")
	addr.Required = true
	addr.Pattern = "[0-9]+ .*"

	assert.False(t, ValidateCheckoutForm(form))
	assert.True(t, addr.HasClass(ClassInvalid))
	assert.False(t, addr.HasClass(ClassValid))
	require.NotNil(t, addr.NextSibling())
	assert.Equal(t, MsgPattern, addr.NextSibling().Text)
	assert.Len(t, form.ByClass(ClassFeedback), 1)

	addr.Value = "12 Main Street Lucena"
	assert.True(t, ValidateCheckoutForm(form))
	assert.True(t, addr.HasClass(ClassValid))
	assert.Empty(t, form.ByClass(ClassFeedback))
}

func TestCheckoutSubmitBlockedWhenInvalid(t *testing.T) {
	form, sent := checkoutForm("delivery", "short")
	l, _ := newTestLayer(t, Options{}, form)
	btn := form.First((*Element).IsSubmitButton)

	assert.False(t, l.Document().Click(btn))
	assert.Zero(t, *sent)
	assert.False(t, btn.Disabled)
}

func reservationForm(date, party string) (*Element, *int) {
	sent := 0
	form := El("form", ID(IDReservationForm),
		Action(func() error { sent++; return nil }),
		Children(
			El("input", Type("date"), Name("reservation_date"), Value(date)),
			El("select", Name("number_of_people"), Value(party)),
			El("button", Type("submit"), Text("Reserve")),
		))
	return form, &sent
}

func TestValidateReservationFormDate(t *testing.T) {
	tests := []struct {
		date string
		now  time.Time
		want bool
	}{
		{"2026-10-18", testNow, false},
		{"2026-10-19", testNow, true},
		{"2026-10-20", testNow, true},
		{"2026-10-19", time.Date(2026, time.October, 19, 23, 59, 59, 0, time.UTC), true},
		{"2026-10-18", time.Date(2026, time.October, 19, 0, 0, 1, 0, time.UTC), false},
	}
	for _, tt := range tests {
		form, _ := reservationForm(tt.date, "4")
		l := NewLayer(NewDocument(form), NewManualScheduler(tt.now), Options{})
		assert.Equal(t, tt.want, l.ValidateReservationForm(form), "date %s at %s", tt.date, tt.now)
	}
}

func TestReservationLargePartyNeverSubmits(t *testing.T) {
	form, sent := reservationForm("2026-10-25", LargePartySentinel)
	l, _ := newTestLayer(t, Options{ReservationPhone: "+63 42 555 0101"}, form)

	assert.False(t, l.Document().Submit(form, nil))
	assert.Zero(t, *sent)

	alerts := l.Document().Root.ByClass(ClassAlert)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].HasClass("alert-info"))
	assert.Contains(t, alerts[0].TextContent(), "+63 42 555 0101")
}

func TestModalCloseClearsState(t *testing.T) {
	name := El("input", Name("name"), Required())
	price := El("input", Type("number"), Name("price"), Required())
	form := El("form", Class(ClassNeedsValidity), Children(El("input", Type("hidden"), Name("product_id")), name, price))
	modal := El("div", Class(ClassModal), Children(form))
	l, _ := newTestLayer(t, Options{}, modal)
	doc := l.Document()

	l.ShowModal(modal)
	assert.Same(t, name, doc.Focused())

	price.Value = "abc"
	assert.False(t, ValidateForm(form))
	require.NotEmpty(t, form.ByClass(ClassFeedback))

	l.HideModal(modal)
	l.ShowModal(modal)

	assert.Empty(t, name.Value)
	assert.Empty(t, price.Value)
	assert.Empty(t, form.ByClass(ClassFeedback))
	for _, f := range form.Find((*Element).IsField) {
		assert.False(t, f.HasClass(ClassValid))
		assert.False(t, f.HasClass(ClassInvalid))
	}
}

func TestModalReopensWithEmptyFields(t *testing.T) {
	name := El("input", Name("name"), Value("Chicken Adobo"))
	spicy := El("input", Type("checkbox"), Name("spicy"), Checked())
	form := El("form", Children(name, spicy))
	modal := El("div", Class(ClassModal), Children(form))
	l, _ := newTestLayer(t, Options{}, modal)

	l.ShowModal(modal)
	l.HideModal(modal)
	l.ShowModal(modal)

	assert.Empty(t, name.Value)
	assert.False(t, spicy.Checked)
}

func TestAlertAutoDismiss(t *testing.T) {
	l, sched := newTestLayer(t, Options{})

	first := l.ShowAlert("Item added to cart", SeveritySuccess)
	sched.Advance(2 * time.Second)
	second := l.ShowAlert("Cart updated", SeverityInfo)

	container := l.Document().GetByID(IDAlertContainer)
	require.NotNil(t, container)
	assert.Len(t, container.Children(), 2)

	sched.Advance(3 * time.Second)
	assert.False(t, first.Visible())
	assert.True(t, second.Visible())

	sched.Advance(2 * time.Second)
	assert.False(t, second.Visible())
}

func TestAlertManualDismissCancelsTimer(t *testing.T) {
	l, sched := newTestLayer(t, Options{})

	a := l.ShowAlert("Saved", SeveritySuccess)
	l.Document().Click(a.Element().FirstByClass("btn-close"))

	assert.False(t, a.Visible())
	assert.Zero(t, sched.Pending())
}

func TestPreRenderedAlertsAreDismissed(t *testing.T) {
	flash := El("div", Class(ClassAlert, "alert-success"), Text("Order placed"))
	_, sched := newTestLayer(t, Options{}, El("main", Children(flash)))

	sched.Advance(AlertTimeout)
	assert.False(t, flash.Attached())
}

func TestDestructiveActionNeedsConfirmation(t *testing.T) {
	deleted := 0
	laterListener := 0
	btn := El("button", Type("button"), Class(ClassConfirmDelete),
		Action(func() error { deleted++; return nil }))
	btn.On(EventClick, func(*Event) error { laterListener++; return nil })

	answer := false
	var asked string
	l, _ := newTestLayer(t, Options{Confirmer: ConfirmFunc(func(msg string) bool {
		asked = msg
		return answer
	})}, btn)
	doc := l.Document()

	assert.False(t, doc.Click(btn))
	assert.Equal(t, DefaultConfirmMessage, asked)
	assert.Zero(t, deleted)
	assert.Zero(t, laterListener)

	answer = true
	assert.True(t, doc.Click(btn))
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, laterListener)
}

func TestConfirmedSubmitButton(t *testing.T) {
	removed := 0
	btn := El("button", Type("submit"), Attr("data-confirm", "Remove this product?"), Text("Delete"))
	form := El("form", Action(func() error { removed++; return nil }), Children(btn))
	l, _ := newTestLayer(t, Options{}, form)

	assert.False(t, l.Document().Click(btn))
	assert.Zero(t, removed)
	assert.False(t, btn.Disabled)
}

func TestSubmitLockout(t *testing.T) {
	form, sent := checkoutForm("pickup", "")
	l, sched := newTestLayer(t, Options{}, form)
	btn := form.First((*Element).IsSubmitButton)

	require.True(t, l.Document().Click(btn))
	assert.Equal(t, 1, *sent)
	assert.True(t, btn.Disabled)
	assert.Equal(t, BusyLabel, btn.Text)

	assert.False(t, l.Document().Click(btn), "disabled button ignores clicks")

	sched.Advance(SubmitLockTimeout - time.Millisecond)
	assert.True(t, btn.Disabled)

	sched.Advance(time.Millisecond)
	assert.False(t, btn.Disabled)
	assert.Equal(t, "Place Order", btn.Text)
}

func TestInitBindsOnce(t *testing.T) {
	item := cartItem("1.00", "1")
	l, _ := newTestLayer(t, Options{}, item)
	input := item.FirstByClass(ClassQuantityInput)
	before := input.ListenerCount(EventChange)

	assert.False(t, l.Init())
	assert.True(t, l.Bound())
	assert.Equal(t, before, input.ListenerCount(EventChange))
}

func TestHandlerFailureShowsGlobalNotice(t *testing.T) {
	btn := El("button", Type("button"))
	panicky := El("button", Type("button"))
	l, _ := newTestLayer(t, Options{}, btn, panicky)
	doc := l.Document()

	btn.On(EventClick, func(*Event) error { return errors.New("boom") })
	panicky.On(EventClick, func(*Event) error { panic("kaput") })

	doc.Click(btn)
	doc.Click(panicky)

	alerts := doc.Root.ByClass(ClassAlert)
	require.Len(t, alerts, 2)
	for _, a := range alerts {
		assert.True(t, a.HasClass("alert-danger"))
		assert.Contains(t, a.TextContent(), GenericErrorMessage)
	}
}

func TestActiveOrderRefresh(t *testing.T) {
	reloads := 0
	reloader := ReloadFunc(func() { reloads++ })

	l, sched := newTestLayer(t, Options{Reloader: reloader},
		El("span", Class(ClassOrderStatus), Text("Out for Delivery")))
	require.True(t, l.RefreshPending())
	sched.Advance(RefreshInterval)
	assert.Equal(t, 1, reloads)

	l, _ = newTestLayer(t, Options{Reloader: reloader},
		El("span", Class(ClassOrderStatus), Text("completed")))
	assert.False(t, l.RefreshPending())
}

func TestIsActiveStatus(t *testing.T) {
	for _, s := range []string{"pending", "Preparing", "READY", "out_for_delivery", "out-for-delivery"} {
		assert.True(t, IsActiveStatus(s), s)
	}
	for _, s := range []string{"completed", "cancelled", ""} {
		assert.False(t, IsActiveStatus(s), s)
	}
}

func TestDebounce(t *testing.T) {
	calls := 0
	l, sched := newTestLayer(t, Options{})
	d := l.Debounce(300*time.Millisecond, func() { calls++ })

	d.Call()
	sched.Advance(200 * time.Millisecond)
	d.Call()
	sched.Advance(200 * time.Millisecond)
	assert.Zero(t, calls)

	sched.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, calls)

	d.Call()
	d.Cancel()
	sched.Advance(time.Second)
	assert.Equal(t, 1, calls)
}

func TestEventLoopRunsTimersOnLoop(t *testing.T) {
	loop := NewEventLoop(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	fired := make(chan struct{})
	loop.AfterFunc(5*time.Millisecond, func() { close(fired) })
	stopped := loop.AfterFunc(5*time.Millisecond, func() { t.Error("stopped timer fired") })
	require.True(t, stopped.Stop())

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestIsLargeParty(t *testing.T) {
	assert.True(t, IsLargeParty("13+"))
	assert.True(t, IsLargeParty("15"))
	assert.False(t, IsLargeParty("12"))
	assert.False(t, IsLargeParty(""))
}
