package page

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to the cart subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.085")

const (
	DefaultMinQuantity = 1
	DefaultMaxQuantity = 10
)

// CartLine is one priced, quantity-bearing row of the cart.
type CartLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals hold unrounded amounts; rounding happens only when formatting.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals sums lines and derives tax and total from the subtotal.
func ComputeTotals(lines []CartLine, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      subtotal.Mul(taxRate),
		Total:    subtotal.Mul(decimal.NewFromInt(1).Add(taxRate)),
	}
}

// FormatCurrency renders an amount with exactly two decimals.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// ClampQuantity bounds q to [lo, hi].
func ClampQuantity(q, lo, hi int) int {
	if q < lo {
		return lo
	}
	if q > hi {
		return hi
	}
	return q
}

// QuantityBounds reads a quantity field's declared min and max, falling back
// to DefaultMinQuantity and DefaultMaxQuantity.
func QuantityBounds(input *Element) (int, int) {
	lo, hi := DefaultMinQuantity, DefaultMaxQuantity
	if v, err := strconv.Atoi(input.AttrOr("min", "")); err == nil {
		lo = v
	}
	if v, err := strconv.Atoi(input.AttrOr("max", "")); err == nil {
		hi = v
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

const (
	ClassCartItem      = "cart-item"
	ClassQuantityInput = "quantity-input"
	ClassQuantityBtn   = "quantity-btn"
	ClassQuantityCtl   = "quantity-control"
	ClassItemSubtotal  = "item-subtotal"

	IDCartSubtotal = "cart-subtotal"
	IDCartTax      = "cart-tax"
	IDCartTotal    = "cart-total"
)

// CartLines reads every cart line currently in the tree. Unparseable prices
// and quantities count as zero.
func CartLines(root *Element) []CartLine {
	items := root.ByClass(ClassCartItem)
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, cartLineOf(item))
	}
	return lines
}

func cartLineOf(item *Element) CartLine {
	price, err := decimal.NewFromString(strings.TrimSpace(item.AttrOr("data-price", "")))
	if err != nil {
		price = decimal.Zero
	}
	var qty int
	if input := item.FirstByClass(ClassQuantityInput); input != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(input.Value)); err == nil {
			qty = n
		}
	}
	return CartLine{UnitPrice: price, Quantity: qty}
}

// UpdateCartTotals recomputes every line subtotal and the cart summary from
// the tree alone and writes them back. Missing display elements are skipped.
func (l *Layer) UpdateCartTotals() Totals {
	items := l.doc.Root.ByClass(ClassCartItem)
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		line := cartLineOf(item)
		lines = append(lines, line)
		if sub := item.FirstByClass(ClassItemSubtotal); sub != nil {
			sub.Text = FormatCurrency(line.Total())
		}
	}

	totals := ComputeTotals(lines, l.opts.TaxRate.Decimal)
	l.setText(IDCartSubtotal, FormatCurrency(totals.Subtotal))
	l.setText(IDCartTax, FormatCurrency(totals.Tax))
	l.setText(IDCartTotal, FormatCurrency(totals.Total))
	return totals
}

func (l *Layer) setText(id, text string) {
	if e := l.doc.GetByID(id); e != nil {
		e.Text = text
	}
}

// StepQuantity moves a quantity field by delta, clamped to its bounds, and
// fires the change notification a manual edit would when the value moved.
func (l *Layer) StepQuantity(input *Element, delta int) int {
	lo, hi := QuantityBounds(input)
	cur, err := strconv.Atoi(strings.TrimSpace(input.Value))
	if err != nil {
		cur = lo
	}
	next := ClampQuantity(cur+delta, lo, hi)
	if strconv.Itoa(next) != input.Value {
		l.doc.Change(input, strconv.Itoa(next))
	}
	return next
}

func (l *Layer) bindCart() {
	for _, input := range l.doc.Root.ByClass(ClassQuantityInput) {
		input.On(EventChange, func(*Event) error {
			lo, hi := QuantityBounds(input)
			if n, err := strconv.Atoi(strings.TrimSpace(input.Value)); err == nil {
				input.Value = strconv.Itoa(ClampQuantity(n, lo, hi))
			} else {
				input.Value = strconv.Itoa(lo)
			}
			l.UpdateCartTotals()
			return nil
		})
	}

	for _, btn := range l.doc.Root.ByClass(ClassQuantityBtn) {
		btn.On(EventClick, func(ev *Event) error {
			ctl := btn.Closest(func(n *Element) bool { return n.HasClass(ClassQuantityCtl) })
			if ctl == nil {
				return nil
			}
			input := ctl.FirstByClass(ClassQuantityInput)
			if input == nil {
				return nil
			}
			switch btn.AttrOr("data-action", "") {
			case "increase":
				l.StepQuantity(input, 1)
			case "decrease":
				l.StepQuantity(input, -1)
			}
			ev.PreventDefault()
			return nil
		})
	}
}
