package page

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field validation messages, in precedence order.
const (
	MsgRequired = "This field is required."
	MsgEmail    = "Please enter a valid email address."
	MsgPhone    = "Please enter a valid phone number."
	MsgPattern  = "Please match the requested format."
	MsgInvalid  = "Please enter a valid value."

	MsgDeliveryAddress = "Please enter a complete delivery address (at least 10 characters)."
	MsgPastDate        = "Please select today or a future date."
)

const (
	// ClassValid and ClassInvalid are mutually exclusive field markers.
	ClassValid    = "is-valid"
	ClassInvalid  = "is-invalid"
	ClassFeedback = "invalid-feedback"

	MinDeliveryAddressLength = 10
	DateLayout               = "2006-01-02"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
)

// Constraints are the declared rules of a single field.
type Constraints struct {
	Required bool
	Type     string
	Pattern  string
	Min      string
	Max      string
}

type ValidationResult struct {
	Valid   bool
	Message string
}

func valid() ValidationResult { return ValidationResult{Valid: true} }

func invalid(msg string) ValidationResult { return ValidationResult{Message: msg} }

// ConstraintsOf reads the constraints an element declares.
func ConstraintsOf(e *Element) Constraints {
	return Constraints{
		Required: e.Required,
		Type:     e.Type,
		Pattern:  e.Pattern,
		Min:      e.AttrOr("min", ""),
		Max:      e.AttrOr("max", ""),
	}
}

// CheckValue validates value against c. Missing required values win over a
// type mismatch, which wins over a pattern mismatch; anything else the
// value fails gets the generic message. Empty optional values are valid.
func CheckValue(value string, c Constraints) ValidationResult {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		if c.Required {
			return invalid(MsgRequired)
		}
		return valid()
	}

	switch c.Type {
	case "email":
		if !emailPattern.MatchString(trimmed) {
			return invalid(MsgEmail)
		}
	case "tel":
		if !phonePattern.MatchString(trimmed) {
			return invalid(MsgPhone)
		}
	}

	if c.Pattern != "" {
		if re, err := regexp.Compile("^(?:" + c.Pattern + ")$"); err == nil && !re.MatchString(value) {
			return invalid(MsgPattern)
		}
	}

	if !fallbackValid(trimmed, c) {
		return invalid(MsgInvalid)
	}
	return valid()
}

func fallbackValid(value string, c Constraints) bool {
	switch c.Type {
	case "url":
		u, err := url.ParseRequestURI(value)
		return err == nil && u.Scheme != "" && u.Host != ""
	case "date":
		_, err := time.Parse(DateLayout, value)
		return err == nil
	case "number":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		if lo, err := strconv.ParseFloat(c.Min, 64); err == nil && n < lo {
			return false
		}
		if hi, err := strconv.ParseFloat(c.Max, 64); err == nil && n > hi {
			return false
		}
	}
	return true
}

// CheckDeliveryAddress requires at least MinDeliveryAddressLength characters
// once surrounding whitespace is trimmed.
func CheckDeliveryAddress(address string) ValidationResult {
	if len([]rune(strings.TrimSpace(address))) < MinDeliveryAddressLength {
		return invalid(MsgDeliveryAddress)
	}
	return valid()
}

// CheckReservationDate rejects dates strictly before the calendar day of now,
// in now's location. The time of day plays no part.
func CheckReservationDate(value string, now time.Time) ValidationResult {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), now.Location())
	if err != nil {
		return invalid(MsgInvalid)
	}
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return invalid(MsgPastDate)
	}
	return valid()
}

// LargePartySentinel is the party-size option that asks the guest to phone in.
const LargePartySentinel = "13+"

// LargePartySize is the smallest party that cannot book online.
const LargePartySize = 13

// IsLargeParty reports whether a party-size value is the phone-in sentinel or
// a number at or above LargePartySize.
func IsLargeParty(value string) bool {
	value = strings.TrimSpace(value)
	if value == LargePartySentinel {
		return true
	}
	n, err := strconv.Atoi(value)
	return err == nil && n >= LargePartySize
}

// ValidateField checks field against its declared constraints and reflects
// the outcome on the tree. Repeating the call with the same value leaves the
// tree unchanged.
func ValidateField(field *Element) ValidationResult {
	res := CheckValue(field.Value, ConstraintsOf(field))
	Mark(field, res)
	return res
}

// Mark applies a validation outcome to field: exactly one of ClassValid and
// ClassInvalid, and at most one adjacent feedback note.
func Mark(field *Element, res ValidationResult) {
	if res.Valid {
		field.RemoveClass(ClassInvalid)
		field.AddClass(ClassValid)
		if note := feedbackOf(field); note != nil {
			note.Remove()
		}
		return
	}
	field.RemoveClass(ClassValid)
	field.AddClass(ClassInvalid)
	if note := feedbackOf(field); note != nil {
		note.Text = res.Message
		return
	}
	field.InsertAfter(El("div", Class(ClassFeedback), Text(res.Message)))
}

// Unmark drops field's validation classes and its feedback note.
func Unmark(field *Element) {
	field.RemoveClass(ClassValid)
	field.RemoveClass(ClassInvalid)
	if note := feedbackOf(field); note != nil {
		note.Remove()
	}
}

// ClearMarks removes every validation class and feedback note under root.
func ClearMarks(root *Element) {
	for _, note := range root.ByClass(ClassFeedback) {
		note.Remove()
	}
	root.Walk(func(n *Element) bool {
		n.RemoveClass(ClassValid)
		n.RemoveClass(ClassInvalid)
		return true
	})
}

func feedbackOf(field *Element) *Element {
	if next := field.NextSibling(); next != nil && next.HasClass(ClassFeedback) {
		return next
	}
	return nil
}

// FieldValue returns the current value of the named control in form. For a
// radio group it is the value of the checked option.
func FieldValue(form *Element, name string) string {
	var fallback string
	for i, f := range form.ByName(name) {
		if f.Type == "radio" || f.Type == "checkbox" {
			if f.Checked {
				return f.Value
			}
			continue
		}
		if i == 0 {
			fallback = f.Value
		}
	}
	return fallback
}

// ValidateForm validates every enabled required field of form and
// reports whether all of them passed. Every field is annotated, not just the
// first failure.
func ValidateForm(form *Element) bool {
	ok := true
	for _, f := range form.Find(needsValidation) {
		if !ValidateField(f).Valid {
			ok = false
		}
	}
	return ok
}

func needsValidation(e *Element) bool {
	if !e.IsField() || e.Disabled || e.Type == "hidden" {
		return false
	}
	return e.Required
}

// ValidateCheckoutForm validates the checkout form. A delivery order also
// needs a usable address; the address keeps its own field-level failure
// when it has one.
func ValidateCheckoutForm(form *Element) bool {
	ok := ValidateForm(form)
	addr := form.FirstByName("customer_address")
	if FieldValue(form, "order_type") != "delivery" {
		if addr != nil && !addr.Required {
			Unmark(addr)
		}
		return ok
	}
	if addr == nil {
		return false
	}
	res := CheckValue(addr.Value, ConstraintsOf(addr))
	if res.Valid {
		res = CheckDeliveryAddress(addr.Value)
	}
	Mark(addr, res)
	return ok && res.Valid
}
