package services

import (
	"errors"
	"sort"
	"strings"

	"food_ordering/internal/redis"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrCartEmpty            = errors.New("your cart is empty")
	ErrProductUnavailable   = errors.New("this item is currently unavailable")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailTaken           = errors.New("email already registered")
	ErrLargeParty           = errors.New("party too large to book online")
	ErrOutsideBusinessHours = errors.New("the selected time is outside our business hours")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrUnsupportedImage     = errors.New("unsupported image type")
	ErrImageTooLarge        = errors.New("image is too large")
)

// ValidationError collects one message per invalid input field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// OrNil returns e when it holds errors and a nil error otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NoticeError carries the message a guest should see for a rejected request.
type NoticeError struct {
	Err    error
	Notice string
}

func (e *NoticeError) Error() string { return e.Notice }
func (e *NoticeError) Unwrap() error { return e.Err }

func notice(err error, msg string) error {
	return &NoticeError{Err: err, Notice: msg}
}

// notFound maps storage-level misses onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, redis.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
