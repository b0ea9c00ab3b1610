package services

import (
	"fmt"
	"time"
)

const (
	weekdayOpeningHour = 11
	weekendOpeningHour = 10
	closingHour        = 21
)

// BusinessHours answers opening-time questions in the restaurant's timezone.
type BusinessHours struct {
	loc *time.Location
	now func() time.Time
}

// NewBusinessHours uses time.Now when now is nil.
func NewBusinessHours(loc *time.Location, now func() time.Time) *BusinessHours {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &BusinessHours{loc: loc, now: now}
}

func (b *BusinessHours) Location() *time.Location { return b.loc }

// Now is the current time in the restaurant's timezone.
func (b *BusinessHours) Now() time.Time { return b.now().In(b.loc) }

func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Hours returns the opening and closing hour for day.
func (b *BusinessHours) Hours(day time.Time) (opening, closing int) {
	if IsWeekend(day.In(b.loc)) {
		return weekendOpeningHour, closingHour
	}
	return weekdayOpeningHour, closingHour
}

// IsOpen reports whether t falls inside opening hours. Closing time itself
// is outside.
func (b *BusinessHours) IsOpen(t time.Time) bool {
	t = t.In(b.loc)
	opening, closing := b.Hours(t)
	return t.Hour() >= opening && t.Hour() < closing
}

// HoursText renders day's hours as "11:00 AM to 9:00 PM".
func (b *BusinessHours) HoursText(day time.Time) string {
	opening, closing := b.Hours(day)
	d := day.In(b.loc)
	at := func(h int) string {
		return time.Date(d.Year(), d.Month(), d.Day(), h, 0, 0, 0, b.loc).Format("3:04 PM")
	}
	return fmt.Sprintf("%s to %s", at(opening), at(closing))
}

// DayKind is "weekend" or "weekday".
func DayKind(day time.Time) string {
	if IsWeekend(day) {
		return "weekend"
	}
	return "weekday"
}
