package dateutil

import (
	"errors"
	"time"
)

// DayFormat is the wire format for calendar dates. Dates cross the service
// boundary as plain local-calendar strings, never as timestamps.
const DayFormat = "2006-01-02"

var ErrInvalidDay = errors.New("invalid calendar date")

// ParseDay parses a YYYY-MM-DD string into a date-only time.Time in the
// given location.
func ParseDay(value string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation(DayFormat, value, location)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return parsed, nil
}

func FormatDay(value time.Time) string {
	return value.Format(DayFormat)
}

// DateOnly truncates a timestamp to midnight, keeping its location.
func DateOnly(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, value.Location())
}

// DateAtLocation converts a timestamp to the calendar date it falls on in
// the given location.
func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func Today(location *time.Location) time.Time {
	return DateAtLocation(time.Now(), location)
}

func SameDay(a, b time.Time) bool {
	return a.Format(DayFormat) == b.Format(DayFormat)
}

func AddDays(value time.Time, days int) time.Time {
	return DateOnly(value).AddDate(0, 0, days)
}

// DaysBetween returns the number of calendar days from a to b; negative
// when b precedes a. Both dates are normalized to UTC midnights first so
// DST transitions in the dates' locations cannot shorten a day.
func DaysBetween(a, b time.Time) int {
	return int(utcMidnight(b).Sub(utcMidnight(a)).Hours() / 24)
}

func utcMidnight(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func BetweenInclusive(day, start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	day = DateOnly(day)
	return !day.Before(DateOnly(start)) && !day.After(DateOnly(end))
}

// MonthBounds returns the first and last day of the given month.
func MonthBounds(year int, month time.Month, location *time.Location) (time.Time, time.Time) {
	if location == nil {
		location = time.UTC
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, location)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// ClipRange intersects [start, end] with [windowStart, windowEnd], all
// inclusive. ok is false when the intersection is empty.
func ClipRange(start, end, windowStart, windowEnd time.Time) (time.Time, time.Time, bool) {
	clippedStart := LaterOf(DateOnly(start), DateOnly(windowStart))
	clippedEnd := EarlierOf(DateOnly(end), DateOnly(windowEnd))
	if clippedEnd.Before(clippedStart) {
		return time.Time{}, time.Time{}, false
	}
	return clippedStart, clippedEnd, true
}

func EarlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func LaterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
