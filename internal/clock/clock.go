// Package clock holds the service-local calendar. All business dates are
// evaluated in a fixed UTC+05:30 offset without daylight-saving adjustment.
//
// Dates are represented as time.Time values at midnight UTC so they compare,
// hash and round-trip through Postgres `date` columns without zone drift.
package clock

import (
	"sync"
	"time"
)

const (
	// CutoffHour is the local hour from which same-day changes are refused.
	CutoffHour = 20

	DateLayout = "2006-01-02"

	serviceOffset = 5*60*60 + 30*60
)

var serviceZone = time.FixedZone("IST", serviceOffset)

type Clock interface {
	Now() time.Time
	Today() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now().In(serviceZone)
}

func (s System) Today() time.Time {
	return DateOf(s.Now())
}

// Fixed is a settable clock for tests and simulations.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

// At builds an instant from a local date and wall time in the service zone.
func At(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, serviceZone)
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now.In(serviceZone)
}

func (f *Fixed) Today() time.Time {
	return DateOf(f.Now())
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

// DateOf returns the service-local calendar date of t.
func DateOf(t time.Time) time.Time {
	local := t.In(serviceZone)
	return Date(local.Year(), local.Month(), local.Day())
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize strips the time of day from a date that was parsed or scanned
// in any zone, keeping its calendar fields.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return Normalize(parsed), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func AddDays(date time.Time, days int) time.Time {
	return Normalize(date).AddDate(0, 0, days)
}

func Tomorrow(c Clock) time.Time {
	return AddDays(c.Today(), 1)
}

// IsBeforeCutoff reports whether the local hour of now is before CutoffHour.
func IsBeforeCutoff(now time.Time) bool {
	return now.In(serviceZone).Hour() < CutoffHour
}

// WeekStart returns the Monday of the ISO week containing date.
func WeekStart(date time.Time) time.Time {
	date = Normalize(date)
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to time.Time) int {
	return int(Normalize(to).Sub(Normalize(from)).Hours() / 24)
}

// InclusiveDays counts the calendar days in [from, to].
func InclusiveDays(from, to time.Time) int {
	return DaysBetween(from, to) + 1
}

// Window is the lazy materialization window: today and tomorrow.
func Window(c Clock) []time.Time {
	today := c.Today()
	return []time.Time{today, AddDays(today, 1)}
}

// InWindow reports whether date is today or tomorrow.
func InWindow(c Clock, date time.Time) bool {
	date = Normalize(date)
	for _, day := range Window(c) {
		if day.Equal(date) {
			return true
		}
	}
	return false
}
