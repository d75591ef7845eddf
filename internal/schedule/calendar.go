package schedule

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "America/Sao_Paulo"

// Calendar fixes the time zone that defines "today" for due dates, dedup windows and working hours.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(name string) (Calendar, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Calendar{}, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return Calendar{loc: loc}, nil
}

// CalendarIn wraps an already loaded location.
func CalendarIn(loc *time.Location) Calendar {
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c Calendar) In(t time.Time) time.Time {
	return t.In(c.Location())
}

// Day returns the half-open range [00:00, next 00:00) containing t.
func (c Calendar) Day(t time.Time) DayRange {
	local := c.In(t)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location())
	return DayRange{Start: start, End: start.AddDate(0, 0, 1)}
}

type DayRange struct {
	Start time.Time
	End   time.Time
}

func (r DayRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// DaysBetween counts calendar days from today to due, ignoring time of day on both sides.
// Positive means due is in the future.
func DaysBetween(today, due time.Time) int {
	return int(civil(due).Sub(civil(today)).Hours() / 24)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOnly drops the time of day while keeping the calendar date of t.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
