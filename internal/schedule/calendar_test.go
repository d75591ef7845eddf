package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestDaysBetween(t *testing.T) {
	today := date(2025, time.January, 10, 9, 30)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"one week ahead", date(2025, time.January, 17, 0, 0), 7},
		{"one week behind", date(2025, time.January, 3, 0, 0), -7},
		{"same day", date(2025, time.January, 10, 0, 0), 0},
		{"late on due day", date(2025, time.January, 17, 23, 59), 7},
		{"across month", date(2025, time.February, 1, 12, 0), 22},
		{"across year", date(2024, time.December, 31, 0, 0), -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(today, tt.due); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	today := date(2025, time.January, 10, 23, 59)
	a := DaysBetween(today, date(2025, time.January, 17, 23, 59))
	b := DaysBetween(today, date(2025, time.January, 17, 0, 0))
	if a != b || a != 7 {
		t.Fatalf("expected 7 for both, got %d and %d", a, b)
	}
}

func TestCalendar_DayRange(t *testing.T) {
	cal, err := NewCalendar("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 02:30 UTC is still the previous evening in São Paulo.
	r := cal.Day(time.Date(2025, time.March, 11, 2, 30, 0, 0, time.UTC))
	if r.Start.Day() != 10 || r.Start.Hour() != 0 {
		t.Fatalf("unexpected start %v", r.Start)
	}
	if got := r.End.Sub(r.Start); got != 24*time.Hour {
		t.Fatalf("expected 24h range, got %v", got)
	}
	if !r.Contains(r.Start) || r.Contains(r.End) {
		t.Fatalf("range must be half-open")
	}
}

func TestNewCalendar_DefaultAndInvalid(t *testing.T) {
	cal, err := NewCalendar("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cal.Location().String() != DefaultTimezone {
		t.Fatalf("expected %s, got %s", DefaultTimezone, cal.Location())
	}

	if _, err := NewCalendar("Mars/Olympus"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}

func TestCalendar_ZeroValueUsesUTC(t *testing.T) {
	var cal Calendar
	if cal.Location() != time.UTC {
		t.Fatalf("expected UTC")
	}
}
