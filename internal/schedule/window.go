package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
)

// ISOWeekday maps Monday to 1 and Sunday to 7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ParseWorkingDays reads a comma separated list of ISO weekdays. Unknown tokens are ignored.
func ParseWorkingDays(raw string) map[int]bool {
	days := make(map[int]bool, 7)
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 7 {
			continue
		}
		days[n] = true
	}
	return days
}

// IsWorkingDay reports whether now falls on one of the tenant's working days.
// An empty list means every day.
func IsWorkingDay(s model.ReminderSettings, now time.Time) bool {
	days := ParseWorkingDays(s.WorkingDays)
	if len(days) == 0 {
		return true
	}
	return days[ISOWeekday(now)]
}

// CanSendNow evaluates the tenant's global window. now must already be in the tenant calendar.
func CanSendNow(s model.ReminderSettings, now time.Time) bool {
	if s.StartHour == 0 && s.EndHour == 0 {
		return true
	}
	h := now.Hour()
	if h < s.StartHour || h >= s.EndHour {
		return false
	}
	return IsWorkingDay(s, now)
}

// TemplateDue decides whether a scheduled template may fire now.
//
// A template with its own send hour that opts out of the global schedule only checks the
// working day; the exact hour and minute are not compared and the per-day dedup log is what
// keeps it to one send.
func TemplateDue(t model.Template, s model.ReminderSettings, now time.Time) bool {
	if t.SendHour != nil && !t.UseGlobalSchedule {
		return IsWorkingDay(s, now)
	}
	return CanSendNow(s, now)
}
