package schedule

import (
	"testing"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
)

func intPtr(v int) *int { return &v }

// 2025-01-14 is a Tuesday.
func tuesdayAt(hour int) time.Time {
	return time.Date(2025, time.January, 14, hour, 0, 0, 0, time.UTC)
}

func TestCanSendNow(t *testing.T) {
	business := model.ReminderSettings{IsEnabled: true, StartHour: 8, EndHour: 18, WorkingDays: "1,2,3,4,5,6"}
	sunday := time.Date(2025, time.January, 12, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		settings model.ReminderSettings
		now      time.Time
		want     bool
	}{
		{"tuesday evening", business, tuesdayAt(20), false},
		{"tuesday morning", business, tuesdayAt(10), true},
		{"start hour inclusive", business, tuesdayAt(8), true},
		{"end hour exclusive", business, tuesdayAt(18), false},
		{"sunday not working", business, sunday, false},
		{"round the clock", model.ReminderSettings{WorkingDays: "1"}, sunday, true},
		{"empty working days", model.ReminderSettings{StartHour: 8, EndHour: 18}, sunday, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanSendNow(tt.settings, tt.now); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTemplateDue_OwnHourChecksWorkingDayOnly(t *testing.T) {
	settings := model.ReminderSettings{StartHour: 8, EndHour: 18, WorkingDays: "1,2,3,4,5"}
	own := model.Template{SendHour: intPtr(9), SendMinute: intPtr(30)}

	if !TemplateDue(own, settings, tuesdayAt(22)) {
		t.Fatalf("own-hour template should fire any time on a working day")
	}

	saturday := time.Date(2025, time.January, 18, 9, 30, 0, 0, time.UTC)
	if TemplateDue(own, settings, saturday) {
		t.Fatalf("own-hour template should not fire outside working days")
	}
}

func TestTemplateDue_FallsBackToGlobalWindow(t *testing.T) {
	settings := model.ReminderSettings{StartHour: 8, EndHour: 18, WorkingDays: "1,2,3,4,5"}

	global := model.Template{SendHour: intPtr(9), UseGlobalSchedule: true}
	if TemplateDue(global, settings, tuesdayAt(22)) {
		t.Fatalf("global schedule template must respect the window")
	}

	noHour := model.Template{}
	if !TemplateDue(noHour, settings, tuesdayAt(10)) {
		t.Fatalf("template without own hour should use the window")
	}
	if TemplateDue(noHour, settings, tuesdayAt(19)) {
		t.Fatalf("template without own hour should use the window")
	}
}

func TestParseWorkingDays(t *testing.T) {
	days := ParseWorkingDays(" 1, 3,x,9,7 ")
	if len(days) != 3 || !days[1] || !days[3] || !days[7] {
		t.Fatalf("unexpected days %v", days)
	}
}

func TestISOWeekday(t *testing.T) {
	if got := ISOWeekday(time.Date(2025, time.January, 12, 0, 0, 0, 0, time.UTC)); got != 7 {
		t.Fatalf("sunday: expected 7, got %d", got)
	}
	if got := ISOWeekday(time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)); got != 1 {
		t.Fatalf("monday: expected 1, got %d", got)
	}
}
