package model

// ReminderSettings is a tenant's sending window. StartHour == EndHour == 0 means round the clock.
type ReminderSettings struct {
	TenantID    string
	IsEnabled   bool
	StartHour   int
	EndHour     int
	WorkingDays string
}
