package model

const (
	TemplateTypeReminder = "reminder"
	TemplateTypeInvoice  = "invoice"

	TriggerScheduled = "scheduled"
)

// Template is a per-tenant end-client message template.
type Template struct {
	ID                int64
	TenantID          string
	Name              string
	Type              string
	TriggerType       string
	Message           string
	IsActive          bool
	DaysOffset        int
	SendHour          *int
	SendMinute        *int
	UseGlobalSchedule bool
}

func (t Template) IsScheduled() bool {
	return t.IsActive && t.TriggerType == TriggerScheduled
}

type LifecycleTrigger string

const (
	Expiring7Days LifecycleTrigger = "expiring_7days"
	Expiring3Days LifecycleTrigger = "expiring_3days"
	Expiring1Day  LifecycleTrigger = "expiring_1day"
	Expired       LifecycleTrigger = "expired"
)

// LifecycleTemplate is a global template addressed to resellers themselves.
type LifecycleTemplate struct {
	ID          int64
	TriggerType LifecycleTrigger
	Message     string
	IsActive    bool
}
