package model

import "time"

type LogKind string

const (
	ReminderLog LogKind = "reminder"
	InvoiceLog  LogKind = "invoice"
	ResellerLog LogKind = "reseller"
)

// NotificationLog is one attempted send. Which subject fields are set depends on Kind.
type NotificationLog struct {
	ID           int64
	Kind         LogKind
	TenantID     string
	ClientID     int64
	TemplateID   int64
	InvoiceID    int64
	TriggerType  LifecycleTrigger
	Phone        string
	Message      string
	Status       Status
	ErrorMessage string
	MessageID    string
	RetryCount   int
	CreatedAt    time.Time
	SentAt       *time.Time
}
