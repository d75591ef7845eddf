package model

type Status string

const (
	Pending Status = "pending"
	Sent    Status = "sent"
	Failed  Status = "failed"
)

// MaxRetries bounds how many times a failed log row is picked up by the resend pass.
const MaxRetries = 3

type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientInactive  ClientStatus = "inactive"
	ClientSuspended ClientStatus = "suspended"
	ClientCancelled ClientStatus = "cancelled"
)

// Label is the text shown to end-customers in rendered messages.
func (s ClientStatus) Label() string {
	switch s {
	case ClientActive:
		return "Ativo"
	case ClientInactive:
		return "Inativo"
	case ClientSuspended:
		return "Suspenso"
	case ClientCancelled:
		return "Cancelado"
	default:
		return string(s)
	}
}
