package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const InvoicePending = "pending"

type Invoice struct {
	ID          int64
	TenantID    string
	ClientID    int64
	IssueDate   time.Time
	DueDate     time.Time
	Value       decimal.Decimal
	Discount    decimal.Decimal
	FinalValue  decimal.Decimal
	Status      string
	Description string
}
