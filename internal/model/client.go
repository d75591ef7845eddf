package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	ID          int64
	TenantID    string
	Name        string
	Username    string
	Phone       string
	Email       string
	Status      ClientStatus
	PlanName    string
	RenewalDate time.Time
	Value       decimal.Decimal
}

func (c Client) IsActive() bool {
	return c.Status == ClientActive
}
