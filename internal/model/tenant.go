package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountActive = "active"
	AccountTrial  = "trial"
)

// Tenant is a reseller account of the SaaS. The notifier never mutates it.
type Tenant struct {
	ID                    string
	Name                  string
	Email                 string
	Phone                 string
	IsActive              bool
	IsAdmin               bool
	WhatsAppEnabled       bool
	AccountStatus         string
	PlanName              string
	PlanPrice             decimal.Decimal
	SubscriptionExpiresAt *time.Time
}

// SubscriptionExpired reports whether the tenant's own subscription ended before today.
// A tenant without an expiry date is treated as not expired.
func (t Tenant) SubscriptionExpired(today time.Time) bool {
	if t.SubscriptionExpiresAt == nil {
		return false
	}
	e := *t.SubscriptionExpiresAt
	y, m, d := today.Date()
	ey, em, ed := e.Date()
	return time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC).Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// CanUseMessaging applies the subscription gate used by the connection monitor.
func (t Tenant) CanUseMessaging(today time.Time) bool {
	if t.IsAdmin {
		return true
	}
	if t.SubscriptionExpired(today) {
		return false
	}
	return t.AccountStatus == AccountActive || t.AccountStatus == AccountTrial
}
