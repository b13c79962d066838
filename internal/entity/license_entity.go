package entity

import (
	"time"

	"github.com/google/uuid"
)

type LicenseStatus string

const (
	LicenseStatusActive   LicenseStatus = "active"
	LicenseStatusInactive LicenseStatus = "inactive"
	LicenseStatusNone     LicenseStatus = "none"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

type License struct {
	UserId           string
	Status           LicenseStatus
	CurrentPeriodEnd time.Time
	Product          string
	UpdatedAt        time.Time
}

// Active reports whether the license grants access right now.
// Only the status is consulted, matching the license read endpoint.
func (l *License) Active() bool {
	return l != nil && l.Status == LicenseStatusActive
}

type BillingOrder struct {
	Id        uuid.UUID
	UserId    string
	Product   string
	Amount    int64
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
