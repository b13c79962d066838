package model

import (
	"time"

	"github.com/google/uuid"
)

// BillingOrder maps a payment gateway order id back to the user that
// started the checkout, so webhook notifications can be reconciled.
type BillingOrder struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string    `gorm:"type:varchar(64);not null;index"`
	Product   string    `gorm:"type:varchar(100);not null"`
	Amount    int64     `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (BillingOrder) TableName() string {
	return "billing_orders"
}
