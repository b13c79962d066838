package dto

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	UserId     string `json:"userId" validate:"required"`
	Product    string `json:"product" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	SuccessUrl string `json:"successUrl,omitempty"`
}

type CheckoutResponse struct {
	OrderId         uuid.UUID `json:"order_id"`
	SnapToken       string    `json:"snap_token"`
	SnapRedirectUrl string    `json:"snap_redirect_url"`
}

type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	// Signature validation fields
	SignatureKey string `json:"signature_key"`
	StatusCode   string `json:"status_code"`
	GrossAmount  string `json:"gross_amount"`
}

type LicenseResponse struct {
	UserId           string    `json:"userId"`
	Active           bool      `json:"active"`
	Status           string    `json:"status"`
	CurrentPeriodEnd time.Time `json:"current_period_end"`
	Product          string    `json:"product,omitempty"`
}

// LicenseEventMessage is the internal bus payload consumed by the audit
// log worker.
type LicenseEventMessage struct {
	EventType  string    `json:"event_type"`
	UserId     string    `json:"user_id"`
	OrderId    uuid.UUID `json:"order_id"`
	Status     string    `json:"status"`
	Product    string    `json:"product"`
	OccurredAt time.Time `json:"occurred_at"`
}
