package unitofwork

import (
	"context"

	"jane-proxy-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	LicenseRepository() contract.LicenseRepository
	BillingOrderRepository() contract.BillingOrderRepository
	AuditLogRepository() contract.AuditLogRepository
}
