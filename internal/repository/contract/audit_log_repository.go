package contract

import (
	"context"

	"jane-proxy-be/internal/entity"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
}
