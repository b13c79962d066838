package contract

import (
	"context"

	"jane-proxy-be/internal/entity"
)

type LicenseRepository interface {
	// Upsert inserts the license row or, when the user already has one,
	// overwrites its status, period end, and product.
	Upsert(ctx context.Context, license *entity.License) error
	FindByUserId(ctx context.Context, userId string) (*entity.License, error)
}
