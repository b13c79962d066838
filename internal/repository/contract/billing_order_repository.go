package contract

import (
	"context"

	"jane-proxy-be/internal/entity"
	"jane-proxy-be/internal/repository/specification"
)

type BillingOrderRepository interface {
	Create(ctx context.Context, order *entity.BillingOrder) error
	Update(ctx context.Context, order *entity.BillingOrder) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BillingOrder, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BillingOrder, error)
}
