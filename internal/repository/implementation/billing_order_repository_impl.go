package implementation

import (
	"context"
	"errors"

	"jane-proxy-be/internal/entity"
	"jane-proxy-be/internal/mapper"
	"jane-proxy-be/internal/model"
	"jane-proxy-be/internal/repository/contract"
	"jane-proxy-be/internal/repository/specification"

	"gorm.io/gorm"
)

type BillingOrderRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingMapper
}

func NewBillingOrderRepository(db *gorm.DB) contract.BillingOrderRepository {
	return &BillingOrderRepositoryImpl{
		db:     db,
		mapper: mapper.NewBillingMapper(),
	}
}

func (r *BillingOrderRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BillingOrderRepositoryImpl) Create(ctx context.Context, order *entity.BillingOrder) error {
	m := r.mapper.OrderToModel(order)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*order = *r.mapper.OrderToEntity(m)
	return nil
}

func (r *BillingOrderRepositoryImpl) Update(ctx context.Context, order *entity.BillingOrder) error {
	m := r.mapper.OrderToModel(order)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*order = *r.mapper.OrderToEntity(m)
	return nil
}

func (r *BillingOrderRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.BillingOrder, error) {
	var m model.BillingOrder
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.OrderToEntity(&m), nil
}

func (r *BillingOrderRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.BillingOrder, error) {
	var models []*model.BillingOrder
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.BillingOrder, len(models))
	for i, m := range models {
		entities[i] = r.mapper.OrderToEntity(m)
	}
	return entities, nil
}
