package implementation

import (
	"context"
	"errors"

	"jane-proxy-be/internal/entity"
	"jane-proxy-be/internal/mapper"
	"jane-proxy-be/internal/model"
	"jane-proxy-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LicenseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BillingMapper
}

func NewLicenseRepository(db *gorm.DB) contract.LicenseRepository {
	return &LicenseRepositoryImpl{
		db:     db,
		mapper: mapper.NewBillingMapper(),
	}
}

func (r *LicenseRepositoryImpl) Upsert(ctx context.Context, license *entity.License) error {
	m := r.mapper.LicenseToModel(license)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "current_period_end", "product", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*license = *r.mapper.LicenseToEntity(m)
	return nil
}

func (r *LicenseRepositoryImpl) FindByUserId(ctx context.Context, userId string) (*entity.License, error) {
	var m model.License
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LicenseToEntity(&m), nil
}
