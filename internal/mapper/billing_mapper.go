package mapper

import (
	"jane-proxy-be/internal/entity"
	"jane-proxy-be/internal/model"
)

type BillingMapper struct{}

func NewBillingMapper() *BillingMapper {
	return &BillingMapper{}
}

func (m *BillingMapper) LicenseToEntity(l *model.License) *entity.License {
	if l == nil {
		return nil
	}
	return &entity.License{
		UserId:           l.UserId,
		Status:           entity.LicenseStatus(l.Status),
		CurrentPeriodEnd: l.CurrentPeriodEnd,
		Product:          l.Product,
		UpdatedAt:        l.UpdatedAt,
	}
}

func (m *BillingMapper) LicenseToModel(l *entity.License) *model.License {
	if l == nil {
		return nil
	}
	return &model.License{
		UserId:           l.UserId,
		Status:           string(l.Status),
		CurrentPeriodEnd: l.CurrentPeriodEnd,
		Product:          l.Product,
		UpdatedAt:        l.UpdatedAt,
	}
}

func (m *BillingMapper) OrderToEntity(o *model.BillingOrder) *entity.BillingOrder {
	if o == nil {
		return nil
	}
	return &entity.BillingOrder{
		Id:        o.Id,
		UserId:    o.UserId,
		Product:   o.Product,
		Amount:    o.Amount,
		Status:    entity.OrderStatus(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (m *BillingMapper) OrderToModel(o *entity.BillingOrder) *model.BillingOrder {
	if o == nil {
		return nil
	}
	return &model.BillingOrder{
		Id:        o.Id,
		UserId:    o.UserId,
		Product:   o.Product,
		Amount:    o.Amount,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (m *BillingMapper) AuditLogToEntity(a *model.AuditLog) *entity.AuditLog {
	if a == nil {
		return nil
	}
	return &entity.AuditLog{
		Id:        a.Id,
		EventType: a.EventType,
		UserId:    a.UserId,
		Details:   a.Details,
		CreatedAt: a.CreatedAt,
	}
}

func (m *BillingMapper) AuditLogToModel(a *entity.AuditLog) *model.AuditLog {
	if a == nil {
		return nil
	}
	return &model.AuditLog{
		Id:        a.Id,
		EventType: a.EventType,
		UserId:    a.UserId,
		Details:   a.Details,
		CreatedAt: a.CreatedAt,
	}
}
