package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType string    `gorm:"type:varchar(50);not null;index"`
	UserId    string    `gorm:"type:varchar(64);index"`
	Details   *string   `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"default:now();not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
