package entity

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	Id        uuid.UUID
	EventType string
	UserId    string
	Details   *string
	CreatedAt time.Time
}
