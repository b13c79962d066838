package model

import (
	"time"

	"github.com/google/uuid"
)

// Message rows are append-only: they are never updated or deleted once
// written, so there are no UpdatedAt/DeletedAt columns.
type Message struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID `gorm:"type:uuid;not null;index"`
	Role           string    `gorm:"type:varchar(20);not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

func (Message) TableName() string {
	return "messages"
}
