package model

import "time"

// License is keyed by user: each webhook upserts the single row for that
// user rather than appending history.
type License struct {
	UserId           string    `gorm:"type:varchar(64);primaryKey"`
	Status           string    `gorm:"type:varchar(20);not null"`
	CurrentPeriodEnd time.Time
	Product          string    `gorm:"type:varchar(100)"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (License) TableName() string {
	return "licenses"
}
