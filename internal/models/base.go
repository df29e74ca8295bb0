package models

import "time"

// BaseModel replaces gorm.Model: rows are hard-deleted so that cascades and
// unique indexes behave the same on every dialect.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
