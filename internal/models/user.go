package models

import "time"

type User struct {
	BaseModel

	Email                string  `gorm:"size:255;uniqueIndex;not null"`
	Username             string  `gorm:"size:50;uniqueIndex;not null"`
	PasswordHash         string  `gorm:"size:255;not null"`
	IsActive             bool    `gorm:"not null;default:true"`
	IsVerified           bool    `gorm:"not null;default:false"`
	VerificationToken    *string `gorm:"size:64;index"`
	PasswordResetToken   *string `gorm:"size:64;index"`
	PasswordResetExpires *time.Time
}
