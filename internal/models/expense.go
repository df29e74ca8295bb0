package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Expense struct {
	BaseModel

	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Description string          `gorm:"size:255;not null"`
	Date        datatypes.Date  `gorm:"not null;index"`
	UserID      uint            `gorm:"not null;index"`
	CategoryID  uint            `gorm:"not null;index"`

	// Relationships
	User     User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}
