package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ShareStatus string

const (
	ShareStatusPending  ShareStatus = "PENDING"
	ShareStatusAccepted ShareStatus = "ACCEPTED"
	ShareStatusRejected ShareStatus = "REJECTED"
	ShareStatusSettled  ShareStatus = "SETTLED"
)

// ParseShareStatus accepts any letter case.
func ParseShareStatus(s string) (ShareStatus, bool) {
	switch status := ShareStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case ShareStatusPending, ShareStatusAccepted, ShareStatusRejected, ShareStatusSettled:
		return status, true
	}
	return "", false
}

// Terminal reports whether no further transition is possible.
func (s ShareStatus) Terminal() bool {
	return s == ShareStatusRejected || s == ShareStatusSettled
}

type SharedExpense struct {
	BaseModel

	ExpenseID        uint            `gorm:"not null;index"`
	SharedWithUserID uint            `gorm:"not null;index"`
	SplitPercentage  decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Status           ShareStatus     `gorm:"size:16;not null;index"`

	// Relationships
	Expense        Expense `gorm:"foreignKey:ExpenseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	SharedWithUser User    `gorm:"foreignKey:SharedWithUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ShareView is a share joined with the owner of its expense, which every
// authorization decision needs.
type ShareView struct {
	SharedExpense
	OwnerID uint
}

// IsParticipant reports whether userID may see the share at all.
func (v ShareView) IsParticipant(userID uint) bool {
	return v.OwnerID == userID || v.SharedWithUserID == userID
}
