package models

type Category struct {
	BaseModel

	Name        string  `gorm:"size:50;not null;uniqueIndex:idx_category_owner_name"`
	Description *string `gorm:"size:255"`
	UserID      *uint   `gorm:"index;uniqueIndex:idx_category_owner_name"` // nil for system categories

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsSystem reports whether the category is shared by every user.
func (c Category) IsSystem() bool {
	return c.UserID == nil
}

// OwnedBy reports whether userID owns the category.
func (c Category) OwnedBy(userID uint) bool {
	return c.UserID != nil && *c.UserID == userID
}
