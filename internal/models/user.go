package models

import "gorm.io/gorm"

// Roles a user can register with.
const (
	RoleVendor   = "vendor"
	RoleSupplier = "supplier"
)

// User represents a registered actor, either a vendor or a supplier.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	UserType   string `json:"user_type" gorm:"type:varchar(20)" validate:"required,oneof=vendor supplier"`
	Phone      string `json:"phone" gorm:"type:varchar(30)" validate:"required"`
	City       string `json:"city" gorm:"type:varchar(100)" validate:"required"`
	Area       string `json:"area" gorm:"type:varchar(100)" validate:"required"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
