package models

import "gorm.io/gorm"

// OrderStatusPending is the status every new order starts with. Suppliers
// may overwrite it with any string; no enumeration is enforced.
const OrderStatusPending = "pending"

// Order represents a vendor's request to purchase a quantity of one material.
//
// TotalPrice is computed once at creation (quantity times the material's
// price at that moment) and never recalculated.
type Order struct {
	ID              string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	VendorID        string   `json:"vendor_id" gorm:"index;type:varchar(36)"`
	MaterialID      string   `json:"material_id" gorm:"index;type:varchar(36)"`
	Material        Material `json:"material" gorm:"foreignKey:MaterialID"`
	Quantity        int      `json:"quantity" validate:"required,gt=0"`
	TotalPrice      float64  `json:"total_price"`
	DeliveryAddress string   `json:"delivery_address" validate:"required"`
	Notes           string   `json:"notes" validate:"omitempty,max=500"`
	Status          string   `json:"status" gorm:"type:varchar(50)"`
	gorm.Model               // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
