package models

import "gorm.io/gorm"

// Material represents an item a supplier offers for sale.
//
// City and Area are stamped from the owning supplier's profile when the
// material is created and are not re-synced if the supplier later moves.
type Material struct {
	ID            string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string  `json:"name" validate:"required,min=3,max=100"`
	Category      string  `json:"category" gorm:"index" validate:"required,max=100"`
	Description   string  `json:"description" validate:"omitempty,max=500"`
	PricePerUnit  float64 `json:"price_per_unit" validate:"required,gt=0"`
	Unit          string  `json:"unit" validate:"required,max=30"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	IsAvailable   bool    `json:"is_available"`
	SupplierID    string  `json:"supplier_id" gorm:"index;type:varchar(36)"`
	City          string  `json:"city" gorm:"index;type:varchar(100)"`
	Area          string  `json:"area" gorm:"type:varchar(100)"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
