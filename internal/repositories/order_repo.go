package repositories

import "organicindia/internal/models"

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Place persists the order and reserves its quantity against the
	// material's stock in one unit of work. Nothing is written when the
	// reservation fails.
	Place(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	// GetByVendor returns the vendor's orders, newest first.
	GetByVendor(vendorID string) ([]models.Order, error)
	// GetBySupplier returns orders on the supplier's materials, newest first.
	GetBySupplier(supplierID string) ([]models.Order, error)
	UpdateStatus(id string, status string) error
}
