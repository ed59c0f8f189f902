package repositories

import (
	"errors"
	"fmt"

	"organicindia/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Place reserves stock and creates the order inside one transaction, so
// a failed reservation leaves no partial mutation behind.
func (r *GORMOrderRepository) Place(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := reserveMaterial(tx, order.MaterialID, order.Quantity); err != nil {
			return err
		}
		if err := tx.Omit("Material").Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a single order, with its material preloaded for
// ownership checks.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Material").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByVendor retrieves the vendor's orders, newest first.
func (r *GORMOrderRepository) GetByVendor(vendorID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Material").
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for vendor %s: %w", vendorID, err)
	}
	return orders, nil
}

// GetBySupplier retrieves orders whose material belongs to the supplier,
// newest first.
func (r *GORMOrderRepository) GetBySupplier(supplierID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Material").
		Joins("JOIN materials ON materials.id = orders.material_id").
		Where("materials.supplier_id = ?", supplierID).
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for supplier %s: %w", supplierID, err)
	}
	return orders, nil
}

// UpdateStatus overwrites the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}
