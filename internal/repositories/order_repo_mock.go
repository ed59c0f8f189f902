package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"organicindia/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// It reserves stock through a MockMaterialRepository so Place keeps the
// same contract as the transactional GORM implementation.
type MockOrderRepository struct {
	orders    map[string]models.Order
	materials *MockMaterialRepository
	mu        sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(materials *MockMaterialRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:    make(map[string]models.Order),
		materials: materials,
	}
}

// Place reserves stock and records the order.
func (r *MockOrderRepository) Place(order *models.Order) error {
	if err := r.materials.Reserve(order.MaterialID, order.Quantity); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID, with its material attached.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	order, ok := r.orders[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if material, err := r.materials.GetByID(order.MaterialID); err == nil {
		order.Material = *material
	}
	return &order, nil
}

// GetByVendor returns the vendor's orders, newest first.
func (r *MockOrderRepository) GetByVendor(vendorID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.VendorID == vendorID {
			orders = append(orders, order)
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

// GetBySupplier returns orders on the supplier's materials, newest first.
func (r *MockOrderRepository) GetBySupplier(supplierID string) ([]models.Order, error) {
	materials, err := r.materials.GetBySupplier(supplierID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]models.Material, len(materials))
	for _, m := range materials {
		owned[m.ID] = m
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if material, ok := owned[order.MaterialID]; ok {
			order.Material = material
			orders = append(orders, order)
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
