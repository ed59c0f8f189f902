package repositories

import (
	"fmt"
	"strings"
	"sync"

	"organicindia/internal/models"

	"github.com/google/uuid"
)

// MockMaterialRepository is an in-memory implementation of MaterialRepository.
type MockMaterialRepository struct {
	materials map[string]models.Material
	mu        sync.RWMutex
}

// NewMockMaterialRepository creates a new instance of MockMaterialRepository.
func NewMockMaterialRepository() *MockMaterialRepository {
	return &MockMaterialRepository{
		materials: make(map[string]models.Material),
	}
}

// Create adds a new material.
func (r *MockMaterialRepository) Create(material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if material.ID == "" {
		material.ID = uuid.New().String()
	}
	r.materials[material.ID] = *material
	return nil
}

// GetByID returns a material by its ID.
func (r *MockMaterialRepository) GetByID(id string) (*models.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	material, ok := r.materials[id]
	if !ok {
		return nil, fmt.Errorf("material %s: %w", id, ErrNotFound)
	}
	return &material, nil
}

// GetBySupplier returns all materials owned by a supplier.
func (r *MockMaterialRepository) GetBySupplier(supplierID string) ([]models.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var materials []models.Material
	for _, m := range r.materials {
		if m.SupplierID == supplierID {
			materials = append(materials, m)
		}
	}
	return materials, nil
}

// FindAvailable returns available materials matching the filter.
func (r *MockMaterialRepository) FindAvailable(filter MaterialFilter) ([]models.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var materials []models.Material
	for _, m := range r.materials {
		if !m.IsAvailable {
			continue
		}
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		if filter.City != "" && m.City != filter.City {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(m.Name, filter.Search) &&
			!strings.Contains(m.Description, filter.Search) {
			continue
		}
		materials = append(materials, m)
	}
	return materials, nil
}

// DistinctCategories returns the distinct categories across all materials.
func (r *MockMaterialRepository) DistinctCategories() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var categories []string
	for _, m := range r.materials {
		if !seen[m.Category] {
			seen[m.Category] = true
			categories = append(categories, m.Category)
		}
	}
	return categories, nil
}

// DistinctCities returns the distinct cities across all materials.
func (r *MockMaterialRepository) DistinctCities() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var cities []string
	for _, m := range r.materials {
		if !seen[m.City] {
			seen[m.City] = true
			cities = append(cities, m.City)
		}
	}
	return cities, nil
}

// Reserve decrements stock under the write lock, deriving availability
// from the remainder, mirroring the conditional UPDATE of the GORM
// implementation.
func (r *MockMaterialRepository) Reserve(id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	material, ok := r.materials[id]
	if !ok {
		return fmt.Errorf("material %s: %w", id, ErrNotFound)
	}
	if material.StockQuantity < quantity {
		return fmt.Errorf("material %s has %d units, requested %d: %w", id, material.StockQuantity, quantity, ErrInsufficientStock)
	}
	material.StockQuantity -= quantity
	material.IsAvailable = material.StockQuantity > 0
	r.materials[id] = material
	return nil
}
