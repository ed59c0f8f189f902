package repositories

import "organicindia/internal/models"

// MaterialFilter narrows the vendor-facing listing. Zero-value fields
// are ignored, so filters compose as an intersection.
type MaterialFilter struct {
	Category string // exact match
	City     string // exact match
	Search   string // substring match on name OR description
}

// MaterialRepository defines the interface for material data access.
type MaterialRepository interface {
	Create(material *models.Material) error
	GetByID(id string) (*models.Material, error)
	GetBySupplier(supplierID string) ([]models.Material, error)
	// FindAvailable returns available materials matching the filter.
	FindAvailable(filter MaterialFilter) ([]models.Material, error)
	// DistinctCategories and DistinctCities span ALL materials,
	// regardless of availability or the active filter; they feed the
	// dashboard's filter controls.
	DistinctCategories() ([]string, error)
	DistinctCities() ([]string, error)
	// Reserve atomically decrements stock by quantity, clearing the
	// availability flag when stock reaches zero. Returns
	// ErrInsufficientStock when fewer than quantity units remain.
	Reserve(id string, quantity int) error
}
