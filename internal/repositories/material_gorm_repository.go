package repositories

import (
	"errors"
	"fmt"

	"organicindia/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMaterialRepository is a GORM implementation of MaterialRepository.
type GORMMaterialRepository struct {
	db *gorm.DB
}

// NewGORMMaterialRepository creates a new instance of GORMMaterialRepository.
func NewGORMMaterialRepository(db *gorm.DB) *GORMMaterialRepository {
	return &GORMMaterialRepository{
		db: db,
	}
}

// Create creates a new material in the database.
func (r *GORMMaterialRepository) Create(material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.New().String()
	}
	if err := r.db.Create(material).Error; err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}
	return nil
}

// GetByID retrieves a single material by its ID from the database.
func (r *GORMMaterialRepository) GetByID(id string) (*models.Material, error) {
	var material models.Material
	if err := r.db.First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("material %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get material by ID %s: %w", id, err)
	}
	return &material, nil
}

// GetBySupplier retrieves all materials owned by a supplier, in any
// availability state.
func (r *GORMMaterialRepository) GetBySupplier(supplierID string) ([]models.Material, error) {
	var materials []models.Material
	if err := r.db.Where("supplier_id = ?", supplierID).Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to get materials for supplier %s: %w", supplierID, err)
	}
	return materials, nil
}

// FindAvailable retrieves available materials narrowed by the filter.
func (r *GORMMaterialRepository) FindAvailable(filter MaterialFilter) ([]models.Material, error) {
	query := r.db.Where("is_available = ?", true)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var materials []models.Material
	if err := query.Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list available materials: %w", err)
	}
	return materials, nil
}

// DistinctCategories returns the distinct categories across all materials.
func (r *GORMMaterialRepository) DistinctCategories() ([]string, error) {
	var categories []string
	if err := r.db.Model(&models.Material{}).Distinct().Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list material categories: %w", err)
	}
	return categories, nil
}

// DistinctCities returns the distinct cities across all materials.
func (r *GORMMaterialRepository) DistinctCities() ([]string, error) {
	var cities []string
	if err := r.db.Model(&models.Material{}).Distinct().Pluck("city", &cities).Error; err != nil {
		return nil, fmt.Errorf("failed to list material cities: %w", err)
	}
	return cities, nil
}

// Reserve atomically decrements stock. See reserveMaterial.
func (r *GORMMaterialRepository) Reserve(id string, quantity int) error {
	return reserveMaterial(r.db, id, quantity)
}

// reserveMaterial is the single invariant-enforcing stock operation: one
// conditional UPDATE that decrements stock_quantity and derives
// is_available from the remainder. The stock_quantity >= quantity guard
// in the WHERE clause makes two concurrent reservations against the
// same last units resolve to exactly one winner.
func reserveMaterial(tx *gorm.DB, id string, quantity int) error {
	res := tx.Model(&models.Material{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"is_available":   gorm.Expr("stock_quantity - ? > 0", quantity),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reserve %d units of material %s: %w", quantity, id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the material does not exist or the stock guard rejected
		// the decrement; re-read to tell the two apart.
		var material models.Material
		if err := tx.First(&material, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("material %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to reserve material %s: %w", id, err)
		}
		return fmt.Errorf("material %s has %d units, requested %d: %w", id, material.StockQuantity, quantity, ErrInsufficientStock)
	}
	return nil
}
