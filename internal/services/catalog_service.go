package services

import (
	"fmt"

	"organicindia/internal/models"
	"organicindia/internal/repositories"
)

// CatalogView is what the vendor dashboard renders: the filtered
// listing plus the unfiltered category/city sets for filter controls.
type CatalogView struct {
	Materials  []models.Material
	Categories []string
	Cities     []string
}

// CatalogService handles business logic for the material catalog.
type CatalogService struct {
	materialRepo repositories.MaterialRepository
	userRepo     repositories.UserRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(materialRepo repositories.MaterialRepository, userRepo repositories.UserRepository) *CatalogService {
	return &CatalogService{
		materialRepo: materialRepo,
		userRepo:     userRepo,
	}
}

// Browse returns available materials narrowed by the filter, along with
// the distinct categories and cities across all materials.
func (s *CatalogService) Browse(filter repositories.MaterialFilter) (*CatalogView, error) {
	materials, err := s.materialRepo.FindAvailable(filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.materialRepo.DistinctCategories()
	if err != nil {
		return nil, err
	}
	cities, err := s.materialRepo.DistinctCities()
	if err != nil {
		return nil, err
	}
	return &CatalogView{
		Materials:  materials,
		Categories: categories,
		Cities:     cities,
	}, nil
}

// GetMaterial retrieves a single material by its ID.
func (s *CatalogService) GetMaterial(id string) (*models.Material, error) {
	return s.materialRepo.GetByID(id)
}

// SupplierMaterials returns all materials a supplier owns, in any
// availability state.
func (s *CatalogService) SupplierMaterials(supplierID string) ([]models.Material, error) {
	return s.materialRepo.GetBySupplier(supplierID)
}

// AddMaterial creates a material owned by the supplier, stamping city
// and area from the supplier's current profile. Materials start out
// available regardless of the submitted stock quantity.
func (s *CatalogService) AddMaterial(supplierID string, material *models.Material) error {
	supplier, err := s.userRepo.GetByID(supplierID)
	if err != nil {
		return fmt.Errorf("failed to load supplier profile: %w", err)
	}

	material.SupplierID = supplierID
	material.City = supplier.City
	material.Area = supplier.Area
	material.IsAvailable = true

	if err := s.materialRepo.Create(material); err != nil {
		return fmt.Errorf("failed to add material: %w", err)
	}
	return nil
}
