package service

import (
	"context"
	"fmt"

	"github.com/threaddate/backend/internal/domain"
	"github.com/threaddate/backend/internal/repo"
)

// BrandService implements read-only business logic for the brand catalog.
// Brand creation happens through seeding outside the request path.
type BrandService struct {
	brands repo.BrandRepo
}

// NewBrandService constructs a BrandService backed by the provided BrandRepo.
func NewBrandService(brands repo.BrandRepo) *BrandService {
	return &BrandService{brands: brands}
}

// List returns all brands ordered by slug.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BrandService) List(ctx context.Context) ([]domain.Brand, error) {
	brands, err := s.brands.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.BrandService.List: %w", err)
	}
	if brands == nil {
		brands = []domain.Brand{}
	}
	return brands, nil
}

// GetBySlug returns a single brand by its unique slug.
// Returns domain.ErrNotFound if no brand with that slug exists.
func (s *BrandService) GetBySlug(ctx context.Context, slug string) (domain.Brand, error) {
	brand, err := s.brands.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Brand{}, fmt.Errorf("service.BrandService.GetBySlug: %w", err)
	}
	return brand, nil
}
