package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/models"
)

// CatalogService handles menu browsing and admin product management
type CatalogService struct {
	repos *repository.Repositories
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repos *repository.Repositories) *CatalogService {
	return &CatalogService{
		repos: repos,
	}
}

// GetProducts retrieves the customer-facing catalog: available products with
// their category, name ascending.
func (s *CatalogService) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.repos.Catalog.ListProducts(ctx, true)
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	return s.repos.Catalog.GetProduct(ctx, productID)
}

// GetCategories retrieves active categories
func (s *CatalogService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.repos.Catalog.ListCategories(ctx, true)
}

// validateProduct applies the admin product rules: non-negative price and a
// category that actually exists.
func (s *CatalogService) validateProduct(ctx context.Context, req models.ProductRequest) error {
	if req.Price < 0 {
		return ErrNegativePrice
	}

	if req.CategoryID == "" {
		return ErrCategoryRequired
	}

	if _, err := s.repos.Catalog.GetCategory(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryRequired
		}
		return fmt.Errorf("failed to check category: %w", err)
	}

	return nil
}

// CreateProduct creates a new product
func (s *CatalogService) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	return s.repos.Catalog.CreateProduct(ctx, req)
}

// UpdateProduct updates a product
func (s *CatalogService) UpdateProduct(ctx context.Context, productID string, req models.ProductRequest) (*models.Product, error) {
	if err := s.validateProduct(ctx, req); err != nil {
		return nil, err
	}

	return s.repos.Catalog.UpdateProduct(ctx, productID, req)
}

// DeleteProduct deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) error {
	return s.repos.Catalog.DeleteProduct(ctx, productID)
}
