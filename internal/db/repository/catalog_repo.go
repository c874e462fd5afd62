package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oasis-cafe/oasis-service/internal/models"
)

// CatalogRepository handles category and product data access
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// productRow is a product joined with its category for single-query hydration
type productRow struct {
	models.Product
	CategoryName    string    `db:"category_name"`
	CategoryActive  bool      `db:"category_is_active"`
	CategoryCreated time.Time `db:"category_created_at"`
	CategoryUpdated time.Time `db:"category_updated_at"`
}

func (row productRow) toProduct() models.Product {
	p := row.Product
	p.Category = &models.Category{
		CategoryID: p.CategoryID,
		Name:       row.CategoryName,
		IsActive:   row.CategoryActive,
		CreatedAt:  row.CategoryCreated,
		UpdatedAt:  row.CategoryUpdated,
	}
	return p
}

const productColumns = `
	p.product_id, p.name, p.price, p.stock, p.category_id, p.is_available,
	p.created_at, p.updated_at,
	c.name AS category_name, c.is_active AS category_is_active,
	c.created_at AS category_created_at, c.updated_at AS category_updated_at
`

// ListProducts retrieves products joined with their category, name ascending.
// With availableOnly set, unavailable products are filtered out.
func (r *CatalogRepository) ListProducts(ctx context.Context, availableOnly bool) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON p.category_id = c.category_id
	`
	if availableOnly {
		query += " WHERE p.is_available"
	}
	query += " ORDER BY p.name ASC"

	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toProduct())
	}

	return products, nil
}

// ListProductsForAdmin retrieves all products newest-ID first for the admin
// dashboard.
func (r *CatalogRepository) ListProductsForAdmin(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON p.category_id = c.category_id
		ORDER BY p.product_id DESC
	`

	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products for admin: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toProduct())
	}

	return products, nil
}

// GetProduct retrieves a product by its human-readable ID
func (r *CatalogRepository) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON p.category_id = c.category_id
		WHERE p.product_id = $1
	`

	var row productRow
	err := r.db.GetContext(ctx, &row, query, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product := row.toProduct()
	return &product, nil
}

// ListCategories retrieves categories, optionally filtered to active ones,
// ordered by category ID.
func (r *CatalogRepository) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := `
		SELECT category_id, name, is_active, created_at, updated_at
		FROM categories
	`
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY category_id ASC"

	var categories []models.Category
	err := r.db.SelectContext(ctx, &categories, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// GetCategory retrieves a category by ID
func (r *CatalogRepository) GetCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	query := `
		SELECT category_id, name, is_active, created_at, updated_at
		FROM categories
		WHERE category_id = $1
	`

	var category models.Category
	err := r.db.GetContext(ctx, &category, query, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// CreateProduct inserts a product with a freshly generated P-prefixed ID,
// retrying on an ID collision with a concurrent insert.
func (r *CatalogRepository) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	insert := `
		INSERT INTO products (product_id, name, price, stock, category_id, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING product_id
	`

	var lastErr error
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		var lastID string
		err := r.db.GetContext(ctx, &lastID,
			`SELECT product_id FROM products ORDER BY product_id DESC LIMIT 1`)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get last product ID: %w", err)
		}

		var productID string
		err = r.db.GetContext(ctx, &productID, insert,
			nextSequentialID("P", lastID),
			req.Name,
			req.Price,
			req.Stock,
			req.CategoryID,
			req.IsAvailable,
		)
		if err == nil {
			return r.GetProduct(ctx, productID)
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to create product after %d attempts: %w", maxIDRetries, lastErr)
}

// UpdateProduct updates a product's editable fields
func (r *CatalogRepository) UpdateProduct(ctx context.Context, productID string, req models.ProductRequest) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, price = $2, stock = $3, category_id = $4, is_available = $5, updated_at = $6
		WHERE product_id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		req.Name, req.Price, req.Stock, req.CategoryID, req.IsAvailable, time.Now(), productID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetProduct(ctx, productID)
}

// DeleteProduct deletes a product
func (r *CatalogRepository) DeleteProduct(ctx context.Context, productID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
