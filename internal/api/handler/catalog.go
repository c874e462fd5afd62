package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/oasis-cafe/oasis-service/internal/api"
	"github.com/oasis-cafe/oasis-service/internal/db/repository"
	"github.com/oasis-cafe/oasis-service/internal/models"
	"github.com/oasis-cafe/oasis-service/internal/service"
)

// CatalogHandler handles menu browsing and admin product management
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// HandleProducts handles public catalog requests under /products
func (h *CatalogHandler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/products")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		h.listProducts(w, r)
		return
	}

	h.getProduct(w, r, path)
}

// HandleCategories handles GET /categories
func (h *CatalogHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	categories, err := h.catalogService.GetCategories(r.Context())
	if err != nil {
		api.InternalServerError(w, err)
		return
	}

	respondJSON(w, categories)
}

// HandleAdminProducts handles admin product management under /admin/products
func (h *CatalogHandler) HandleAdminProducts(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/admin/products")
	path = strings.TrimPrefix(path, "/")

	switch r.Method {
	case http.MethodPost:
		if path != "" {
			api.BadRequest(w, "Invalid path")
			return
		}
		h.createProduct(w, r)

	case http.MethodPut:
		if path == "" {
			api.BadRequest(w, "Product ID is required")
			return
		}
		h.updateProduct(w, r, path)

	case http.MethodDelete:
		if path == "" {
			api.BadRequest(w, "Product ID is required")
			return
		}
		h.deleteProduct(w, r, path)

	default:
		api.MethodNotAllowed(w)
	}
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.GetProducts(r.Context())
	if err != nil {
		api.InternalServerError(w, err)
		return
	}

	respondJSON(w, products)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request, productID string) {
	product, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			api.NotFound(w, "Product not found")
			return
		}
		api.InternalServerError(w, err)
		return
	}

	respondJSON(w, product)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), req)
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	respondCreated(w, product)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request, productID string) {
	var req models.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "Invalid request body")
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), productID, req)
	if err != nil {
		h.respondProductError(w, err)
		return
	}

	respondJSON(w, product)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request, productID string) {
	if err := h.catalogService.DeleteProduct(r.Context(), productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			api.NotFound(w, "Product not found")
			return
		}
		api.InternalServerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) respondProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNegativePrice):
		api.BadRequest(w, "Price cannot be negative")
	case errors.Is(err, service.ErrCategoryRequired):
		api.BadRequest(w, "A valid category is required")
	case errors.Is(err, repository.ErrNotFound):
		api.NotFound(w, "Product not found")
	default:
		api.InternalServerError(w, err)
	}
}
