package transport

import (
	"encoding/json"
	"net/http"

	"pricewatch/internal/domain"
	"pricewatch/internal/middleware"
	"pricewatch/internal/repository"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCatalogProductRequest represents the catalog product creation
// request payload
type CreateCatalogProductRequest struct {
	Name       string         `json:"name" validate:"required"`
	SKU        *string        `json:"sku"`
	BrandID    *uuid.UUID     `json:"brand_id"`
	CategoryID *uuid.UUID     `json:"category_id"`
	Attributes map[string]any `json:"attributes"`
	ImageURL   *string        `json:"image_url" validate:"omitempty,url"`
	Active     *bool          `json:"active"`
}

// CatalogHandler handles HTTP requests for catalog product operations
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog product routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products-catalog", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/with-details", h.ListWithDetails)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles listing catalog products with optional filters
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	products, err := h.catalogService.List(r.Context(), repository.CatalogFilter{
		Search:     r.URL.Query().Get("search"),
		BrandID:    parseUUIDParam(r, "brand_id"),
		CategoryID: parseUUIDParam(r, "category_id"),
		ActiveOnly: parseBoolParam(r, "active_only", false),
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListWithDetails handles listing catalog products joined with brand and
// category names
func (h *CatalogHandler) ListWithDetails(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	products, err := h.catalogService.ListWithDetails(r.Context(), repository.CatalogFilter{
		Search:     r.URL.Query().Get("search"),
		BrandID:    parseUUIDParam(r, "brand_id"),
		CategoryID: parseUUIDParam(r, "category_id"),
		ActiveOnly: parseBoolParam(r, "active_only", false),
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get handles fetching a single catalog product
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles catalog product creation
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCatalogProductRequest

	// Decode and validate request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Catalog product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	// Call service
	product, err := h.catalogService.Create(r.Context(), &domain.CatalogProduct{
		Name:       req.Name,
		SKU:        req.SKU,
		BrandID:    req.BrandID,
		CategoryID: req.CategoryID,
		Attributes: req.Attributes,
		ImageURL:   req.ImageURL,
		Active:     active,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Catalog product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles a sparse catalog product update
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// Decode request; every field is optional
	var update domain.CatalogProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Debug("Catalog product update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalogService.Update(r.Context(), id, update)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles catalog product deletion
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Catalog product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
