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

// CreateBrandRequest represents the brand creation request payload
type CreateBrandRequest struct {
	Name           string     `json:"name" validate:"required"`
	ManufacturerID *uuid.UUID `json:"manufacturer_id"`
	LogoURL        *string    `json:"logo_url" validate:"omitempty,url"`
	Active         *bool      `json:"active"`
}

// BrandHandler handles HTTP requests for brand operations, including the
// catalog import that seeds products from a retailer's brand listing.
type BrandHandler struct {
	brandService   service.BrandService
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewBrandHandler creates a new BrandHandler
func NewBrandHandler(brandService service.BrandService, catalogService service.CatalogService, logger *zap.Logger) *BrandHandler {
	return &BrandHandler{
		brandService:   brandService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all brand routes. The catalog import route
// triggers synchronous scraping, so it takes the scrape rate limiter.
func (h *BrandHandler) RegisterRoutes(r chi.Router, scrapeLimit func(http.Handler) http.Handler) {
	r.Route("/api/brands", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/with-manufacturer", h.ListWithManufacturer)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)

		r.Group(func(r chi.Router) {
			r.Use(scrapeLimit)
			r.Get("/search", h.ImportCatalog)
		})
	})
}

// List handles listing brands with optional filters
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	brands, err := h.brandService.List(r.Context(), repository.BrandFilter{
		Search:         r.URL.Query().Get("search"),
		ManufacturerID: parseUUIDParam(r, "manufacturer_id"),
		ActiveOnly:     parseBoolParam(r, "active_only", false),
		Skip:           skip,
		Limit:          limit,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brands)
}

// ListWithManufacturer handles listing brands joined with manufacturer names
func (h *BrandHandler) ListWithManufacturer(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	brands, err := h.brandService.ListWithManufacturer(r.Context(), repository.BrandFilter{
		ActiveOnly: parseBoolParam(r, "active_only", false),
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brands)
}

// ImportCatalog handles scraping a brand's retailer listing and creating the
// catalog products it returns
func (h *BrandHandler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	createProducts := parseBoolParam(r, "create_products", true)

	// Call service
	result, err := h.catalogService.ImportBrandCatalog(r.Context(), query, createProducts)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Brand catalog import finished",
		zap.String("brand", query),
		zap.Int("created", result.CreatedCount),
		zap.Int("skipped", result.SkippedCount),
	)
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Get handles fetching a single brand
func (h *BrandHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	brand, err := h.brandService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

// Create handles brand creation
func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBrandRequest

	// Decode and validate request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Brand validation failed", zap.Error(err))

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
	brand, err := h.brandService.Create(r.Context(), &domain.Brand{
		Name:           req.Name,
		ManufacturerID: req.ManufacturerID,
		LogoURL:        req.LogoURL,
		Active:         active,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Brand created", zap.String("brand_id", brand.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, brand)
}

// Update handles a sparse brand update
func (h *BrandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// Decode request; every field is optional
	var update domain.BrandUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Debug("Brand update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	brand, err := h.brandService.Update(r.Context(), id, update)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

// Delete handles brand deletion
func (h *BrandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.brandService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Brand deleted", zap.String("brand_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
