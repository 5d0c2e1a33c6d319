package transport

import (
	"encoding/json"
	"net/http"

	"pricewatch/internal/domain"
	"pricewatch/internal/middleware"
	"pricewatch/internal/repository"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateManufacturerRequest represents the manufacturer creation request payload
type CreateManufacturerRequest struct {
	Name             string  `json:"name" validate:"required"`
	TaxID            *string `json:"tax_id"`
	Country          *string `json:"country"`
	LogoURL          *string `json:"logo_url" validate:"omitempty,url"`
	Website          *string `json:"website" validate:"omitempty,url"`
	MainBusinessLine *string `json:"main_business_line"`
}

// ManufacturerHandler handles HTTP requests for manufacturer operations
type ManufacturerHandler struct {
	manufacturerService service.ManufacturerService
	logger              *zap.Logger
}

// NewManufacturerHandler creates a new ManufacturerHandler
func NewManufacturerHandler(manufacturerService service.ManufacturerService, logger *zap.Logger) *ManufacturerHandler {
	return &ManufacturerHandler{
		manufacturerService: manufacturerService,
		logger:              logger,
	}
}

// RegisterRoutes registers all manufacturer routes
func (h *ManufacturerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/manufacturers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/with-brands", h.ListWithBrands)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles listing manufacturers with optional search and country filters
func (h *ManufacturerHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	manufacturers, err := h.manufacturerService.List(r.Context(), repository.ManufacturerFilter{
		Search:  r.URL.Query().Get("search"),
		Country: r.URL.Query().Get("country"),
		Skip:    skip,
		Limit:   limit,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, manufacturers)
}

// ListWithBrands handles listing manufacturers with their brand counts
func (h *ManufacturerHandler) ListWithBrands(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	manufacturers, err := h.manufacturerService.ListWithBrandCounts(r.Context(), repository.ManufacturerFilter{
		Skip:  skip,
		Limit: limit,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, manufacturers)
}

// Get handles fetching a single manufacturer
func (h *ManufacturerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	manufacturer, err := h.manufacturerService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, manufacturer)
}

// Create handles manufacturer creation
func (h *ManufacturerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateManufacturerRequest

	// Decode and validate request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Manufacturer validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Call service
	manufacturer, err := h.manufacturerService.Create(r.Context(), &domain.Manufacturer{
		Name:             req.Name,
		TaxID:            req.TaxID,
		Country:          req.Country,
		LogoURL:          req.LogoURL,
		Website:          req.Website,
		MainBusinessLine: req.MainBusinessLine,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Manufacturer created", zap.String("manufacturer_id", manufacturer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, manufacturer)
}

// Update handles a sparse manufacturer update
func (h *ManufacturerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// Decode request; every field is optional
	var update domain.ManufacturerUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Debug("Manufacturer update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	manufacturer, err := h.manufacturerService.Update(r.Context(), id, update)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, manufacturer)
}

// Delete handles manufacturer deletion
func (h *ManufacturerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.manufacturerService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Manufacturer deleted", zap.String("manufacturer_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
