package transport

import (
	"encoding/json"
	"net/http"

	"pricewatch/internal/domain"
	"pricewatch/internal/middleware"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateStoreRequest represents the store creation request payload
type CreateStoreRequest struct {
	Name    string `json:"name" validate:"required"`
	BaseURL string `json:"base_url" validate:"required,url"`
	Active  *bool  `json:"active"`
}

// StoreHandler handles HTTP requests for store operations
type StoreHandler struct {
	storeService service.StoreService
	logger       *zap.Logger
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(storeService service.StoreService, logger *zap.Logger) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
		logger:       logger,
	}
}

// RegisterRoutes registers all store routes
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/stores", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles listing stores
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)
	activeOnly := parseBoolParam(r, "active_only", false)

	stores, err := h.storeService.List(r.Context(), activeOnly, skip, limit)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stores)
}

// Get handles fetching a single store
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	store, err := h.storeService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, store)
}

// Create handles store creation
func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStoreRequest

	// Decode and validate request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Store validation failed", zap.Error(err))

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
	store, err := h.storeService.Create(r.Context(), &domain.Store{
		Name:    req.Name,
		BaseURL: req.BaseURL,
		Active:  active,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Store created", zap.String("store_id", store.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, store)
}

// Update handles a sparse store update
func (h *StoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	// Decode request; every field is optional
	var update domain.StoreUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Debug("Store update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store, err := h.storeService.Update(r.Context(), id, update)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, store)
}

// Delete handles store deletion
func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.storeService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Store deleted", zap.String("store_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
