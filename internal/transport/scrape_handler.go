package transport

import (
	"net/http"

	"pricewatch/internal/middleware"
	"pricewatch/internal/scraper"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ScrapeRequest represents the scrape request payload
type ScrapeRequest struct {
	ProductName string `json:"product_name" validate:"required"`
}

// MultiScrapeResponse represents the response of endpoints that query
// several retailers
type MultiScrapeResponse struct {
	Results []scraper.RetailerResult `json:"results"`
}

// ScrapeHandler handles HTTP requests for on-demand scraping. These
// endpoints return live results without persisting them.
type ScrapeHandler struct {
	scrapeService service.ScrapeService
	logger        *zap.Logger
}

// NewScrapeHandler creates a new ScrapeHandler
func NewScrapeHandler(scrapeService service.ScrapeService, logger *zap.Logger) *ScrapeHandler {
	return &ScrapeHandler{
		scrapeService: scrapeService,
		logger:        logger,
	}
}

// RegisterRoutes registers all scrape routes behind the scrape rate limiter
func (h *ScrapeHandler) RegisterRoutes(r chi.Router, scrapeLimit func(http.Handler) http.Handler) {
	r.Route("/api/scrape", func(r chi.Router) {
		r.Use(scrapeLimit)
		r.Post("/all", h.ScrapeAll)
		r.Post("/shopping", h.ScrapeShopping)
		r.Post("/{retailer}", h.ScrapeRetailer)
	})
}

// decodeScrapeRequest reads the shared scrape payload, answering the error
// response itself. The boolean reports whether the handler should continue.
func (h *ScrapeHandler) decodeScrapeRequest(w http.ResponseWriter, r *http.Request) (ScrapeRequest, bool) {
	var req ScrapeRequest

	// Decode and validate request
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Scrape validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return req, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}

	return req, true
}

// ScrapeAll handles querying every configured retailer concurrently
func (h *ScrapeHandler) ScrapeAll(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScrapeRequest(w, r)
	if !ok {
		return
	}

	h.logger.Info("Scraping all retailers", zap.String("product", req.ProductName))
	results := h.scrapeService.ScrapeAll(r.Context(), req.ProductName)

	middleware.RespondWithJSON(w, http.StatusOK, MultiScrapeResponse{Results: results})
}

// ScrapeShopping handles querying the aggregated shopping endpoint
func (h *ScrapeHandler) ScrapeShopping(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScrapeRequest(w, r)
	if !ok {
		return
	}

	h.logger.Info("Scraping shopping aggregate", zap.String("product", req.ProductName))
	results, err := h.scrapeService.ScrapeShopping(r.Context(), req.ProductName)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MultiScrapeResponse{Results: results})
}

// ScrapeRetailer handles querying a single retailer
func (h *ScrapeHandler) ScrapeRetailer(w http.ResponseWriter, r *http.Request) {
	retailer := chi.URLParam(r, "retailer")

	req, ok := h.decodeScrapeRequest(w, r)
	if !ok {
		return
	}

	h.logger.Info("Scraping retailer",
		zap.String("retailer", retailer),
		zap.String("product", req.ProductName),
	)
	result, err := h.scrapeService.ScrapeOne(r.Context(), retailer, req.ProductName)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
