package transport

import (
	"net/http"

	"pricewatch/internal/middleware"
	"pricewatch/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for product offers and the price
// search that scrapes stores on demand
type ProductHandler struct {
	searchService service.SearchService
	logger        *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(searchService service.SearchService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// RegisterRoutes registers all product routes. The search route can trigger
// synchronous scraping, so it takes the scrape rate limiter.
func (h *ProductHandler) RegisterRoutes(r chi.Router, scrapeLimit func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(scrapeLimit)
			r.Get("/search", h.Search)
		})
	})
}

// List handles listing every store offer with its catalog context
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	offers, err := h.searchService.ListOffers(r.Context(), skip, limit)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, offers)
}

// Search handles resolving a product query to its per-store offers, scraping
// the stores first when none are recorded yet
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	result, err := h.searchService.Search(r.Context(), query)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product search completed",
		zap.String("query", query),
		zap.Int("stores", result.TotalStores),
		zap.Bool("was_scraped", result.WasScraped),
	)
	middleware.RespondWithJSON(w, http.StatusOK, result)
}
