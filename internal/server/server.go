package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"pricewatch/internal/config"
	"pricewatch/internal/metrics"
	custommiddleware "pricewatch/internal/middleware"
	"pricewatch/internal/repository"
	"pricewatch/internal/scraper"
	"pricewatch/internal/service"
	"pricewatch/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics endpoint
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Initialize repositories
	manufacturerRepo := repository.NewManufacturerRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	offerRepo := repository.NewOfferRepository(db)

	// Initialize the scraper collaborator client
	scraperClient := scraper.NewHTTPClient(cfg.Scraper, logger)

	// Initialize services
	manufacturerService := service.NewManufacturerService(manufacturerRepo)
	brandService := service.NewBrandService(brandRepo, manufacturerRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	storeService := service.NewStoreService(storeRepo)
	classifier := service.NewCategoryClassifier(catalogRepo, categoryRepo, logger)
	catalogService := service.NewCatalogService(catalogRepo, brandRepo, categoryRepo, classifier, scraperClient, logger)
	storeResolver := service.NewStoreResolver(storeRepo, logger)
	searchService := service.NewSearchService(catalogRepo, offerRepo, storeResolver, scraperClient, cfg.Currency, logger)
	scrapeService := service.NewScrapeService(scraperClient, cfg.Scraper.Retailers, logger)

	// Initialize handlers
	manufacturerHandler := transport.NewManufacturerHandler(manufacturerService, logger)
	brandHandler := transport.NewBrandHandler(brandService, catalogService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	storeHandler := transport.NewStoreHandler(storeService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	productHandler := transport.NewProductHandler(searchService, logger)
	scrapeHandler := transport.NewScrapeHandler(scrapeService, logger)

	// Create the rate limit middleware for scraper-backed endpoints. Without
	// REDIS_HOST the limiter is a no-op so local setups work without Redis.
	var redisClient *redis.Client
	scrapeLimit := func(next http.Handler) http.Handler { return next }
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		scrapeLimit = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.Scraper.RequestsPerMinute,
			Window:            time.Minute,
			KeyPrefix:         "scrape_limit",
		}, logger)
	} else {
		logger.Warn("REDIS_HOST not configured, scraper-backed endpoints are not rate limited")
	}

	// Register routes
	manufacturerHandler.RegisterRoutes(router)
	brandHandler.RegisterRoutes(router, scrapeLimit)
	categoryHandler.RegisterRoutes(router)
	storeHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)
	productHandler.RegisterRoutes(router, scrapeLimit)
	scrapeHandler.RegisterRoutes(router, scrapeLimit)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
