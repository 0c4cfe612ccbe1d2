package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"items-api/internal/config"
	custommiddleware "items-api/internal/middleware"
	"items-api/internal/repository"
	"items-api/internal/service"
	"items-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Resources are the long lived clients the server owns. Redis and DB may be
// nil when the configured store does not need them.
type Resources struct {
	Items repository.ItemRepository
	Redis *redis.Client
	DB    *sql.DB
}

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	resources Resources
}

func NewServer(cfg *config.Config, logger *zap.Logger, resources Resources) *Server {
	// Create router
	router := chi.NewRouter()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := custommiddleware.NewMetrics(registry)

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	healthHandler := transport.NewHealthHandler(cfg.Service.Name, cfg.Service.Version, cfg.Server.Env)
	router.Get("/health", healthHandler.Health)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Initialize services
	itemService := service.NewItemService(resources.Items)

	// Initialize handlers
	itemHandler := transport.NewItemHandler(itemService, logger)

	var itemMiddleware []func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		if resources.Redis != nil {
			itemMiddleware = append(itemMiddleware, custommiddleware.RateLimitMiddleware(resources.Redis, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "ratelimit:" + cfg.Service.Name,
			}, logger))
		} else {
			logger.Warn("Rate limiting enabled without a Redis client, skipping")
		}
	}

	// Register routes
	itemHandler.RegisterRoutes(router, itemMiddleware...)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    logger,
		resources: resources,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.resources.Redis != nil {
		if err := s.resources.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.resources.DB != nil {
		if err := s.resources.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
