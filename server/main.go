package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/san-kum/roadrisk/server/cache"
	"github.com/san-kum/roadrisk/server/conditions"
	"github.com/san-kum/roadrisk/server/config"
	"github.com/san-kum/roadrisk/server/geo"
	"github.com/san-kum/roadrisk/server/handlers"
	"github.com/san-kum/roadrisk/server/middleware"
	"github.com/san-kum/roadrisk/server/processor"
	"github.com/san-kum/roadrisk/server/risk"
	"go.uber.org/zap"
)

type Server struct {
	router      *gin.Engine
	logger      *zap.Logger
	processor   *processor.AssessmentProcessor
	cache       cache.Cache
	rateLimiter *middleware.RateLimiter
	config      *config.Config
}

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize logger
	var logger *zap.Logger
	var err error

	if cfg.Logging.Format == "json" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Validate configuration
	if err := cfg.ValidateConfig(logger); err != nil {
		logger.Fatal("Configuration validation failed", zap.Error(err))
	}

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment))

		var err error
		if cfg.Security.EnableHTTPS {
			err = srv.ListenAndServeTLS(cfg.Security.CertFile, cfg.Security.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown assessment processor
	if err := server.processor.Shutdown(); err != nil {
		logger.Error("Failed to shutdown assessment processor", zap.Error(err))
	}

	// Shutdown rate limiter
	if server.rateLimiter != nil {
		server.rateLimiter.Shutdown()
	}

	// Shutdown cache
	if server.cache != nil {
		if err := server.cache.Close(); err != nil {
			logger.Error("Failed to close cache", zap.Error(err))
		}
	}

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Initialize assessment cache
	cacheInstance := cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.TTL, logger)

	// Initialize core services
	scorer := risk.NewScorer(logger)
	resolver := geo.NewCityResolver()
	defaulter := conditions.NewDefaulter()

	// Initialize assessment processor
	assessmentProcessor := processor.NewAssessmentProcessor(scorer, resolver, defaulter, cacheInstance, logger)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(
		cfg.Security.RateLimitRPS,
		cfg.Security.RateLimitBurst,
		logger,
	)

	// Initialize authentication middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Security.JWTSecretKey, logger)

	// Setup router
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Security.AllowedOrigins))
	router.Use(middleware.RequestSizeLimit(cfg.Security.MaxRequestSize))
	router.Use(middleware.InputValidation())
	router.Use(middleware.TimeoutHandler(cfg.Security.RequestTimeout))

	// Initialize handlers
	predictHandler := handlers.NewPredictHandler(assessmentProcessor, resolver, defaulter, logger)
	wsHandler := handlers.NewWebSocketHandler(assessmentProcessor, logger)

	// Setup routes
	setupRoutes(router, predictHandler, wsHandler, authMiddleware, rateLimiter)

	return &Server{
		router:      router,
		logger:      logger,
		processor:   assessmentProcessor,
		cache:       cacheInstance,
		rateLimiter: rateLimiter,
		config:      cfg,
	}, nil
}

func setupRoutes(router *gin.Engine, predictHandler *handlers.PredictHandler, wsHandler *handlers.WebSocketHandler, auth *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter) {
	// Health check (no auth required)
	router.GET("/health", middleware.HealthCheck())

	// WebSocket endpoint (rate limited)
	router.GET("/ws", rateLimiter.RateLimit(), wsHandler.HandleWebSocket)

	// API routes
	api := router.Group("/api/v1")
	{
		// Public endpoints
		api.GET("/health", middleware.HealthCheck())
		api.GET("/risk-factors", predictHandler.RiskFactors)
		api.GET("/model-info", predictHandler.ModelInfo)

		// Protected endpoints
		protected := api.Group("/")
		protected.Use(rateLimiter.RateLimit())
		{
			// Risk assessment (rate limited)
			protected.POST("/predict", predictHandler.Predict)
			protected.POST("/predict/coordinates", predictHandler.PredictCoordinates)
			protected.POST("/predict/batch", predictHandler.PredictBatch)

			// Location and weather helpers (rate limited)
			protected.POST("/location", predictHandler.Location)
			protected.GET("/weather", predictHandler.Weather)

			// Statistics (rate limited)
			protected.GET("/stats", predictHandler.GetStats)
		}

		// Admin endpoints (require authentication)
		admin := api.Group("/admin")
		admin.Use(auth.RequireAuth())
		admin.Use(auth.RequireRole("admin"))
		{
			admin.GET("/stats", predictHandler.GetStats)
		}
	}
}
