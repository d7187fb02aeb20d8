package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apptracking "github.com/alexph/woocommerce-crowdstream/internal/application/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/auth"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/cache"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/config"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/logger"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/persistence"
	"github.com/alexph/woocommerce-crowdstream/internal/interfaces/http/handler"
	"github.com/alexph/woocommerce-crowdstream/internal/interfaces/http/middleware"
	"github.com/alexph/woocommerce-crowdstream/internal/interfaces/http/router"
)

//	@title			WooCommerce Crowdstream API
//	@version		1.0
//	@description	Crowdstream analytics tracking integration for WooCommerce storefronts

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// maxRequestBody caps request bodies. The only writable endpoint
// accepts a small JSON settings document.
const maxRequestBody = 1 << 20

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	// Install as the global logger for packages that log via zap.L()
	zap.ReplaceGlobals(log)

	log.Info("Starting WooCommerce Crowdstream",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	settingsStore := persistence.NewGormSettingsStore(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	identityProvider := persistence.NewGormIdentityProvider(db.DB)

	// Tracked flag store (Redis with in-memory fallback)
	flagFactory := cache.NewTrackedFlagStoreFactory(cfg.Redis, cache.WithLogger(log))
	flagStore, err := flagFactory.CreateStore(cfg.Tracking.FlagStore)
	if err != nil {
		log.Fatal("Failed to create tracked flag store", zap.Error(err))
	}
	defer func() {
		if err := flagStore.Close(); err != nil {
			log.Error("Error closing tracked flag store", zap.Error(err))
		}
	}()

	// Application service
	trackingService := apptracking.NewService(
		settingsStore,
		identityProvider,
		orderRepo,
		productRepo,
		flagStore,
		log,
	)

	// Storefront session tokens
	sessionTokens := auth.NewSessionTokenService(cfg.JWT)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: recovery, request logging, rate limiting,
	// body limits, visitor resolution
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.RateLimit(middleware.NewRateLimiter(300, time.Minute)))
	engine.Use(middleware.BodyLimit(maxRequestBody))
	engine.Use(middleware.VisitorMiddleware(sessionTokens, log))

	// Health check endpoint (outside API versioning)
	systemHandler := handler.NewSystemHandler(db)
	engine.GET("/health", systemHandler.Health)

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewHooksHandler(trackingService)).
		Register(handler.NewSettingsHandler(trackingService)).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
