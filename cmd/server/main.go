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

	identityapp "github.com/chedfms/liqtrack/internal/application/identity"
	liquidationapp "github.com/chedfms/liqtrack/internal/application/liquidation"
	"github.com/chedfms/liqtrack/internal/domain/liquidation"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/chedfms/liqtrack/internal/infrastructure/auth"
	"github.com/chedfms/liqtrack/internal/infrastructure/config"
	"github.com/chedfms/liqtrack/internal/infrastructure/event"
	"github.com/chedfms/liqtrack/internal/infrastructure/logger"
	"github.com/chedfms/liqtrack/internal/infrastructure/persistence"
	"github.com/chedfms/liqtrack/internal/infrastructure/storage"
	"github.com/chedfms/liqtrack/internal/interfaces/http/handler"
	"github.com/chedfms/liqtrack/internal/interfaces/http/middleware"
	"github.com/chedfms/liqtrack/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting liquidation tracking service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Database
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Repositories
	liquidationRepo := persistence.NewGormLiquidationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Event bus: workflow transitions fan out to in-process subscribers
	eventBus := event.NewInMemoryBus(log)
	eventBus.Subscribe(logTransition(log),
		liquidation.EventTypeLiquidationSubmitted,
		liquidation.EventTypeLiquidationEndorsedToAccounting,
		liquidation.EventTypeLiquidationEndorsedToCOA,
		liquidation.EventTypeLiquidationReturned,
	)

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, log)
	liquidationService := liquidationapp.NewService(liquidationRepo)
	liquidationService.SetEventPublisher(eventBus)
	importService := liquidationapp.NewImportService(liquidationService, liquidationRepo)

	// Object storage for supporting documents
	docStore, err := storage.NewS3DocumentStore(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	if err := docStore.EnsureBucket(context.Background()); err != nil {
		log.Warn("Could not verify document bucket; uploads may fail until it exists", zap.Error(err))
	}
	liquidationService.SetDocumentStore(docStore)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	liquidationHandler := handler.NewLiquidationHandler(liquidationService)
	documentHandler := handler.NewDocumentHandler(liquidationService)
	importHandler := handler.NewImportHandler(importService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
		},
		Logger: log,
	}))

	r.Register(
		authHandler,
		userHandler,
		liquidationHandler,
		documentHandler,
		importHandler,
	)

	api := r.Setup()
	authHandler.RegisterPublicRoutes(api)
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

// logTransition records workflow movements for the audit trail in the logs.
func logTransition(log *zap.Logger) event.Handler {
	return func(ctx context.Context, ev shared.DomainEvent) error {
		log.Info("Liquidation workflow transition",
			zap.String("event_type", ev.GetEventType()),
			zap.String("liquidation_id", ev.GetAggregateID().String()),
			zap.Time("occurred_at", ev.GetOccurredAt()),
		)
		return nil
	}
}

// healthHandler reports service and database health
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
