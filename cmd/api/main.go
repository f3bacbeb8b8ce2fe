package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/api/handlers"
	"github.com/crow2678/Digital-Twin-sub001/internal/api/middleware"
	"github.com/crow2678/Digital-Twin-sub001/internal/api/routes"
	"github.com/crow2678/Digital-Twin-sub001/internal/domain/behavior"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/cache"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/persistence/postgres/connection"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/persistence/postgres/migrations"
	"github.com/crow2678/Digital-Twin-sub001/pkg/config"
	"github.com/crow2678/Digital-Twin-sub001/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	log := logger.NewLoggerWithLevel(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	// Set up Gin
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	gin.DefaultWriter = os.Stdout

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Type",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	metricsMiddleware := middleware.NewMetricsMiddleware()
	router.Use(metricsMiddleware.CollectMetrics())

	// Add Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Connect to database
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize logrus logger for the repository layer
	repoLogger := logrus.New()
	repoLogger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Mode == "production" {
		repoLogger.SetLevel(logrus.InfoLevel)
	} else {
		repoLogger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis. The collector degrades to uncached reads if
	// Redis is unreachable.
	var redisClient *cache.RedisClient
	redisConfig := cache.NewConfigFromEnv(cfg)
	redisClient, err = cache.NewRedisClient(redisConfig)
	if err != nil {
		log.Warn("Redis unavailable, stats caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Initialize repositories and services
	behaviorRepo := behavior.NewRepository(db, repoLogger)
	behaviorService := behavior.NewService(behaviorRepo, redisClient, log.Logger)

	// Response-level cache for the stats endpoint; ingest invalidates it.
	cacheMiddleware := middleware.NewCacheMiddleware(redisClient, "twin-api", time.Minute)

	// Initialize handlers and routes
	telemetryHandler := handlers.NewTelemetryHandler(behaviorService)
	telemetryRoutes := routes.NewTelemetryRoutes(telemetryHandler)
	telemetryRoutes.RegisterRoutes(router, cacheMiddleware)
	log.Info("Registered telemetry routes at /behavioral-data and /user/:user_id/stats")

	healthChecks := map[string]routes.DependencyCheck{
		"database": func() error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	}
	if redisClient != nil {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.HealthCheck(ctx)
		}
	}
	routes.SetupHealthRoutes(router, healthChecks)

	// Cache hit/miss counters for operators; only meaningful with Redis up.
	router.GET("/health/cache", func(c *gin.Context) {
		if redisClient == nil {
			c.JSON(http.StatusOK, gin.H{"status": "disabled"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"metrics": redisClient.GetMetrics(),
			"pool":    redisClient.GetPoolStats(),
		})
	})

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info(fmt.Sprintf("Collector starting on port %d", cfg.Server.Port))

		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
