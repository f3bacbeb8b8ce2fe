package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/analytics"
	"github.com/crow2678/Digital-Twin-sub001/internal/api/handlers"
	"github.com/crow2678/Digital-Twin-sub001/internal/api/routes"
	"github.com/crow2678/Digital-Twin-sub001/internal/capture"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/collector"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/localstore"
	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/scheduler"
	"github.com/crow2678/Digital-Twin-sub001/internal/syncqueue"
	"github.com/crow2678/Digital-Twin-sub001/pkg/config"
	"github.com/crow2678/Digital-Twin-sub001/pkg/logger"
	"github.com/gin-gonic/gin"
	goflags "github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type options struct {
	Config      string `short:"c" long:"config" description:"Path to config file"`
	ListenAddr  string `long:"listen" description:"Local intake address (overrides config)"`
	UserID      string `long:"user" description:"User identifier (overrides config)"`
	StoragePath string `long:"storage" description:"SQLite storage path (overrides config)"`
	PlainPage   bool   `long:"plain-page" description:"Run without host-platform signals"`
}

func main() {
	var opts options
	parser := goflags.NewParser(&opts, goflags.Default)
	parser.Name = "twin-agent"
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(opts.Config)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}
	if opts.ListenAddr != "" {
		cfg.Agent.ListenAddr = opts.ListenAddr
	}
	if opts.UserID != "" {
		cfg.Agent.UserID = opts.UserID
	}
	if opts.StoragePath != "" {
		cfg.Agent.StoragePath = opts.StoragePath
	}

	log := logger.NewLoggerWithLevel(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Agent configuration loaded",
		zap.String("user_id", cfg.Agent.UserID),
		zap.String("storage_path", cfg.Agent.StoragePath),
		zap.String("collector", cfg.Collector.BaseURL),
	)

	// Durable local storage shared by capture, sync, and the dashboard.
	store, err := localstore.Open(cfg.Agent.StoragePath)
	if err != nil {
		log.Fatal("Failed to open local storage", zap.Error(err))
	}
	defer store.Close()

	client := collector.NewClient(cfg.Collector)

	runtime := capture.ContextHostExtension
	if opts.PlainPage {
		runtime = capture.ContextPlainPage
	}

	syncer := syncqueue.NewSyncer(cfg.Agent.UserID, store, client, nil, log)
	tracker := capture.NewTracker(cfg.Agent.UserID, runtime, store, syncer, nil, log)
	resolver := analytics.NewResolver(cfg.Agent.UserID, store, client, nil, log)

	ctx := context.Background()
	if err := tracker.Restore(ctx); err != nil {
		log.Warn("Failed to restore event buffer", zap.Error(err))
	}
	if err := syncer.Restore(ctx); err != nil {
		log.Warn("Failed to restore pending sync queue", zap.Error(err))
	}

	sched := scheduler.NewScheduler(syncer, resolver, cfg.Agent.SyncInterval, cfg.Agent.RefreshInterval, log)
	sched.Start()
	defer sched.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	captureRoutes := routes.NewCaptureRoutes(handlers.NewCaptureHandler(tracker))
	captureRoutes.RegisterRoutes(router)

	dashboardRoutes := routes.NewDashboardRoutes(handlers.NewDashboardHandler(resolver, syncer))
	dashboardRoutes.RegisterRoutes(router)

	routes.SetupHealthRoutes(router, map[string]routes.DependencyCheck{
		"collector": func() error {
			probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return client.Health(probeCtx)
		},
	})

	server := &http.Server{
		Addr:    cfg.Agent.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Info("Agent intake listening", zap.String("addr", cfg.Agent.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start agent server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down agent...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Agent forced to shutdown", zap.Error(err))
	}

	// One last delivery attempt so a clean shutdown leaves as little
	// pending as possible.
	syncer.SyncPending(shutdownCtx)

	log.Info("Agent exited properly")
}
