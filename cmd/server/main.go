package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/streamhub/internal/app"
	"github.com/cesargomez89/streamhub/internal/cache"
	"github.com/cesargomez89/streamhub/internal/config"
	"github.com/cesargomez89/streamhub/internal/constants"
	"github.com/cesargomez89/streamhub/internal/domain"
	httpapp "github.com/cesargomez89/streamhub/internal/http"
	"github.com/cesargomez89/streamhub/internal/httpclient"
	"github.com/cesargomez89/streamhub/internal/logger"
	"github.com/cesargomez89/streamhub/internal/metrics"
	"github.com/cesargomez89/streamhub/internal/proxy"
	"github.com/cesargomez89/streamhub/internal/store"
	"github.com/cesargomez89/streamhub/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath,
		store.WithChunkSize(cfg.ChunkSize),
		store.WithLogger(appLogger.WithComponent("store").Logger),
		store.WithChunkHook(metrics.RecordBatch),
	)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Local stream proxy on an ephemeral port
	proxyServer := proxy.NewServer(cfg.ProxyHost,
		proxy.NewForwarder(&http.Client{}, appLogger),
		appLogger,
	)
	if err := proxyServer.Start(); err != nil {
		appLogger.Error("Failed to start stream proxy", "error", err)
		os.Exit(1)
	}
	resolver := proxy.NewResolver(proxyServer, appLogger)

	// Session: browse cache and sync lock live in Redis when configured
	remote := httpclient.NewClient(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.RequestRate, cfg.RequestBurst, cfg.UserAgent)
	opts := []app.Option{}
	if cfg.RedisURL != "" {
		rdb, err := cache.New(cfg.RedisURL)
		if err != nil {
			appLogger.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = rdb.Ping(pingCtx)
		cancel()
		if err != nil {
			appLogger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		opts = append(opts,
			app.WithBrowseCache(rdb, cfg.CacheTTL),
			app.WithLocker(rdb, constants.DefaultSyncLockTTL),
		)
	} else {
		opts = append(opts, app.WithBrowseCache(store.NewSQLiteCache(db), cfg.CacheTTL))
	}
	session := app.NewSession(db, app.XtreamCatalog(remote, appLogger), resolver, appLogger, opts...)
	defer session.Close()

	// Scheduled re-sync
	w := worker.NewWorker(session, cfg.SyncInterval, appLogger)
	if cfg.SyncOnStart {
		w.Bootstrap = &domain.Profile{URL: cfg.ProviderURL, Username: cfg.Username, Password: cfg.Password}
	}
	w.Start()
	defer w.Stop()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := httpapp.NewHandler(session, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
	if err := proxyServer.Shutdown(ctx); err != nil {
		appLogger.Error("Stream proxy forced to shutdown", "error", err)
	}

	appLogger.Info("Server exiting")
}
