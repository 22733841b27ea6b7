package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"dataroom/internal/auth"
	"dataroom/internal/config"
	"dataroom/internal/domain/repositories"
	"dataroom/internal/handler"
	"dataroom/internal/metrics"
	"dataroom/internal/middleware"
	"dataroom/internal/repository/memory"
	"dataroom/internal/repository/postgres"
	"dataroom/internal/service"
	"dataroom/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging, optionally teed to a log file
	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, config.MaxLogFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg, out)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"upload_root", cfg.UploadRoot,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Repositories: Postgres, or the in-process store for local runs
	var (
		repos repositories.Set
		db    handler.Pinger
	)
	if cfg.DatabaseURL == config.MemoryDatabaseURL {
		store := memory.NewStore()
		repos = memory.NewRepositorySet(store)
		db = store
		logger.Warn("using in-memory database; all data is lost on exit")
	} else {
		if err := postgres.RunMigrations(ctx, cfg.DatabaseURL, logger); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		logger.Info("database connected",
			"max_conns", pool.Config().MaxConns,
			"min_conns", pool.Config().MinConns,
		)

		repos = postgres.NewRepositorySet(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(),
			Logger: logger,
		})
		db = pool
	}

	// Content store
	contentStore, err := storage.NewLocalStore(cfg.UploadRoot, logger, m)
	if err != nil {
		log.Fatalf("Failed to create content store: %v", err)
	}

	// Identity: tokens are always issued with the HMAC secret; an external
	// IdP's JWKS replaces verification when configured
	tokens, err := auth.NewHMACTokenService(cfg.JWTSecret, cfg.JWTTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}
	var verifier auth.JWTVerifier = tokens
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
	}
	defer verifier.Close()

	svc := service.NewServices(repos, contentStore, tokens, logger)

	logger.Info("services initialized")

	router := &handler.Router{
		Users:       handler.NewUserHandler(svc.Users, logger, cfg.Debug),
		DataRooms:   handler.NewDataRoomHandler(svc.DataRooms, logger, cfg.Debug),
		Folders:     handler.NewFolderHandler(svc.Folders, logger, cfg.Debug),
		Files:       handler.NewFileHandler(svc.Files, cfg.MaxUploadBytes, logger, cfg.Debug),
		Health:      handler.NewHealthHandler(db, logger),
		Verifier:    verifier,
		AuthLimiter: middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	router.Register(mux)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestID → RequestLog → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLog(logger, m, mux)(h)
	h = middleware.RequestID(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // large uploads
		WriteTimeout:      5 * time.Minute, // large downloads
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
