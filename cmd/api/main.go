package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/hotlinehub/backend/internal/admin"
	"github.com/hotlinehub/backend/internal/alerts"
	"github.com/hotlinehub/backend/internal/auth"
	"github.com/hotlinehub/backend/internal/cache"
	"github.com/hotlinehub/backend/internal/calls"
	"github.com/hotlinehub/backend/internal/catalog"
	"github.com/hotlinehub/backend/internal/chat"
	"github.com/hotlinehub/backend/internal/config"
	"github.com/hotlinehub/backend/internal/ledger"
	"github.com/hotlinehub/backend/internal/logging"
	"github.com/hotlinehub/backend/internal/metrics"
	"github.com/hotlinehub/backend/internal/profile"
	"github.com/hotlinehub/backend/internal/router"
	"github.com/hotlinehub/backend/internal/store"
	"github.com/hotlinehub/backend/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	m := metrics.Registry(cfg.MetricsNamespace)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("cannot reach PostgreSQL, ensure it is running (e.g. docker-compose up -d)", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to PostgreSQL")

	if err := store.ApplyMigrations(ctx, pool, migrations.Files); err != nil {
		logger.Error("schema migrations failed", "error", err)
		os.Exit(1)
	}
	logger.Info("schema migrations applied")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		logger.Error("failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		logger.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	logger.Info("River migrations applied")

	redisCache := cache.New(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisTLS,
	}, logger)
	defer redisCache.Close()

	// Chat first: the emergency alert worker delivers into chat sessions.
	chatRepo := chat.NewRepository(pool)
	chatSvc := chat.NewService(chatRepo)

	workers := river.NewWorkers()
	river.AddWorker(workers, alerts.NewEmergencyAlertWorker(chatSvc, m))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		logger.Error("failed to create River client", "error", err)
		os.Exit(1)
	}

	insertAlert := func(ctx context.Context, tx pgx.Tx, args alerts.EmergencyAlertJobArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}

	ledgerRepo := ledger.NewRepository(pool)
	ledgerSvc := ledger.NewService(ledgerRepo)

	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.JWTSecret)
	authHandler := auth.NewHandler(authSvc, m, logger)

	if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(pool)
	catalogSvc := catalog.NewService(catalogRepo, redisCache, logger)
	catalogHandler := catalog.NewHandler(catalogSvc, logger)

	callsRepo := calls.NewRepository(pool)
	callsSvc := calls.NewService(callsRepo, ledgerSvc, insertAlert)
	callsHandler := calls.NewHandler(callsSvc, m, logger)

	profileRepo := profile.NewRepository(pool)
	profileHandler := profile.NewHandler(profileRepo, chatSvc, logger)

	chatHandler := chat.NewHandler(chatSvc, logger)

	adminRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(adminRepo, logger)

	apiRouter := router.New(router.Handlers{
		Auth:    authHandler,
		Catalog: catalogHandler,
		Calls:   callsHandler,
		Profile: profileHandler,
		Chat:    chatHandler,
		Admin:   adminHandler,
	}, authSvc, m)

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	// Start River client (processes emergency alert jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			logger.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	logger.Info("starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		logger.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
