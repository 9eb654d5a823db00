package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/predclubs/ledger-engine/config"
	"github.com/predclubs/ledger-engine/internal/events"
	"github.com/predclubs/ledger-engine/internal/events/kafka"
	"github.com/predclubs/ledger-engine/internal/limits"
	"github.com/predclubs/ledger-engine/internal/metrics"
	"github.com/predclubs/ledger-engine/internal/model"
	"github.com/predclubs/ledger-engine/internal/round"
	"github.com/predclubs/ledger-engine/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	// --- Store ---
	var st store.Store
	var cleanup []func()

	if cfg.Database.DSN != "" {
		pool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if cfg.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, cfg.CacheTTL())
			slog.Info("Redis cache enabled", "addr", cfg.Redis.Addr)
		}
	} else {
		slog.Warn("database.dsn not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Event publisher ---
	var publisher events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		cleanup = append(cleanup, func() { kp.Close() })
		publisher = kp
		slog.Info("Kafka publisher enabled", "topic", cfg.Kafka.Topic)
	}

	// --- Commit limits ---
	limiter := limits.NewCommitLimiter(
		model.Micros(cfg.Limits.MaxCommitPerClubMicros),
		model.Micros(cfg.Limits.MaxCommitTotalMicros),
	)

	// --- WebSocket hub ---
	wsHub := round.NewWSHub()
	go wsHub.Run()

	// --- Round service ---
	roundSvc := round.NewService(st, limiter, wsHub, publisher)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.RequestTimeout()))
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"ledger-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for real-time round updates.
		r.Get("/ws", wsHub.HandleWS)

		// Club management.
		r.Post("/clubs", roundSvc.HandleCreateClub)
		r.Post("/clubs/{clubID}/members", roundSvc.HandleJoinClub)
		r.Get("/clubs/{clubID}/performance", roundSvc.HandleClubPerformance)
		r.Get("/clubs/{clubID}/volume", roundSvc.HandleActiveVolume)

		// Round lifecycle.
		r.Post("/clubs/{clubID}/rounds", roundSvc.HandleCreateRound)
		r.Get("/rounds/{roundID}", roundSvc.HandleGetRound)
		r.Post("/rounds/{roundID}/settle", roundSvc.HandleSettleRound)

		// Wallet operations.
		r.Post("/wallet/deposit", roundSvc.HandleDeposit)
		r.Post("/wallet/withdraw", roundSvc.HandleWithdraw)
		r.Post("/wallet/adjust", roundSvc.HandleAdjustment)

		// Derived views.
		r.Get("/users/{userID}/balance", roundSvc.HandleGetBalance)
		r.Get("/users/{userID}/exposure", roundSvc.HandleGetExposure)
		r.Get("/users/{userID}/entries", roundSvc.HandleGetEntries)
		r.Get("/users/{userID}/performance", roundSvc.HandleUserPerformance)
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("ledger-engine listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace())
	defer cancel()

	slog.Info("shutting down ledger-engine...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("ledger-engine stopped")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
