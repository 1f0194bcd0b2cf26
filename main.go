package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"pvmonitor-cloud/internal/auth"
	"pvmonitor-cloud/internal/config"
	"pvmonitor-cloud/internal/observability/metrics"
	"pvmonitor-cloud/internal/performance/application"
	"pvmonitor-cloud/internal/performance/infrastructure/memory"
	"pvmonitor-cloud/internal/performance/infrastructure/postgres"
	"pvmonitor-cloud/internal/performance/infrastructure/solarapi"
	perfhttp "pvmonitor-cloud/internal/performance/interfaces/http"
	"pvmonitor-cloud/internal/scheduler"
	"pvmonitor-cloud/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootstrapFatal(err, "load config")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("ping database")
		}
		cancel()
	}
	metrics.Init(db)

	fetcher, err := solarapi.NewClient(cfg.DataAPIBaseURL, cfg.DataAPIToken, solarapi.WithBackoff(solarapi.BackoffConfig{
		MaxRetries:      cfg.Fetch.MaxRetries,
		InitialInterval: cfg.Fetch.InitialInterval(),
		MaxInterval:     cfg.Fetch.MaxInterval(),
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("build data api client")
	}

	aggregator, err := application.NewAggregationService(fetcher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build aggregation service")
	}

	var snapshotRepo application.SnapshotRepository
	if db != nil {
		snapshotRepo, err = postgres.NewSnapshotRepository(db)
		if err != nil {
			log.Fatal().Err(err).Msg("build snapshot repository")
		}
	} else {
		log.Warn().Msg("no database configured, snapshots are in-memory only")
		snapshotRepo = memory.NewSnapshotRepository()
	}

	snapshots, err := application.NewSnapshotService(aggregator, snapshotRepo, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build snapshot service")
	}

	sched := scheduler.New(log)
	if len(cfg.Snapshots.Installations) > 0 {
		job, err := application.NewSnapshotRefreshJob(snapshots, cfg.Snapshots.Installations, cfg.Snapshots.LookbackYears, nil, log)
		if err != nil {
			log.Fatal().Err(err).Msg("build snapshot refresh job")
		}
		if err := sched.AddJob(cfg.Snapshots.Schedule, job); err != nil {
			log.Fatal().Err(err).Msg("register snapshot refresh job")
		}
	}
	sched.Start()
	defer sched.Stop()

	handler, err := perfhttp.NewHandler(aggregator, snapshots, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build http handler")
	}

	router := buildRouter(cfg, log, handler, db)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
}

func buildRouter(cfg config.Config, log zerolog.Logger, handler *perfhttp.Handler, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	mw := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	r.Use(mw.Wrap)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				log.Error().Err(err).Msg("health check db ping failed")
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", handler.Routes)
	return r
}

func bootstrapFatal(err error, msg string) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	logger.Fatal().Err(err).Msg(msg)
}
