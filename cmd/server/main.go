// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fiscalia/internal/audit"
	"fiscalia/internal/clearance/document"
	"fiscalia/internal/clearance/handler"
	"fiscalia/internal/clearance/metrics"
	"fiscalia/internal/clearance/ornumber"
	"fiscalia/internal/clearance/service"
	"fiscalia/internal/clearance/store"
	"fiscalia/internal/platform/config"
	"fiscalia/internal/platform/database"
	"fiscalia/internal/platform/health"
	"fiscalia/internal/platform/logger"
	"fiscalia/internal/platform/tracer"
	httptransport "fiscalia/internal/transport/http"
	"fiscalia/migrations"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing fiscalia",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"office", cfg.Office.Name,
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Without a database URL the server runs fully in memory, which is the
	// demo and local development mode.
	var (
		recordStore service.Store
		auditStore  audit.Store
	)
	if pool != nil {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := database.ApplyMigrations(migrateCtx, pool.DB(), migrations.FS); err != nil {
			cancel()
			log.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		cancel()
		recordStore = store.NewPostgres(pool.DB())
		auditStore = audit.NewPostgres(pool.DB())
		log.Info("using postgres stores")
	} else {
		recordStore = store.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		log.Warn("no database configured, using in-memory stores")
	}

	auditor := audit.NewPublisher(auditStore, audit.WithPublisherLogger(log))

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}
	if cfg.Environment == "production" {
		svcOpts = append(svcOpts, service.WithTracer(tracer.NewOTel()))
	}
	svc := service.NewService(
		recordStore,
		document.NewAssembler(cfg.Office),
		ornumber.New(cfg.Office.ORSeriesPrefix),
		auditor,
		svcOpts...,
	)

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}

	router := httptransport.NewRouter(cfg, handler.New(svc, log), healthHandler, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	if err := pool.Close(); err != nil {
		log.Error("closing database pool failed", "error", err)
	}

	log.Info("server stopped")
}
