// Package main runs the reorder scheduler: on every tick it places auto-orders
// for products at or below their reorder point and serves Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"stockroom/internal/config"
	appctx "stockroom/internal/core/context"
	"stockroom/internal/domain/autoorder"
	"stockroom/internal/domain/settings"
	"stockroom/internal/infrastructure/metrics"
	"stockroom/internal/infrastructure/storage/sqlstore"
	"stockroom/internal/infrastructure/storage/sqlstore/autoorder_repo"
	"stockroom/internal/infrastructure/storage/sqlstore/product_repo"
	"stockroom/internal/infrastructure/storage/sqlstore/settings_repo"
	"stockroom/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log = log.WithComponent("scheduler")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithLogger(ctx, log)
	ctx = appctx.WithActor(ctx, appctx.SystemActor("reorder-scheduler"))

	db, err := sqlstore.Open(ctx, cfg.Database.Store())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	txm := sqlstore.NewTxManager(db)

	loc, err := cfg.AutoOrders.TimeLocation()
	if err != nil {
		log.Fatalw("invalid auto-order location", "error", err)
	}

	snapshot, err := settings_repo.New(txm).LoadAll(ctx)
	if err != nil {
		log.Warnw("settings unavailable, using file and env only", "error", err)
		snapshot = settings.Snapshot{}
	}

	activityLog, err := sqlstore.NewActivityLog(txm)
	if err != nil {
		log.Fatalw("failed to create activity log", "error", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	products := product_repo.New(txm)
	resolver := autoorder.NewIntervalResolver(autoorder.DefaultSources(snapshot, cfg.AutoOrders.ConfigFile)...)
	guard := autoorder.NewGuard(resolver, products,
		autoorder.WithLocation(loc),
		autoorder.WithObserver(m),
	)
	service := autoorder.NewService(guard, products, autoorder_repo.New(txm), txm,
		autoorder.WithActivity(activityLog),
		autoorder.WithServiceObserver(m),
	)

	log.Infow("auto-order interval configured",
		"min_interval_minutes", service.ConfiguredMinIntervalMinutes(ctx),
		"locking_reads", db.Capabilities().LockingReads,
	)

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           NewRouter(NewHealthHandler(db), log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Infow("metrics and health server starting", "addr", cfg.Metrics.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server failed", "error", err)
		}
	}()

	scheduler := NewScheduler(service, db, cfg.Scheduler.Tick, cfg.Scheduler.BatchSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler...")
	cancel()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("metrics server shutdown", "error", err)
	}

	log.Info("scheduler stopped")
}

// Scheduler runs reorder cycles on a fixed tick.
type Scheduler struct {
	service   *autoorder.Service
	db        *sqlstore.DB
	tick      time.Duration
	batchSize int
}

func NewScheduler(service *autoorder.Service, db *sqlstore.DB, tick time.Duration, batchSize int) *Scheduler {
	return &Scheduler{service: service, db: db, tick: tick, batchSize: batchSize}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	statsTicker := time.NewTicker(15 * time.Minute)
	defer statsTicker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		case <-statsTicker.C:
			s.db.LogStats(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	report, err := s.service.RunReorderCycle(ctx, s.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error(ctx, "reorder cycle failed", "error", err)
		}
		return
	}

	if report.Candidates > 0 {
		logger.Info(ctx, "reorder cycle finished",
			"candidates", report.Candidates,
			"placed", len(report.Placed),
			"denied", report.Denied,
			"failed", report.Failed,
			"duration", time.Since(start),
		)
	}
}
