package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/config"
	"github.com/mamadbah2/flockbook/internal/metrics"
	"github.com/mamadbah2/flockbook/internal/persistence"
	"github.com/mamadbah2/flockbook/internal/pipeline"
	"github.com/mamadbah2/flockbook/internal/repository"
	"github.com/mamadbah2/flockbook/internal/scheduler"
	"github.com/mamadbah2/flockbook/internal/server/handlers"
	"github.com/mamadbah2/flockbook/internal/server/router"
	farmsvc "github.com/mamadbah2/flockbook/internal/service/farms"
	reportingsvc "github.com/mamadbah2/flockbook/internal/service/reporting"
	"github.com/mamadbah2/flockbook/internal/store"
	"github.com/mamadbah2/flockbook/pkg/clients/notify"
	"github.com/mamadbah2/flockbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	m := metrics.New()

	backend, err := repository.Open(context.Background(), *cfg, baseLogger.Named("repo"))
	if err != nil {
		baseLogger.Fatal("failed to init storage backend", zap.Error(err))
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage backend", zap.Error(err))
		}
	}()

	bridge := persistence.NewBridge(backend, baseLogger.Named("persistence"), m)
	initial := bridge.Rehydrate(context.Background())

	st := store.NewDefault(initial,
		store.WithLogger(baseLogger.Named("store")),
		store.WithMetrics(m))
	defer st.Close()
	detach := bridge.Attach(st)
	defer detach()

	runner := pipeline.New(st,
		pipeline.WithLogger(baseLogger.Named("pipeline")),
		pipeline.WithMetrics(m),
		pipeline.WithEpics(pipeline.DefaultEpics(pipeline.UUIDGenerator{}, cfg.Pipeline.Latency)...))
	pipelineCtx, cancelPipeline := context.WithCancel(context.Background())
	defer cancelPipeline()
	runner.Start(pipelineCtx)

	farmSvc := farmsvc.NewService(st, bridge, baseLogger.Named("svc.farms"))
	reportingSvc := reportingsvc.NewService(st, baseLogger.Named("svc.reporting"))

	var sched *scheduler.Scheduler
	if cfg.Notify.Enabled() {
		notifier := notify.NewClient(cfg.Notify)
		sched, err = scheduler.NewScheduler(cfg.Reporting, reportingSvc, notifier, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
	} else {
		baseLogger.Warn("notify webhook missing, daily summaries disabled")
	}

	engine := router.New(router.Handlers{
		Farms:     handlers.NewFarmHandler(farmSvc, baseLogger.Named("handlers.farms")),
		Dashboard: handlers.NewDashboardHandler(reportingSvc, baseLogger.Named("handlers.dashboard")),
		Metrics:   m.Handler(),
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Int("farms", len(initial.Farms.Farms)),
			zap.Int("reports", len(initial.Reports.Reports)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	if sched != nil {
		sched.Stop()
	}

	// Let accepted requests complete so their outcome is persisted.
	runner.Stop()
	runner.Wait()
	baseLogger.Info("effect pipeline drained")
}
