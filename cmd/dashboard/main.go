package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/population-dashboard/internal/adapter/artifact"
	httpadapter "github.com/couchcryptid/population-dashboard/internal/adapter/http"
	"github.com/couchcryptid/population-dashboard/internal/adapter/render"
	"github.com/couchcryptid/population-dashboard/internal/aggregate"
	"github.com/couchcryptid/population-dashboard/internal/config"
	"github.com/couchcryptid/population-dashboard/internal/controller"
	"github.com/couchcryptid/population-dashboard/internal/dataset"
	"github.com/couchcryptid/population-dashboard/internal/observability"
	"github.com/couchcryptid/population-dashboard/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	obs, report, err := artifact.ReadFile(cfg.DataPath)
	if err != nil {
		logger.Error("failed to read artifact", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}
	ds, err := dataset.New(obs, clockwork.NewRealClock())
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}
	metrics.ObservationsLoaded.Set(float64(ds.Len()))

	minYear, maxYear := ds.YearBounds()
	logger.Info("dataset loaded",
		"path", cfg.DataPath,
		"observations", ds.Len(),
		"dropped", report.Dropped(),
		"countries", len(ds.Countries()),
		"min_year", minYear,
		"max_year", maxYear,
		"version", ds.Version(),
	)

	aggOpts := aggregate.Options{
		PercentCategories: cfg.PercentTrendCategories,
		VariationRanges:   cfg.VariationRangeLimit,
	}
	store := session.NewStore(cfg.SessionCacheSize, func() (*controller.Controller, session.Images) {
		r := render.New(metrics)
		c := controller.New(ds,
			controller.WithRenderer(r),
			controller.WithLogger(logger),
			controller.WithMetrics(metrics),
			controller.WithAggregateOptions(aggOpts),
		)
		return c, r
	}, metrics)

	api := httpadapter.NewHandler(store, controller.New(ds).Controls(), logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, ds, api, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
