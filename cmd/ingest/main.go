// Command ingest reads the UN population data portal CSV export, normalizes
// it, and writes the JSON artifact the dashboard loads. With -publish it also
// sends every observation to Kafka.
//
// Usage:
//
//	go run ./cmd/ingest \
//	  -csv unpopulation_dataportal.csv \
//	  -out poblacion_data.json \
//	  -publish
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/population-dashboard/internal/adapter/artifact"
	"github.com/couchcryptid/population-dashboard/internal/adapter/csvsource"
	kafkaadapter "github.com/couchcryptid/population-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/population-dashboard/internal/config"
	"github.com/couchcryptid/population-dashboard/internal/observability"
	"github.com/couchcryptid/population-dashboard/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	csvPath := flag.String("csv", cfg.CSVPath, "UN data portal CSV export to read")
	outPath := flag.String("out", cfg.DataPath, "JSON artifact to write")
	publish := flag.Bool("publish", cfg.KafkaEnabled, "also publish observations to Kafka")
	flag.Parse()

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	loaders := []pipeline.Loader{artifact.NewFileLoader(*outPath)}
	if *publish {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(
		csvsource.NewSource(*csvPath, logger),
		pipeline.NewTransformer(logger, metrics),
		loaders,
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx)
	if err != nil {
		logger.Error("ingest failed", "csv", *csvPath, "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // deferred closes are best-effort
	}
	logger.Info("artifact written",
		"path", *outPath,
		"observations", report.Kept,
		"dropped", report.Dropped(),
		"duration_ms", report.Duration.Milliseconds(),
	)
}
