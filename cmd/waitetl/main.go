package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/lcaslokonon/disney-wait-times/internal/adapter/http"
	kafkaadapter "github.com/lcaslokonon/disney-wait-times/internal/adapter/kafka"
	"github.com/lcaslokonon/disney-wait-times/internal/config"
	"github.com/lcaslokonon/disney-wait-times/internal/dataset"
	"github.com/lcaslokonon/disney-wait-times/internal/export"
	"github.com/lcaslokonon/disney-wait-times/internal/observability"
	"github.com/lcaslokonon/disney-wait-times/internal/pipeline"
	"github.com/lcaslokonon/disney-wait-times/internal/store"
	"github.com/lcaslokonon/disney-wait-times/internal/touringplans"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := touringplans.NewClient(cfg.FetchTimeout, logger)
	builder := dataset.New(touringplans.DefaultCatalog(), client, logger, metrics)

	sinks, closers, err := buildSinks(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sinks", "error", err)
		os.Exit(1)
	}

	p := pipeline.New(builder, sinks, logger, metrics, clockwork.NewRealClock(), cfg.RefreshInterval)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildSinks assembles the snapshot destinations the configuration enables,
// plus the subset that needs closing on shutdown.
func buildSinks(cfg *config.Config, logger *slog.Logger) ([]pipeline.Sink, []io.Closer, error) {
	var (
		sinks   []pipeline.Sink
		closers []io.Closer
	)

	switch cfg.OutputFormat {
	case "csv":
		sinks = append(sinks, export.NewCSVSink(cfg.OutputFile))
	case "json":
		sinks = append(sinks, export.NewJSONSink(jsonPath(cfg.OutputFile)))
	case "dual":
		sinks = append(sinks,
			export.NewCSVSink(cfg.OutputFile),
			export.NewJSONSink(jsonPath(cfg.OutputFile)),
		)
	case "none":
	}

	if cfg.SQLitePath != "" {
		db, err := store.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, db)
		closers = append(closers, db)
	}

	if cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, w)
		closers = append(closers, w)
	}

	logger.Info("sinks configured", "count", len(sinks), "format", cfg.OutputFormat,
		"sqlite", cfg.SQLitePath != "", "kafka", cfg.KafkaEnabled)
	return sinks, closers, nil
}

// jsonPath rewrites the configured output file's extension to .json so the
// dual format never writes both encodings to the same file.
func jsonPath(path string) string {
	ext := filepath.Ext(path)
	if ext == ".json" {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".json"
}
