// Package main is the local replay harness: it drives internal/engine
// against a recorded bar/VIX CSV pair through a paper-trading host,
// serving the read-only diagnostics surface alongside it the way the
// teacher's cmd/server wires its API server alongside the trading
// agent (internal/api.Server started on its own goroutine while the
// agent drives its own loop on the main one).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atlas-desktop/pairs-engine/internal/barfeed"
	"github.com/atlas-desktop/pairs-engine/internal/config"
	"github.com/atlas-desktop/pairs-engine/internal/diagnostics"
	"github.com/atlas-desktop/pairs-engine/internal/engine"
	"github.com/atlas-desktop/pairs-engine/internal/paperhost"
	"github.com/atlas-desktop/pairs-engine/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "Engine configuration file")
	barsPath := flag.String("bars", "./data/bars.csv", "Replay bars CSV (timestamp,symbol,close)")
	vixPath := flag.String("vix", "./data/vix.csv", "Replay VIX CSV (timestamp,vix)")
	startingCash := flag.Float64("cash", 1_000_000, "Starting paper-trading cash")
	diagHost := flag.String("diag-host", "localhost", "Diagnostics server host")
	diagPort := flag.Int("diag-port", 8090, "Diagnostics server port")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := setupLogger(*logLevel)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	feed, err := barfeed.LoadReplayFeed(*barsPath, *vixPath)
	if err != nil {
		logger.Fatal("failed to load replay feed", zap.Error(err))
	}
	logger.Info("loaded replay feed", zap.Int("ticks", feed.Len()))

	host := paperhost.New(*startingCash)

	eng, err := engine.Initialize(cfg, host, logger)
	if err != nil {
		logger.Fatal("failed to initialize engine", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	metrics := telemetry.New(reg)
	eng.SetMetrics(metrics)

	diagServer := diagnostics.NewServer(logger, diagnostics.Config{
		Host:         *diagHost,
		Port:         *diagPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, eng, reg)
	eng.SetStreamSink(diagServer.Hub())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := diagServer.Start(); err != nil {
			logger.Error("diagnostics server error", zap.Error(err))
		}
	}()

	logger.Info("starting replay",
		zap.String("diagnostics", fmt.Sprintf("http://%s:%d", *diagHost, *diagPort)))

	done := make(chan error, 1)
	go func() { done <- runReplay(ctx, feed, host, eng, logger) }()

	var replayErr error
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
		cancel()
		replayErr = <-done
	case replayErr = <-done:
		if replayErr != nil {
			logger.Error("replay terminated with error", zap.Error(replayErr))
		}
	}

	result := eng.Shutdown()
	logger.Info("replay complete",
		zap.Int("trades", result.Results.TotalTrades),
		zap.Float64("total_return", result.Results.TotalReturn),
		zap.Float64("sharpe", result.Results.SharpeRatio),
		zap.Float64("max_drawdown", result.Results.MaxDrawdown),
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := diagServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during diagnostics server shutdown", zap.Error(err))
	}

	if replayErr != nil {
		os.Exit(1)
	}
}

// runReplay drives the engine one tick at a time until the feed is
// exhausted or ctx is cancelled. Fatal errors from OnBar (Invariant,
// unrecovered Host) stop the replay immediately, matching spec §7's
// "set a non-zero exit" requirement.
func runReplay(ctx context.Context, feed *barfeed.ReplayFeed, host *paperhost.Host, eng *engine.Engine, log *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		tick, ok, err := feed.Next()
		if err != nil {
			return fmt.Errorf("replay feed: %w", err)
		}
		if !ok {
			return nil
		}

		host.Advance(tick.Time, tick.Bars)
		if err := eng.OnBar(tick); err != nil {
			log.Error("fatal engine error", zap.Error(err))
			return err
		}
	}
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
