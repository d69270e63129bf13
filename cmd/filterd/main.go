// Command filterd runs a standalone filter-execution service speaking
// the easel wire protocol. It serves the reference filters and is meant
// for local development and integration testing against a real editor
// session.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/easel"
	"github.com/gogpu/easel/wire"
)

func main() {
	var (
		addr    = flag.String("addr", ":8701", "listen address")
		level   = flag.String("level", "info", "log level (debug, info, warn, error)")
		logJSON = flag.Bool("log-json", false, "emit JSON logs instead of text")
	)
	flag.Parse()

	logger := setupLogger(*level, *logJSON)
	easel.SetLogger(logger)

	srv := wire.NewServer(*addr)
	wire.RegisterReference(srv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("filterd starting", "addr", *addr)
	if err := srv.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("filterd failed", "error", err)
		os.Exit(1)
	}
	logger.Info("filterd stopped")
}

func setupLogger(level string, json bool) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
