package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"auxwheel/internal/app"
	"auxwheel/internal/config"
	"auxwheel/internal/stats"
	httpTransport "auxwheel/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting aux session server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	catalog, err := app.LoadCatalog(cfg.Game.MusicFile)
	if err != nil {
		logger.Error("failed to load music catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("music catalog loaded", "songs", catalog.Size())

	store, err := stats.OpenSQLite(cfg.Stats.DBPath)
	if err != nil {
		logger.Error("failed to open stats store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	sink := stats.NewSink(store, logger)

	settings := app.Settings{
		VotingDuration:  cfg.Game.VotingDuration(),
		PlayingDuration: cfg.Game.PlayingDuration(),
		RatingDuration:  cfg.Game.RatingDuration(),
		GraceDelay:      cfg.Game.GraceDelay(),
	}

	orchestrator := app.NewOrchestrator(settings, catalog, sink, clockwork.NewRealClock(), logger)
	defer orchestrator.Close()

	server := httpTransport.NewServer(cfg, orchestrator, store, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Let in-flight stats writes settle before the store closes
	sink.Wait()

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
