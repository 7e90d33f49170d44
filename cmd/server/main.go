package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"twin-agent/internal/app"
	"twin-agent/internal/config"
	"twin-agent/internal/httpapi"
	"twin-agent/internal/logger"
)

func main() {
	ctx := context.Background()

	// ---- Configuration ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Server.LogLevel)

	// ---- Service ----
	svc, err := app.BuildChatService(ctx, cfg)
	if err != nil {
		slog.Error("failed to build chat service", "err", err)
		os.Exit(1)
	}

	// ---- HTTP server ----
	h, err := httpapi.NewHandler(svc)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}
	e := httpapi.NewServer(h, cfg.Server.CORSOrigins)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()
	slog.Info("server started",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Mode,
		"provider", cfg.Provider.Name,
		"persona", cfg.Persona.Source,
	)

	// Wait for interrupt, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down gracefully", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
