package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"twin-agent/handler"
	"twin-agent/internal/app"
	"twin-agent/internal/config"
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

	// ---- Handler ----
	h, err := handler.NewHandler(svc)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
