package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/equigest/internal/app/paymentprocessor"
	"github.com/magabrotheeeer/equigest/internal/config"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting payment-processor", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := paymentprocessor.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize payment-processor", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("payment-processor stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("payment-processor stopped")
}
