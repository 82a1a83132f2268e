package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yigit/taluation/internal/pkg/logger"
	"github.com/yigit/taluation/internal/server"
)

// @title Taluation API
// @version 1.0
// @description Teaching evaluation backend: accounts, classes and student evaluations

// @BasePath /api
// @schemes http https

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.Bootstrap(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server stopped with errors")
		stop()
		os.Exit(1)
	}

	logger.Info().Msg("Server exited")
}
