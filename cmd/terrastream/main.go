// Package main is the entry point for the terrastream engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/samschaack/terrastream/internal/app"
	"github.com/samschaack/terrastream/internal/config"
	"github.com/samschaack/terrastream/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Terrastream ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			logger.Error("failed to write config", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config written", zap.String("dir", config.ConfigDir()))
		return
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to start engine", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Error("engine error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("engine stopped normally")
}
