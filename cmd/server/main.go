package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"avd/internal/app/server"
	"avd/internal/platform/config"
	"avd/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if err := server.Run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
