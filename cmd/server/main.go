// Package main implements the entry point for the question bank
// enrichment server, which stores uploaded bank snapshots and runs the
// background pipeline that adds video references and generated
// solutions to every question.
package main

import (
	"context"
	"log"

	"github.com/Saurabhkg03/saraavdata-backend/internal/config"
	"github.com/Saurabhkg03/saraavdata-backend/internal/platform/logger"
)

// main loads configuration, sets up logging, wires the application
// dependencies, and runs the HTTP server until a shutdown signal or a
// halt request arrives.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"data_dir", cfg.Server.DataDir)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
