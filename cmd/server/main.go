package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KevinKickass/FloorCore/internal/api/rest"
	"github.com/KevinKickass/FloorCore/internal/config"
	"github.com/KevinKickass/FloorCore/internal/events"
	"github.com/KevinKickass/FloorCore/internal/lifecycle"
	"github.com/KevinKickass/FloorCore/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// Logger initialisieren
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Config laden
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Config loaded successfully")

	// PostgreSQL verbinden
	db, err := storage.NewPostgresClient(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetReadRetries(cfg.Coordinator.ReadRetries)

	logger.Info("Database connected successfully")

	// Event hub
	hub := events.NewHub(logger, cfg.Events.BroadcastBuffer, cfg.Events.SendBuffer)
	go hub.Run()

	// Lifecycle coordinator
	coordinator := lifecycle.NewCoordinator(lifecycle.NewStore(db), hub, logger, cfg.Coordinator)

	// REST API
	server, err := rest.NewServer(cfg, db, coordinator, hub, logger)
	if err != nil {
		logger.Fatal("Failed to build REST server", zap.Error(err))
	}
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start REST server", zap.Error(err))
	}

	logger.Info("FloorCore started successfully",
		zap.Int("http_port", cfg.Server.HTTPPort))

	// Graceful Shutdown auf Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("FloorCore stopped successfully")
}
