package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/customs-docflow/internal/api_server"
	"github.com/customs-docflow/internal/config"
	"github.com/customs-docflow/internal/data/mongo"
	"github.com/customs-docflow/internal/data/postgres"
	"github.com/customs-docflow/internal/dispatch"
	"github.com/customs-docflow/internal/domain/credential"
	"github.com/customs-docflow/internal/logger"
	"github.com/customs-docflow/internal/platform/messaging/producers"
	"github.com/customs-docflow/internal/platform/persistence"
	"github.com/customs-docflow/internal/transmitter"
	"github.com/customs-docflow/internal/transmitter/jsonbearer"
	"github.com/customs-docflow/internal/transmitter/soapxml"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producers for transmission outcome events
	eventProducer, err := producers.NewTransmissionEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize transmission event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	documentRepo := postgres.NewDocumentRepository(log, postgresDB)
	credentialRepo := postgres.NewCredentialRepository(log, postgresDB)
	transmissionLogRepo := mongo.NewTransmissionLogRepository(log, mongoDB.Database())

	// Initialize transmitters. A single HTTP client is shared; it carries no
	// timeout of its own so a credential may configure a deadline longer than
	// cfg.Host.DefaultTimeout. Per-request deadlines come from credential
	// config, falling back to the host default.
	httpClient := &http.Client{}
	registry := transmitter.NewRegistry()
	registry.Register(credential.ServiceTypeSOAPXML, soapxml.NewTransmitter(log, httpClient, &cfg.Host))
	registry.Register(credential.ServiceTypeJSONBearer, jsonbearer.NewTransmitter(log, httpClient, &cfg.Host))

	// Initialize dispatch service
	dispatchService := dispatch.NewService(log, documentRepo, credentialRepo, transmissionLogRepo, registry, eventProducer, dlqProducer)

	// Initialize REST server
	server := api_server.NewServer(log, cfg, dispatchService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new dispatches start
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = eventProducer.Close(); err != nil {
		log.Error("Error closing transmission event producer", "error", err)
	}

	if err = dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
