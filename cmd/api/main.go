package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"items-api/internal/config"
	"items-api/internal/database"
	"items-api/internal/logger"
	"items-api/internal/repository"
	"items-api/internal/server"

	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// openResources connects to the stores the configuration asks for
func openResources(ctx context.Context, cfg *config.Config, log *zap.Logger) (server.Resources, error) {
	var resources server.Resources

	if cfg.NeedsRedis() {
		client := repository.NewRedisClient(cfg.Redis)
		if err := repository.PingRedis(ctx, client); err != nil {
			client.Close()
			return resources, err
		}
		log.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr()))
		resources.Redis = client
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		dbService, err := database.New(cfg.Database)
		if err != nil {
			return resources, err
		}
		db := dbService.DB()

		// Check database health
		health := dbService.Health(ctx)
		log.Info("Database health check", zap.Any("health", health))

		// Run migrations
		if err := database.RunMigrations(db, cfg.Database.MigrationsDir, log); err != nil {
			db.Close()
			return resources, err
		}
		log.Info("Database migrations completed successfully")

		resources.DB = db
		resources.Items = repository.NewPostgresItemRepository(db, cfg.Store.Table)
	default:
		resources.Items = repository.NewRedisItemRepository(resources.Redis, cfg.Store.Table)
	}

	return resources, nil
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env, cfg.Service.Name)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting items API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
	)

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	resources, err := openResources(startupCtx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize store", zap.Error(err))
	}

	// Create server
	srv := server.NewServer(cfg, log, resources)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
