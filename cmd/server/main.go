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

	"github.com/luckydraw/backend/docs"
	"github.com/luckydraw/backend/internal/config"
	"github.com/luckydraw/backend/internal/database"
	"github.com/luckydraw/backend/internal/handlers"
	"github.com/luckydraw/backend/internal/repository"
	"github.com/luckydraw/backend/internal/services"
)

// @title Lucky Draw API
// @version 1.0
// @description Raffle ticket tracking for participant accounts
// @BasePath /api
// @schemes http https

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lucky draw: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	docs.SwaggerInfo.BasePath = "/api"

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := database.InitRedis(ctx, &cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}
	cache := services.NewTicketCache(rdb, cfg.Cache.TicketTTL, logger)

	router := handlers.NewRouter(cfg, handlers.Dependencies{
		Accounts: services.NewAccountService(store, cache, logger),
		Tickets:  services.NewTicketService(store, cache, services.NewQRService(), logger),
		Search:   services.NewSearchService(store, cache),
		Store:    store,
		Cache:    cache,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.AccountStore, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := database.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return repository.NewPostgresStore(db), func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}, nil
}
