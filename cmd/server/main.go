// Package main initializes and starts the todo API server: configuration,
// logging, database, repositories, services, handlers, and graceful shutdown.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/dkorobov/taskdeck/internal/config"
	"github.com/dkorobov/taskdeck/internal/db"
	"github.com/dkorobov/taskdeck/internal/logger"
	"github.com/dkorobov/taskdeck/internal/repository"
	"github.com/dkorobov/taskdeck/internal/security"
	"github.com/dkorobov/taskdeck/internal/server/handler/http"
	"github.com/dkorobov/taskdeck/internal/service"
	"github.com/dkorobov/taskdeck/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse environment configuration once; cfg is immutable afterwards.
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Initialize PostgreSQL connection and schema.
	database, err := db.InitPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("cannot init database", zap.Error(err))
	}
	defer database.Close()

	// Token codec and session carrier share the configured TTL.
	codec := security.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL())
	sessions := session.NewCarrier(cfg.TokenTTL())

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(database)
	todoRepo := repository.NewPostgresTodoRepository(database)

	// Initialize business-logic services.
	authService, err := service.NewAuthService(userRepo, codec)
	if err != nil {
		log.Fatal("cannot init auth service", zap.Error(err))
	}
	todoService := service.NewTodoService(todoRepo)

	// Create HTTP handlers for auth and todo endpoints.
	authHandler := &http.AuthHandler{AuthService: authService, Sessions: sessions, Log: log}
	todoHandler := &http.TodoHandler{TodoService: todoService, Log: log}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, todoHandler, codec, log, cfg.CORSAllowedOrigins)

	server := &nethttp.Server{
		Addr:    cfg.RunAddress,
		Handler: router,
	}

	// Shut down cleanly on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting HTTP server", zap.String("addr", cfg.RunAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
