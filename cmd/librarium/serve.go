package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/librarium/librarium/auth"
	"github.com/librarium/librarium/catalog"
	"github.com/librarium/librarium/config"
	"github.com/librarium/librarium/httpapi"
	"github.com/librarium/librarium/lending"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	store, closeStore, err := openStore(cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tokenOptions := []auth.TokenOption{auth.WithTokenTTL(cfg.TokenTTL)}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = client.Close() }()

		tokenOptions = append(tokenOptions, auth.WithTokenStore(auth.NewRedisTokenStore(client)))
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, tokenOptions...)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(store, tokens, auth.NewGate(), auth.WithLogger(logger))
	catalogSvc := catalog.NewService(store, catalog.WithLogger(logger))
	lendingSvc := lending.NewService(store,
		lending.WithLoanPeriod(cfg.LoanPeriod()),
		lending.WithLogger(logger))

	server := httpapi.NewServer(catalogSvc, lendingSvc, authSvc, httpapi.WithLogger(logger))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "driver", cfg.StorageDriver)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	}
}
