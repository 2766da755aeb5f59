package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nulln0ne/weighted-estimator/internal/config"
	"github.com/nulln0ne/weighted-estimator/internal/eth"
	"github.com/nulln0ne/weighted-estimator/internal/handler"
	"github.com/nulln0ne/weighted-estimator/internal/logging"
	"github.com/nulln0ne/weighted-estimator/internal/service"
	"github.com/nulln0ne/weighted-estimator/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	app := handler.NewApp()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ethereumClient, err := eth.Dial(ctx, cfg.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}
	defer ethereumClient.Close()

	breakers, err := store.OpenSQLite(cfg.BreakerDB)
	if err != nil {
		return fmt.Errorf("failed to open breaker store: %w", err)
	}
	defer breakers.Close()

	poolService := service.NewPoolService(logger, ethereumClient, cfg.VaultAddress, breakers)
	poolHandler := handler.NewPoolHandler(logger, poolService)
	poolHandler.Register(app)

	logger.Info("starting server", "addr", cfg.Addr, "vault", cfg.VaultAddress.Hex(), "breaker_db", cfg.BreakerDB)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("shutdown did not complete", "err", err)
	}
	return nil
}
