package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bloodlink/internal/app"
	"bloodlink/internal/infra"
)

const otpSweepInterval = time.Minute

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	if cfg.SessionSecretGenerated {
		logger.Warn().Msg("SESSION_SECRET not set; admin sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise storage")
	}
	logger.Info().
		Str("storage", stack.Facade.Mode()).
		Str("remote", cfg.RemoteBackend).
		Str("local", cfg.LocalBackend).
		Msg("storage ready")

	go stack.SweepCodes(ctx, otpSweepInterval)

	server := infra.NewHTTPServer(cfg, stack.Handler())
	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if err := stack.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to close storage")
	}
	logger.Info().Msg("server stopped")
}
