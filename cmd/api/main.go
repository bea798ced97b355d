package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cofilab-backend/internal/app"
	"cofilab-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("App create failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		return a.Fiber.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		return a.Worker.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		return a.Fiber.Shutdown()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Shutdown")
	}
}
