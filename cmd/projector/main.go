package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ariefcatur/hospitality-pos/internal/config"
	kafkax "github.com/ariefcatur/hospitality-pos/internal/kafka"
	"github.com/ariefcatur/hospitality-pos/internal/logx"
	"github.com/ariefcatur/hospitality-pos/internal/redisx"
	"github.com/ariefcatur/hospitality-pos/internal/reports"
)

func main() {
	app := &cli.App{
		Name:   "projector",
		Usage:  "fold order and stock events into live sales counters",
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("projector")
	}
}

func run(*cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logx.New(cfg.ServiceName+"-projector", cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	p := &reports.Projector{Redis: rdb, Log: log, Name: cfg.ProjectorGroup}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ProjectorGroup, reports.ProjectorTopics, cfg.ProjectorWorkers, log)

	log.Info().
		Str("group", cfg.ProjectorGroup).
		Str("topics", strings.Join(reports.ProjectorTopics, ",")).
		Int("workers", cfg.ProjectorWorkers).
		Msg("projector started")

	// Start returns once ctx is cancelled and in-flight messages are done.
	if err := cons.Start(ctx, p.Handle); err != nil {
		log.Error().Err(err).Msg("consumer exit")
		return err
	}
	log.Info().Msg("projector stopped")
	return nil
}
