package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/ariefcatur/hospitality-pos/internal/auth"
	"github.com/ariefcatur/hospitality-pos/internal/catalog"
	"github.com/ariefcatur/hospitality-pos/internal/config"
	"github.com/ariefcatur/hospitality-pos/internal/httpx"
	kafkax "github.com/ariefcatur/hospitality-pos/internal/kafka"
	"github.com/ariefcatur/hospitality-pos/internal/logx"
	"github.com/ariefcatur/hospitality-pos/internal/orders"
	"github.com/ariefcatur/hospitality-pos/internal/postgres"
	"github.com/ariefcatur/hospitality-pos/internal/redisx"
	"github.com/ariefcatur/hospitality-pos/internal/rental"
	"github.com/ariefcatur/hospitality-pos/internal/reports"
	"github.com/ariefcatur/hospitality-pos/internal/settings"
	"github.com/ariefcatur/hospitality-pos/internal/staff"
)

func main() {
	app := &cli.App{
		Name:  "posctl",
		Usage: "hospitality point-of-sale API",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
			{
				Name:      "hash-password",
				Usage:     "print a bcrypt hash for seeding the first admin",
				ArgsUsage: "<password>",
				Action:    hashPassword,
			},
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("posctl")
	}
}

func setup() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logx.New(cfg.ServiceName, cfg.LogLevel, os.Stdout), nil
}

func migrate(*cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	v, err := postgres.Migrate(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	log.Info().Uint("version", v).Msg("schema up to date")
	return nil
}

func hashPassword(c *cli.Context) error {
	h, err := auth.HashPassword(c.Args().First())
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(h + "\n")
	return err
}

func serve(*cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MigrateOnStart {
		v, err := postgres.Migrate(cfg.PostgresDSN)
		if err != nil {
			return err
		}
		log.Info().Uint("version", v).Msg("migrations applied")
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, postgres.PoolOptions{
		MaxConns:         cfg.PGMaxConns,
		MinConns:         1,
		StatementTimeout: cfg.PGStmtTimeout,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, shared by every topic
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
	prod.Start(ctx)

	settingsSvc := &settings.Service{
		Repo:  &settings.Store{DB: db},
		Cache: rdb,
		Log:   log.With().Str("component", "settings").Logger(),
	}
	ordersSvc := &orders.Service{
		Gateway:     &orders.Repo{DB: db},
		Rates:       settingsSvc,
		Publisher:   prod,
		ServiceName: cfg.ServiceName,
		Log:         log.With().Str("component", "orders").Logger(),
	}
	staffStore := &staff.Store{DB: db}
	sessions := &auth.Sessions{Redis: rdb, TTL: cfg.SessionTTL}

	router := httpx.NewRouter(httpx.Deps{
		Log:         log,
		Gate:        &auth.Gate{Sessions: sessions, Log: log},
		CORSOrigins: cfg.CORSOrigins,
		Timeout:     cfg.RequestTimeout,
		Handlers: []httpx.Routes{
			&httpx.AuthHandler{Auth: &auth.Service{Users: staffStore, Sessions: sessions, Log: log}},
			&httpx.OrdersHandler{Orders: ordersSvc},
			&httpx.CatalogHandler{Catalog: &catalog.Service{
				Repo:     &catalog.Store{DB: db},
				Products: ordersSvc,
				Log:      log,
			}},
			&httpx.StaffHandler{Staff: &staff.Service{Repo: staffStore, Sessions: sessions, Log: log}},
			&httpx.RentalHandler{Rental: &rental.Service{
				Repo:  &rental.Store{DB: db},
				Rates: settingsSvc,
				Log:   log.With().Str("component", "rental").Logger(),
			}},
			&httpx.SettingsHandler{Settings: settingsSvc},
			&httpx.ReportsHandler{Reports: &reports.Service{
				Repo:  &reports.Store{DB: db},
				Redis: rdb,
				Log:   log,
				Venue: cfg.VenueName,
			}},
		},
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err = <-errCh:
		log.Error().Err(err).Msg("listen")
	}
	log.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox, flush and close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
	return err
}
