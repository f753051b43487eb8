package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/physiokit/physiokit/modules/auth"
	"github.com/physiokit/physiokit/modules/billing"
	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/catalog"
	"github.com/physiokit/physiokit/modules/httpapi"
	"github.com/physiokit/physiokit/modules/patient"
	"github.com/physiokit/physiokit/modules/subscription"
	"github.com/physiokit/physiokit/pkg/config"
	"github.com/physiokit/physiokit/pkg/email"
	"github.com/physiokit/physiokit/pkg/httpserver"
	"github.com/physiokit/physiokit/pkg/logger"
	"github.com/physiokit/physiokit/pkg/pg"
	"github.com/physiokit/physiokit/pkg/redis"
	"github.com/physiokit/physiokit/pkg/session"
)

type appConfig struct {
	PlanCatalogPath string `env:"PLAN_CATALOG_PATH" envDefault:"plans.yaml"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg,
		logger.WithContextExtractors(cabinet.LoggerExtractor()),
	)
	slog.SetDefault(log)

	if err := run(ctx, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		appCfg     appConfig
		pgCfg      pg.Config
		redisCfg   redis.Config
		httpCfg    httpserver.Config
		sessionCfg session.Config
		emailCfg   email.Config
		paddleCfg  billing.PaddleConfig
		billingCfg billing.Config
		authCfg    auth.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&sessionCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&paddleCfg)
	config.MustLoad(&billingCfg)
	config.MustLoad(&authCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	cat, err := catalog.New(ctx, catalog.NewFileSource(appCfg.PlanCatalogPath))
	if err != nil {
		return err
	}

	provider, err := billing.NewPaddleProvider(paddleCfg)
	if err != nil {
		return err
	}

	var mailer email.Sender
	if emailCfg.PostmarkServerToken != "" {
		mailer, err = email.NewPostmarkSender(emailCfg)
		if err != nil {
			return err
		}
	} else {
		mailer = email.NewLogSender(log)
	}

	sessions := session.NewManager(session.NewRedisStore(rdb), sessionCfg, nil)

	subsSvc := subscription.NewService(
		subscription.NewPostgresStore(pool), cat,
		subscription.WithLogger(log),
	)
	billingSvc := billing.NewService(
		provider, billing.NewPostgresPaymentStore(pool), subsSvc, cat, billingCfg,
		billing.WithLogger(log),
	)
	patientSvc := patient.NewService(
		patient.NewPostgresStore(pool), subsSvc,
		patient.WithLogger(log),
	)
	authSvc := auth.NewService(
		pg.PoolRunner{Pool: pool},
		auth.NewPostgresUserStore(pool),
		cabinet.NewPostgresStore(pool),
		subsSvc,
		sessions,
		authCfg,
		auth.WithLogger(log),
		auth.WithMailer(mailer),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:          authSvc,
		Subscriptions: subsSvc,
		Billing:       billingSvc,
		Patients:      patientSvc,
		Sessions:      sessions,
		Logger:        log,
		HealthChecks: []func(context.Context) error{
			pg.Healthcheck(pool),
			redis.Healthcheck(rdb),
		},
	})

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}
