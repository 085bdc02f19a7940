package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq"

	"github.com/smartdom/crm-bot/internal/api"
	"github.com/smartdom/crm-bot/internal/auth"
	"github.com/smartdom/crm-bot/internal/bot"
	"github.com/smartdom/crm-bot/internal/config"
	"github.com/smartdom/crm-bot/internal/domain/docs"
	"github.com/smartdom/crm-bot/internal/domain/objects"
	"github.com/smartdom/crm-bot/internal/domain/prices"
	"github.com/smartdom/crm-bot/internal/domain/reports"
	"github.com/smartdom/crm-bot/internal/domain/schedule"
	"github.com/smartdom/crm-bot/internal/domain/users"
	"github.com/smartdom/crm-bot/internal/infra/db"
	httpx "github.com/smartdom/crm-bot/internal/infra/http"
	"github.com/smartdom/crm-bot/internal/infra/logger"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/example.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env, cfg.App.LogLevel)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram auth failed", "err", err)
		return
	}
	log.Info("telegram authorized", "bot", tg.Self.UserName)

	usersRepo := users.NewRepo(pool)
	objectsRepo := objects.NewRepo(pool)
	docsRepo := docs.NewRepo(pool)
	pricesRepo := prices.NewRepo(pool)
	scheduleRepo := schedule.NewRepo(pool)

	scheduleSvc := schedule.NewService(scheduleRepo, scheduleRepo, log)
	reportsSvc := reports.NewService(log, usersRepo, scheduleRepo, objectsRepo, pricesRepo,
		cfg.Internal.URL, cfg.Internal.ReportSecret)

	authMW := auth.NewMiddleware(log, usersRepo, cfg.Telegram.Token,
		cfg.Auth.SkipValidation, time.Duration(cfg.Auth.MaxInitDataAge)*time.Second)

	apiServer := api.New(log, authMW, usersRepo, objectsRepo, docsRepo, pricesRepo, scheduleSvc, reportsSvc)
	router := apiServer.Router(cfg.HTTP.AllowedOrigins, cfg.Metrics.Enabled)

	tgBot := bot.New(tg, log, usersRepo, cfg.Telegram.WebAppURL)

	apiSrv := httpx.New(cfg.HTTP.Addr, router)
	internalSrv := httpx.New(cfg.Internal.Addr, tgBot.InternalHandler(cfg.Internal.ReportSecret))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("API server started", "addr", cfg.HTTP.Addr)
		if err := apiSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("internal server started", "addr", cfg.Internal.Addr)
		if err := internalSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := tgBot.Run(gctx, 30)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
		_ = internalSrv.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("service stopped", "err", err)
		return
	}
	log.Info("graceful shutdown complete")
}
