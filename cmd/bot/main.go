package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pressly/goose/v3"

	"github.com/anovapharm/medrep-bot/internal/bot"
	"github.com/anovapharm/medrep-bot/internal/config"
	"github.com/anovapharm/medrep-bot/internal/dialog"
	"github.com/anovapharm/medrep-bot/internal/domain/doctors"
	"github.com/anovapharm/medrep-bot/internal/domain/geo"
	"github.com/anovapharm/medrep-bot/internal/domain/medications"
	"github.com/anovapharm/medrep-bot/internal/domain/reports"
	"github.com/anovapharm/medrep-bot/internal/domain/tasks"
	"github.com/anovapharm/medrep-bot/internal/domain/users"
	"github.com/anovapharm/medrep-bot/internal/infra/db"
	httpx "github.com/anovapharm/medrep-bot/internal/infra/http"
	"github.com/anovapharm/medrep-bot/internal/infra/logger"
	"github.com/anovapharm/medrep-bot/migrations"
)

func runMigrations(sqlDB *sql.DB, dir string, log *slog.Logger) error {
	if err := goose.Up(sqlDB, dir); err != nil {
		return err
	}
	log.Info("migrations applied", "dir", dir)
	return nil
}

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Warn("timezone load failed, falling back to UTC", "tz", cfg.App.Timezone, "err", err)
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Error("goose dialect failed", "err", err)
		return
	}

	accountsDB, err := db.Connect(ctx, cfg.Databases.Accounts)
	if err != nil {
		log.Error("accounts db connect failed", "err", err)
		return
	}
	defer func() { _ = accountsDB.Close() }()

	pharmacyDB, err := db.Connect(ctx, cfg.Databases.Pharmacy)
	if err != nil {
		log.Error("pharmacy db connect failed", "err", err)
		return
	}
	defer func() { _ = pharmacyDB.Close() }()

	reportsDB, err := db.Connect(ctx, cfg.Databases.Reports)
	if err != nil {
		log.Error("reports db connect failed", "err", err)
		return
	}
	defer func() { _ = reportsDB.Close() }()

	goose.SetBaseFS(migrations.FS)
	for _, m := range []struct {
		db  *sql.DB
		dir string
	}{
		{accountsDB, "accounts"},
		{pharmacyDB, "pharmacy"},
		{reportsDB, "reports"},
	} {
		if err := runMigrations(m.db, m.dir, log); err != nil {
			log.Error("migrations failed", "dir", m.dir, "err", err)
			return
		}
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram auth failed", "err", err)
		return
	}
	log.Info("telegram authorized", "bot", api.Self.UserName)

	b := bot.New(api, log, cfg.Telegram.AdminChatIDs, loc,
		users.NewRepo(accountsDB),
		dialog.NewRepo(accountsDB),
		geo.NewRepo(pharmacyDB),
		doctors.NewRepo(pharmacyDB),
		medications.NewRepo(pharmacyDB),
		reports.NewRepo(reportsDB),
		tasks.NewRepo(reportsDB),
	)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	go func() {
		if err := b.Run(ctx, 30); err != nil && ctx.Err() == nil {
			log.Error("bot stopped", "err", err)
			stop()
		}
	}()
	log.Info("bot started")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
