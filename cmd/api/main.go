package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/editorjakupi/testning-av-crmsystem/internal/config"
	"github.com/editorjakupi/testning-av-crmsystem/internal/database"
	"github.com/editorjakupi/testning-av-crmsystem/internal/metrics"
	"github.com/editorjakupi/testning-av-crmsystem/internal/notify"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository/memory"
	"github.com/editorjakupi/testning-av-crmsystem/internal/repository/postgres"
	"github.com/editorjakupi/testning-av-crmsystem/internal/router"
	"github.com/editorjakupi/testning-av-crmsystem/internal/service"
	"github.com/editorjakupi/testning-av-crmsystem/internal/session"
	"github.com/editorjakupi/testning-av-crmsystem/internal/utils"
	"github.com/editorjakupi/testning-av-crmsystem/pkg/logger"
)

func main() {
	// config + logger
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("dev")
		bootLog.Fatal().Err(err).Msg("config load failed")
	}
	l := logger.New(cfg.Env)

	ctx := context.Background()

	// storage: Postgres when DB_DSN is set, in-memory otherwise
	var (
		users     repository.UserRepository
		companies repository.CompanyRepository
		issues    repository.IssueRepository
		sessStore session.Store
		purge     func()
	)
	if cfg.DBURL != "" {
		if err := database.Migrate(cfg.DBURL); err != nil {
			l.Fatal().Err(err).Msg("migrations failed")
		}
		pool, err := database.Open(ctx, cfg)
		if err != nil {
			l.Fatal().Err(err).Msg("db connect failed")
		}
		defer pool.Close()

		users = postgres.NewUserRepo(pool)
		companies = postgres.NewCompanyRepo(pool)
		issues = postgres.NewIssueRepo(pool)
		pg := session.NewPostgresStore(pool)
		sessStore = pg
		purge = func() {
			if err := pg.PurgeExpired(ctx); err != nil {
				l.Warn().Err(err).Msg("session purge failed")
			}
		}
	} else {
		l.Warn().Msg("DB_DSN not set, using in-memory storage")
		store := memory.NewStore()
		users = store.Users()
		companies = store.Companies()
		issues = store.Issues()
		mem := session.NewMemoryStore()
		sessStore = mem
		purge = mem.PurgeExpired
	}

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	stats := metrics.NewCollector(reg)

	// notifications
	var notifier notify.Notifier = notify.LogNotifier{Log: l}
	if cfg.SMTPAddr != "" {
		notifier = notify.SMTPNotifier{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
	}

	// sessions + services
	sessions := session.NewManager(sessStore, cfg.SessionSecret, cfg.SessionIdle, l)
	auth := service.NewAuthService(users, utils.BcryptHasher{}, notifier, sessStore, stats, l)
	issueSvc := service.NewIssueService(issues, companies, users, notifier, stats, l)
	forms := service.NewFormService(companies)

	// expired sessions are dropped on read; the ticker keeps the store small
	purgeStop := make(chan struct{})
	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				purge()
			case <-purgeStop:
				return
			}
		}
	}()

	// http
	r := router.New(l, cfg, router.Deps{
		Auth:     auth,
		Issues:   issueSvc,
		Forms:    forms,
		Sessions: sessions,
		Users:    users,
		Stats:    stats,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	close(purgeStop)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	l.Info().Msg("shutdown complete")
}
