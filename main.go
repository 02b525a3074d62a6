package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/api"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/audit"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/auth"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/config"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/database"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/engine"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/jobs"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/rng"
	"github.com/bericaandrei1-arch/elix-star-live-web-sub000/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// The audit trail is optional; without a DSN the engine runs with a
	// nil sink.
	var db *database.DB
	var auditSvc *audit.Service
	if cfg.Database.DSN != "" {
		db, err = database.New(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			logrus.WithError(err).Fatal("failed to migrate database")
		}
		auditSvc = audit.New(db.DB)
		logrus.Info("audit trail enabled")
	} else {
		logrus.Warn("no database DSN configured, audit trail disabled")
	}

	rngSvc := rng.New()

	sessions := session.NewManager(session.ManagerConfig{
		Engine: engine.Config{
			ComboWindow:     cfg.Engine.ComboWindow,
			BattleTick:      cfg.Engine.BattleTick,
			LogCap:          cfg.Engine.LogCap,
			StartingBalance: cfg.Engine.StartingBalance,
		},
		SimulateOpponent: cfg.Engine.SimulateOpponent,
		OpponentChance:   cfg.Engine.OpponentChance,
		OpponentMin:      cfg.Engine.OpponentMinScore,
		OpponentMax:      cfg.Engine.OpponentMaxScore,
		FeedURL:          cfg.Feed.URL,
		FeedAPIKey:       cfg.Feed.APIKey,
		FeedPollInterval: cfg.Feed.PollInterval,
	}, rngSvc, auditSvc)

	authSvc := auth.New(&cfg.Auth)
	handler := api.New(authSvc, sessions)

	scheduler := jobs.New(sessions, db, cfg.Engine.SessionIdleTimeout, cfg.Database.AuditRetention)
	if err := scheduler.Start(); err != nil {
		logrus.WithError(err).Fatal("failed to start job scheduler")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.SetupRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	scheduler.Stop()
	sessions.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("shutdown error")
	}
	logrus.Info("server stopped")
}
