package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/auth"
	"github.com/prasertw/voltbook/internal/config"
	"github.com/prasertw/voltbook/internal/repository/mongodb"
	"github.com/prasertw/voltbook/internal/scheduler"
	"github.com/prasertw/voltbook/internal/server/handlers"
	"github.com/prasertw/voltbook/internal/server/router"
	billingsvc "github.com/prasertw/voltbook/internal/service/billing"
	userssvc "github.com/prasertw/voltbook/internal/service/users"
	"github.com/prasertw/voltbook/pkg/clients/notify"
	"github.com/prasertw/voltbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoClient, err := mongodb.Connect(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	recordRepo := mongodb.NewRecordRepository(mongoClient)
	userRepo := mongodb.NewUserRepository(mongoClient)

	meters := billingsvc.MeterMapping(cfg.Meters.Mapping)
	billingSvc := billingsvc.NewService(recordRepo, meters, baseLogger.Named("svc.billing"))
	userSvc := userssvc.NewService(userRepo, baseLogger.Named("svc.users"))

	var notifier *notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify.WebhookURL)
		baseLogger.Info("notify webhook enabled")
	} else {
		baseLogger.Warn("notify webhook url missing, reminders limited to logs")
	}

	verifier := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	authMiddleware := auth.NewMiddleware(verifier, userRepo, cfg.Auth.AllowedDomain, baseLogger.Named("auth"))

	engine := router.New(router.Deps{
		Records:   handlers.NewRecordHandler(billingSvc, baseLogger.Named("handlers.records")),
		Dashboard: handlers.NewDashboardHandler(billingSvc, baseLogger.Named("handlers.dashboard")),
		Import:    handlers.NewImportHandler(billingSvc, notifier, baseLogger.Named("handlers.import")),
		Users:     handlers.NewUserHandler(userSvc, baseLogger.Named("handlers.users")),
		Auth:      authMiddleware,
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reminder, billingSvc, meters, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
