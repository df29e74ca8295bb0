package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/monocle-dev/expense-tracker/db"
	"github.com/monocle-dev/expense-tracker/internal/auth"
	"github.com/monocle-dev/expense-tracker/internal/config"
	"github.com/monocle-dev/expense-tracker/internal/events"
	"github.com/monocle-dev/expense-tracker/internal/handlers"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/middleware"
	"github.com/monocle-dev/expense-tracker/internal/repository"
	"github.com/monocle-dev/expense-tracker/internal/router"
	"github.com/monocle-dev/expense-tracker/internal/scheduler"
	"github.com/monocle-dev/expense-tracker/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		applog.New(applog.DefaultConfig()).Error("Error loading .env file", applog.FieldError, err)
		os.Exit(1)
	}

	cfg := config.Load()

	log := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", applog.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *applog.Logger) error {
	gdb, err := db.ConnectDatabase(cfg, log)
	if err != nil {
		return err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.MigrateDatabase(gdb); err != nil {
		return err
	}

	hub := events.NewHub(cfg.AllowedOrigins, log)
	defer hub.Close()

	publisher := events.Fanout{hub}

	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()

		publisher = append(publisher, amqpPublisher)
		log.Info("Publishing events to AMQP", "exchange", cfg.AMQPExchange)
	}

	store := repository.NewGormStore(gdb)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	users := services.NewUserService(store, auth.NewBcryptHasher(cfg.BcryptCost), publisher, log, cfg.PasswordResetTTL)
	categories := services.NewCategoryService(store, cfg.SystemCategoriesEnabled(), log)

	h := handlers.New(handlers.Deps{
		Users:      users,
		Categories: categories,
		Expenses:   services.NewExpenseService(store, categories, log),
		Sharing:    services.NewSharingService(store, publisher, log),
		Tokens:     tokens,
		Hub:        hub,
		Ping:       sqlDB.PingContext,
		Log:        log,
	})

	jobs := scheduler.NewScheduler(log)
	defer jobs.Stop()

	jobs.Add(scheduler.Job{
		Name:     "purge-expired-reset-tokens",
		Interval: cfg.MaintenanceInterval,
		Run:      users.PurgeExpiredResetTokens,
	})

	r := router.NewRouter(cfg, h, middleware.AuthMiddleware(tokens, users, log), log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", "port", cfg.Port, applog.FieldOperation, applog.OpStartup)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
