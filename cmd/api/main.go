package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budgetflow/internal/auth"
	"github.com/MrJamesThe3rd/budgetflow/internal/bank"
	bankStore "github.com/MrJamesThe3rd/budgetflow/internal/bank/store"
	"github.com/MrJamesThe3rd/budgetflow/internal/cache"
	"github.com/MrJamesThe3rd/budgetflow/internal/config"
	"github.com/MrJamesThe3rd/budgetflow/internal/database"
	"github.com/MrJamesThe3rd/budgetflow/internal/export"
	"github.com/MrJamesThe3rd/budgetflow/internal/goal"
	goalStore "github.com/MrJamesThe3rd/budgetflow/internal/goal/store"
	budgetHttp "github.com/MrJamesThe3rd/budgetflow/internal/http"
	bankHandler "github.com/MrJamesThe3rd/budgetflow/internal/http/bank"
	goalHandler "github.com/MrJamesThe3rd/budgetflow/internal/http/goal"
	"github.com/MrJamesThe3rd/budgetflow/internal/http/health"
	txHandler "github.com/MrJamesThe3rd/budgetflow/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetflow/internal/importer"
	"github.com/MrJamesThe3rd/budgetflow/internal/memstore"
	"github.com/MrJamesThe3rd/budgetflow/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budgetflow/internal/transaction/store"
)

const shutdownTimeout = 10 * time.Second

// stores bundles the repositories chosen by STORE_DRIVER.
type stores struct {
	transactions transaction.Repository
	goals        goal.Repository
	bank         bank.Repository
	pinger       health.Pinger
	close        func() error
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.Store.Driver == config.DriverMemory {
		mem := memstore.New()

		return &stores{
			transactions: mem,
			goals:        mem,
			bank:         mem,
			pinger:       mem,
			close:        func() error { return nil },
		}, nil
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	return &stores{
		transactions: txStore.New(db),
		goals:        goalStore.New(db),
		bank:         bankStore.New(db),
		pinger:       health.PingFunc(db.PingContext),
		close:        db.Close,
	}, nil
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With("app", cfg.App.Name))
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg)

	if cfg.JWT.Secret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	st, err := openStores(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer st.close()

	var (
		bankOpts = bank.Options{StoreTimeout: cfg.Store.Timeout}

		transactionService = transaction.NewService(
			st.transactions,
			cache.NewMemory[transaction.Summary](time.Minute),
			transaction.Options{StoreTimeout: cfg.Store.Timeout, PageSize: cfg.Server.PageSize},
		)
		goalService       = goal.NewService(st.goals, cfg.Store.Timeout)
		connectionService = bank.NewConnectionService(st.bank, bankOpts)
		scheduleManager   = bank.NewScheduleManager(st.bank, bankOpts)
		importService     = importer.NewService(transactionService)
		exportService     = export.NewService(transactionService)
		runner            = bank.NewRunner(st.bank, bank.RunnerOptions{
			Interval: cfg.Sync.Interval,
			Workers:  cfg.Sync.Workers,
		})
	)

	var (
		healthH      = health.NewHandler(st.pinger)
		transactionH = txHandler.NewHandler(transactionService, importService, exportService)
		goalH        = goalHandler.NewHandler(goalService)
		bankH        = bankHandler.NewHandler(connectionService, scheduleManager)
	)

	router := budgetHttp.New(
		budgetHttp.Options{
			Timeout:     cfg.Server.Timeout,
			MaxInFlight: cfg.Server.MaxInFlight,
			CORSOrigins: cfg.Server.CORSOrigins,
		},
		auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
		healthH, transactionH, goalH, bankH,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runner.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting server", "port", srv.Addr, "store", cfg.Store.Driver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
