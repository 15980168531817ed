package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pavilion-erp/pavilion-erp/internal/accounting/balances"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/coa"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/journals"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/posting"
	"github.com/pavilion-erp/pavilion-erp/internal/accounting/postingcfg"
	"github.com/pavilion-erp/pavilion-erp/internal/app"
	"github.com/pavilion-erp/pavilion-erp/internal/expenses"
	"github.com/pavilion-erp/pavilion-erp/internal/platform/cache"
	"github.com/pavilion-erp/pavilion-erp/internal/platform/db"
	"github.com/pavilion-erp/pavilion-erp/internal/procurement"
	"github.com/pavilion-erp/pavilion-erp/internal/sales"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Balance reads fall back to the database when the cache is down.
		logger.Warn("redis unavailable, balance caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	coaService := coa.NewService(coa.NewRepository(pool))
	configService := postingcfg.NewService(postingcfg.NewRepository(pool), coaService, logger)
	poster := posting.NewService(posting.NewRepository(pool), logger)

	balanceCache := balances.NewCache(redisClient, cfg.BalanceCacheTTL)
	balanceService := balances.NewService(balances.NewRepository(pool), balanceCache)
	if err := balanceCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	journalsRepo := journals.NewRepository(pool)
	salesService := sales.NewService(sales.NewRepository(pool), poster, balanceService, logger)
	expensesService := expenses.NewService(expenses.NewRepository(pool), poster, balanceService, logger)
	procurementService := procurement.NewService(procurement.NewRepository(pool), poster, balanceService, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		COAHandler:         coa.NewHandler(logger, coaService),
		ConfigHandler:      postingcfg.NewHandler(logger, configService),
		JournalsHandler:    journals.NewHandler(logger, journalsRepo, poster),
		BalancesHandler:    balances.NewHandler(logger, balanceService),
		SalesHandler:       sales.NewHandler(logger, salesService),
		ExpensesHandler:    expenses.NewHandler(logger, expensesService),
		ProcurementHandler: procurement.NewHandler(logger, procurementService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
