package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewbooks/crewbooks/internal/api/handlers"
	"github.com/crewbooks/crewbooks/internal/config"
	"github.com/crewbooks/crewbooks/internal/dbmanager"
	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/internal/notify"
	"github.com/crewbooks/crewbooks/internal/repo"
	"github.com/crewbooks/crewbooks/internal/review"
	"github.com/crewbooks/crewbooks/internal/router"
	"github.com/crewbooks/crewbooks/internal/stats"
	"github.com/crewbooks/crewbooks/internal/statscache"
	"github.com/crewbooks/crewbooks/internal/utils/logger"
)

const shutdownTimeout = 5 * time.Second

func Run() {
	cfg := config.NewBuilder(slog.Default()).
		FromDotEnv().
		FromEnv().
		FromFlags().
		GetConfig()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	const connectTO = 2 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), connectTO)
	defer cancel()
	dbManager := dbmanager.New(cfg.DatabaseURI, log).
		Connect(ctx).
		ApplyMigrations(ctx).
		Ping(ctx)
	if err := dbManager.Error(); err != nil {
		log.LogAttrs(context.Background(),
			slog.LevelError,
			"failed to start service: db connection error",
			slog.Any(model.KeyLoggerError, err),
		)
		return
	}
	defer dbManager.Close()

	db, err := dbManager.GetPool(ctx)
	if err != nil {
		log.LogAttrs(context.Background(),
			slog.LevelError,
			"failed to start service: failed to get DB pool",
			slog.Any(model.KeyLoggerError, err),
		)
		return
	}

	usersRepo := repo.NewUserRepository(db, log)
	txRepo := repo.NewTransactionRepository(db, log)
	notificationRepo := repo.NewNotificationRepository(db, log)
	snapshotRepo := repo.NewSnapshotRepository(db, log)

	sink := notify.NewSink(notificationRepo, usersRepo, log)
	engine := review.New(txRepo, usersRepo, sink, cfg.StrictReview)

	cache := statscache.New(cfg.RedisAddr, log)
	defer cache.Close()
	aggregator := stats.NewAggregator(txRepo, snapshotRepo, cache)

	ctxRun, cancelRun := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancelRun()

	compactor := stats.NewCompactor(txRepo, snapshotRepo, cfg.CompactionHour, log)
	go compactor.Run(ctxRun)

	rr := router.New(cfg, log)
	rr.SetRouter(handlers.New(
		engine, sink, aggregator, txRepo, usersRepo,
		cache, db, []byte(cfg.SecretKey), log))

	srv := &http.Server{
		Addr:    cfg.RunAddr,
		Handler: rr.GetRouter(),
	}

	go func() {
		log.LogAttrs(ctxRun,
			slog.LevelInfo,
			"service started",
			slog.String("address", cfg.RunAddr),
		)
		if err := srv.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.LogAttrs(context.Background(),
				slog.LevelError,
				"listen and serve error",
				slog.Any(model.KeyLoggerError, err),
			)
			cancelRun()
		}
	}()

	<-ctxRun.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(
		context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogAttrs(context.Background(),
			slog.LevelError,
			"server shutdown error",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}
