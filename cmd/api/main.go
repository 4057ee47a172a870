package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gormlogger "gorm.io/gorm/logger"

	httpadp "loan-service/internal/adapter/http"
	idemp "loan-service/internal/adapter/middleware"
	"loan-service/internal/adapter/remote"
	"loan-service/internal/adapter/repository/mysql"
	"loan-service/internal/config"
	"loan-service/internal/infrastructure/cache"
	"loan-service/internal/infrastructure/db"
	"loan-service/internal/logger"
	"loan-service/internal/metrics"
	"loan-service/internal/scheduler"
	"loan-service/internal/usecase/loan"
	"loan-service/internal/usecase/reconcile"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "optional YAML config file")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger.Initialize(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Load()
	}
	return cfg, cfg.Validate()
}

func run(cfg *config.Config) error {
	gormLevel := gormlogger.Warn
	if strings.EqualFold(cfg.LogLevel, "debug") {
		gormLevel = gormlogger.Info
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), gormLevel)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	m := metrics.New()

	loanRepo := mysql.NewLoanRepository(gdb)
	attemptRepo := mysql.NewAttemptRepository(gdb)
	client := remote.NewHTTPClient(cfg.UserServiceURL, cfg.BookServiceURL, remote.WithMetrics(m))

	loanUC := loan.NewUsecase(loanRepo, attemptRepo, mysql.NewGormUoW(gdb), client, loan.WithMetrics(m))
	reconcileUC := reconcile.NewUsecase(attemptRepo, cfg.ReconcileGrace(), m)

	sched, err := scheduler.New(cfg.ReconcileSchedule, reconcileUC)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	httpadp.RegisterRoutes(e,
		httpadp.NewHandler(m.Handler()),
		httpadp.NewLoanHandler(loanUC),
		idemp.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
