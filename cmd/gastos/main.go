package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/backend"
	"gastos/internal/cache"
	"gastos/internal/cli"
	"gastos/internal/config"
	apphttp "gastos/internal/http"
	"gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/session"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if result.Cleanup == nil {
			return
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()
	be := result.Backend

	sessions := session.NewManager(cfg.MaxSessions, cfg.SessionTTL, logger)
	caches := cache.NewManager(logger)
	caches.Register("sessions", sessions)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	svc := services.NewExpenseService(be.Catalog, be.Recorder, be.History, logger)

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		AllowedExtensions:  cfg.AllowedExtensions,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, svc, sessions, be.Ready, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting gastos server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"history", svc.HistoryEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cli.ShutdownOnDone(gctx, logger, 30*time.Second, srv.Shutdown)
	})
	return g.Wait()
}
