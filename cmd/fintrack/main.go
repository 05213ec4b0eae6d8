package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/app"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always runs.
func run() int {
	cfg, logger := cli.Bootstrap()
	logger.Info("Starting fintrack server", log.FieldOperation, log.OpStartup)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return 1
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	opts := []app.Option{app.WithKey(cfg.StorageKey), app.WithLogger(logger)}
	if cfg.AMQPEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			return 1
		}
		defer amqpClient.Close()
		opts = append(opts, app.WithPublisher(amqpClient))
		logger.Info("Publishing document changes", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ctrl := app.New(res.Store, opts...)
	if err := ctrl.Load(ctx); err != nil {
		if !errors.Is(err, app.ErrCorruptDocument) {
			logger.Error("Failed to load document", log.FieldError, err)
			return 1
		}
		logger.Warn("Stored document is unreadable, serving the seed", log.FieldError, err)
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	views := cache.NewLRUCache[any](256, cfg.CacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(views)

	srv := apphttp.NewServer(":"+cfg.Port, ctrl, apphttp.Options{
		Logger:  logger,
		Limiter: limiter,
		Views:   views,
		Ready:   cli.ReadyCheck(res.Store),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return limiter.Run(gctx) })
	g.Go(func() error { return caches.Run(gctx, time.Minute) })

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		return 1
	}
	logger.Info("Server stopped gracefully")
	return 0
}

