package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"agencydesk/internal/assist"
	"agencydesk/internal/assist/gemini"
	"agencydesk/internal/backend"
	"agencydesk/internal/cache"
	"agencydesk/internal/cli"
	"agencydesk/internal/config"
	apphttp "agencydesk/internal/http"
	"agencydesk/internal/log"
	"agencydesk/internal/metrics"
	"agencydesk/internal/services"
)

const (
	shutdownTimeout    = 30 * time.Second
	cacheSweepInterval = 10 * time.Minute
	guardCapacity      = 256
	guardRetention     = 10 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.ShutdownContext(context.Background(), logger)
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("Server stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("backend configuration: %w", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", backendCfg.Type, err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	m := metrics.New()

	wsOpts := []services.Option{
		services.WithLogger(logger),
		services.WithSummaryTTL(cfg.CacheTTL),
		services.WithHooks(services.Hooks{Mutation: m.Mutation, Summary: m.Summary}),
	}
	// Typed nil pointers must not reach the interfaces.
	if res.Repository != nil {
		wsOpts = append(wsOpts, services.WithRepository(res.Repository))
	}
	if res.Publisher != nil {
		wsOpts = append(wsOpts, services.WithPublisher(res.Publisher))
	}
	workspace := services.NewWorkspaceService(res.Store, wsOpts...)

	model, err := newModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		return fmt.Errorf("initialize gemini client: %w", err)
	}
	assistant := assist.New(model,
		assist.WithTimeout(cfg.AssistTimeout),
		assist.WithLogger(logger),
		assist.WithObserver(m.AssistCall))
	guard := assist.NewGuard(guardCapacity, guardRetention)
	assistSvc := services.NewAssistService(assistant, guard, workspace)

	caches := cache.NewManager(logger)
	caches.Register(workspace.SummaryCache())
	caches.Register(guard.Cache())

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		WriteTimeout:       cfg.AssistTimeout + 10*time.Second,
		Ready:              res.Ready,
		Metrics:            m.Handler(),
		Observe:            m.ObserveHTTP,
	}, workspace, assistSvc)
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		caches.Run(gctx, cacheSweepInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting agencydesk server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"backend", backendCfg.Type.String(),
			"assist", assistMode(cfg.AssistEnabled()),
			"amqp", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		caches.Stop()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newModel returns the Gemini client when a key is configured, the offline model otherwise.
func newModel(ctx context.Context, apiKey, modelName string, logger *log.Logger) (assist.Model, error) {
	if apiKey == "" {
		logger.Info("GEMINI_API_KEY not set, assist runs offline")
		return assist.Offline{}, nil
	}
	client, err := gemini.New(ctx, apiKey, modelName)
	if err != nil {
		return nil, err
	}
	logger.Info("Gemini assist enabled", log.FieldModel, client.Model())
	return client, nil
}

func assistMode(enabled bool) string {
	if enabled {
		return "gemini"
	}
	return "offline"
}
