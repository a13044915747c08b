package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetwise/internal/cache"
	"budgetwise/internal/cli"
	apphttp "budgetwise/internal/http"
	"budgetwise/internal/log"
	"budgetwise/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg, log.ComponentApp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be := cli.InitBackend(ctx, logger, cfg)
	rules := cli.LoadRules(logger, cfg.CategoryRulesFile)

	var reports *cache.LRUCache[services.Dashboard]
	if cfg.ReportCacheTTL > 0 {
		reports = cache.NewLRUCache[services.Dashboard](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	}
	insights := services.NewInsightService(be.Store, reports, nil)

	var events services.EventPublisher
	if be.Events != nil {
		events = be.Events
	}
	transactions := services.NewTransactionService(be.Store, events,
		services.WithRules(rules),
		services.WithChangeHook(insights.Invalidate))
	profile := services.NewProfileService(be.Store, nil, insights.Invalidate)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Transactions: transactions,
		Profile:      profile,
		Insights:     insights,
	}, logger.WithComponent(log.ComponentHTTP))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budgetwise server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", be.Events != nil,
			"report_cache", reports != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if reports != nil {
		manager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
		manager.Register(reports)
		g.Go(func() error { return manager.Run(gctx, cfg.ReportCacheTTL) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	stats := srv.Stats()
	logger.Info("Server stopped",
		"requests", stats.Requests.TotalRequests,
		"avg_response", stats.Requests.AverageResponseTime().String(),
		"rate_limited", stats.RateLimit.Rejected,
		"suspicious", stats.Security.SuspiciousRequests)

	if cleanupErr := be.Cleanup(); cleanupErr != nil {
		logger.Error("Backend cleanup failed", "error", cleanupErr)
	}
	if err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
}
