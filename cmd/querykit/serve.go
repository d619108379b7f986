package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/leandroluk/querykit/composer"
	"github.com/leandroluk/querykit/core"
	"github.com/leandroluk/querykit/internal/httpapi"
	"github.com/leandroluk/querykit/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	address string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search API",
	Long: `Start the HTTP search API on the configured database.

Every demo collection is served under GET /v1/:collection. /metrics exposes
Prometheus metrics and /healthz pings the database.

Examples:
  querykit serve --config querykit.yaml
  querykit serve --listen :9090`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.address, "listen", "l", "", "override listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.address != "" {
		cfg.Server.Address = serveFlags.address
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := openDriver(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer driver.Close(context.Background())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	searchers := make(map[string]*composer.Searcher)
	for name, schema := range newCatalog().collections() {
		searchers[name] = composer.NewSearcher(driver, schema,
			composer.WithFieldNames(cfg.Query),
			composer.WithMiddleware(core.LoggingMiddleware(log), m.Middleware()),
			composer.WithLogger(log.With("component", "composer.searcher", "collection", name)),
		)
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.Options{
		Searchers: searchers,
		Health:    driver,
		Metrics:   m,
		Gatherer:  registry,
		Logger:    log.With("component", "httpapi"),
		RateLimit: httpapi.RateLimit{
			PerMinute: cfg.Server.RateLimitPerMinute,
			Burst:     cfg.Server.RateLimitBurst,
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "address", cfg.Server.Address, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
