package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/api"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/janitor"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/webhook"
)

const rateLimitCleanupInterval = 10 * time.Minute

func newServeCmd(load configLoader) *cobra.Command {
	var noJanitor bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API together with its background jobs: the orphan
image janitor, the dashboard event hub, the webhook delivery worker (when
WEBHOOK_URL is set) and rate limit counter cleanup.
The server stops gracefully on SIGINT or SIGTERM, waiting up to
SHUTDOWN_TIMEOUT for in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting frontdesk",
				slog.String("environment", cfg.Environment),
				slog.Int("port", cfg.Port),
			)

			c, err := buildComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			router := api.NewRouter(logger, &api.Dependencies{
				Employees:      c.employees,
				Visitors:       c.visitors,
				Attendance:     c.attendance,
				DB:             c.pool,
				APIKey:         cfg.APIKey,
				MaxImageSize:   cfg.MaxImageSize,
				Limiter:        c.limiter,
				RateLimitPerIP: cfg.RateLimitPerMinute,
				Hub:            c.hub,
			})
			router.Setup()

			var wg sync.WaitGroup
			background := func(name string, run func()) {
				wg.Add(1)
				go func() {
					defer wg.Done()
					run()
					logger.Debug("background job finished", slog.String("job", name))
				}()
			}

			background("event hub", func() { c.hub.Run(ctx) })
			background("rate limit cleanup", func() {
				c.limiter.RunCleanup(ctx, rateLimitCleanupInterval, logger)
			})
			if c.hooks != nil {
				worker := webhook.NewWorker(c.pool, c.hooks, logger, cfg.WebhookPollInterval)
				background("webhook worker", func() { worker.Run(ctx) })
			}

			if !noJanitor {
				sweeper := janitor.New(c.images, c.poolRepo, logger, janitor.Config{
					Interval:    cfg.OrphanSweepInterval,
					GracePeriod: cfg.OrphanGracePeriod,
				})
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := sweeper.Run(ctx); err != nil {
						logger.Error("janitor stopped", slog.Any("error", err))
					}
				}()
			}

			errChan := make(chan error, 1)
			go func() {
				addr := fmt.Sprintf(":%d", cfg.Port)
				logger.Info("server listening", slog.String("addr", addr))
				if err := router.Listen(addr); err != nil {
					errChan <- err
				}
			}()

			var serveErr error
			select {
			case <-ctx.Done():
				logger.Info("shutdown signal received")
			case err := <-errChan:
				serveErr = fmt.Errorf("server error: %w", err)
				stop()
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			logger.Info("shutting down server...")
			if err := router.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("shutdown error", slog.Any("error", err))
			}

			wg.Wait()
			logger.Info("server stopped")

			return serveErr
		},
	}

	cmd.Flags().BoolVar(&noJanitor, "no-janitor", false, "Do not sweep orphan images")

	return cmd
}
