package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/audit"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/config"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/database"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/face"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/ratelimit"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/repository"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/service"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/storage"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/webhook"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/ws"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "frontdesk",
		Short: "Face recognition attendance and visitor desk",
		Long: `Frontdesk identifies faces captured at the front desk. Employees get an
attendance record, known visitors are reported, and unknown faces are stored
as pending visitors for someone to approve or reject.

Configuration comes from the environment, optionally seeded from a .env file.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Load variables from this file (default .env when present)")

	loadConfig := func() (*config.Config, *slog.Logger, error) {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg, err := config.Load(files...)
		if err != nil {
			return nil, nil, err
		}
		logger := config.NewLogger(cfg.Environment, cfg.LogLevel, os.Stderr)
		slog.SetDefault(logger)
		return cfg, logger, nil
	}

	root.AddCommand(
		newServeCmd(loadConfig),
		newMigrateCmd(loadConfig),
		newEnrollCmd(loadConfig),
	)

	return root
}

type configLoader func() (*config.Config, *slog.Logger, error)

// components holds everything the HTTP server and the enroll command share
type components struct {
	pool       *pgxpool.Pool
	images     *storage.ImageStore
	poolRepo   *repository.PoolRepository
	hub        *ws.Hub
	hooks      *webhook.Service
	limiter    *ratelimit.RateLimiter
	employees  *service.EmployeeService
	visitors   *service.VisitorService
	attendance *service.AttendanceService
}

func buildComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*components, error) {
	extractor, err := face.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}

	images, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, err
	}

	auditLogger := audit.NewSlogLogger(logger)

	employeeRepo := repository.NewEmployeeRepository(pool)
	visitorRepo := repository.NewVisitorRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	poolRepo := repository.NewPoolRepository(pool)

	hub := ws.NewHub(logger)
	events := service.Publishers{hub}

	var hooks *webhook.Service
	if cfg.WebhooksEnabled() {
		hooks = webhook.NewService(pool, webhook.Config{
			URL:         cfg.WebhookURL,
			Secret:      cfg.WebhookSecret,
			MaxAttempts: cfg.WebhookMaxAttempts,
		})
		events = append(events, hooks)
	}

	logger.Info("components ready",
		slog.String("extractor", extractor.Name()),
		slog.Int("dimension", extractor.Dimension()),
		slog.String("upload_dir", images.Dir()),
	)

	return &components{
		pool:     pool,
		images:   images,
		poolRepo: poolRepo,
		hub:      hub,
		hooks:    hooks,
		limiter:  ratelimit.NewRateLimiter(pool, time.Minute),
		employees: service.NewEmployeeService(
			employeeRepo, images, extractor, cfg.MaxImageSize, auditLogger, logger,
		).WithPublisher(events),
		visitors: service.NewVisitorService(
			visitorRepo, images, extractor, cfg.MaxImageSize, auditLogger, logger,
		).WithPublisher(events),
		attendance: service.NewAttendanceService(
			attendanceRepo, visitorRepo, poolRepo, images, extractor, cfg.MaxImageSize, auditLogger, logger,
		).WithPublisher(events),
	}, nil
}

func (c *components) Close() {
	c.pool.Close()
}

func requirePositive(n int, what string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be a positive integer, got %d", what, n)
	}
	return nil
}
