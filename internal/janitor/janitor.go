// Package janitor removes stored face images that no employee or visitor
// row references any more.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/storage"
)

// ImageStore lists and deletes stored images
type ImageStore interface {
	List(ctx context.Context) ([]storage.StoredImage, error)
	Delete(path string) error
}

// ReferenceSource returns every image path still referenced by a row
type ReferenceSource interface {
	ImagePaths(ctx context.Context) (map[string]struct{}, error)
}

type Config struct {
	Interval time.Duration
	// GracePeriod protects files written by requests that have not
	// inserted their row yet
	GracePeriod time.Duration
}

// Result summarises one sweep
type Result struct {
	Scanned int
	Deleted int
	Failed  int
}

type Janitor struct {
	images ImageStore
	refs   ReferenceSource
	logger *slog.Logger
	config Config
	now    func() time.Time
}

func New(images ImageStore, refs ReferenceSource, logger *slog.Logger, config Config) *Janitor {
	return &Janitor{
		images: images,
		refs:   refs,
		logger: logger,
		config: config,
		now:    time.Now,
	}
}

// Run sweeps every Interval until ctx is canceled. Sweeps never overlap.
func (j *Janitor) Run(ctx context.Context) error {
	if j.config.Interval <= 0 {
		return fmt.Errorf("janitor: interval must be positive, got %s", j.config.Interval)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(j.config.Interval).WaitForSchedule().Do(func() {
		if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
			j.logger.Error("orphan image sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("janitor: schedule sweep: %w", err)
	}

	j.logger.Info("orphan image janitor started",
		slog.Duration("interval", j.config.Interval),
		slog.Duration("grace_period", j.config.GracePeriod),
	)

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()

	j.logger.Info("orphan image janitor stopped")
	return nil
}

// Sweep deletes unreferenced images older than the grace period. Files are
// listed before references are loaded so a row committed in between still
// protects its image.
func (j *Janitor) Sweep(ctx context.Context) (Result, error) {
	var result Result

	images, err := j.images.List(ctx)
	if err != nil {
		return result, fmt.Errorf("sweep: %w", err)
	}

	refs, err := j.refs.ImagePaths(ctx)
	if err != nil {
		return result, fmt.Errorf("sweep: %w", err)
	}

	referenced := make(map[string]struct{}, len(refs))
	for path := range refs {
		referenced[filepath.Clean(path)] = struct{}{}
	}

	cutoff := j.now().Add(-j.config.GracePeriod)
	for _, image := range images {
		result.Scanned++

		if _, ok := referenced[filepath.Clean(image.Path)]; ok {
			continue
		}
		if image.ModTime.After(cutoff) {
			continue
		}

		if err := j.images.Delete(image.Path); err != nil {
			result.Failed++
			j.logger.Warn("failed to delete orphan image",
				slog.String("path", image.Path),
				slog.Any("error", err),
			)
			continue
		}
		result.Deleted++
	}

	if result.Deleted > 0 || result.Failed > 0 {
		j.logger.Info("orphan image sweep completed",
			slog.Int("scanned", result.Scanned),
			slog.Int("deleted", result.Deleted),
			slog.Int("failed", result.Failed),
		)
	} else {
		j.logger.Debug("orphan image sweep completed", slog.Int("scanned", result.Scanned))
	}

	return result, nil
}
