package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/imaging"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider"
)

const (
	employeeImagePrefix = "employee"
	visitorImagePrefix  = "visitor"
	imageExt            = "jpg"
)

// faceReader turns uploaded bytes into a normalized JPEG and its embedding.
// Shared by every flow that accepts a face image.
type faceReader struct {
	extractor    provider.EmbeddingExtractor
	maxImageSize int64
}

func (r faceReader) read(ctx context.Context, image []byte) ([]byte, []float64, error) {
	normalized, err := imaging.Prepare(image, r.maxImageSize)
	if err != nil {
		return nil, nil, err
	}

	embedding, err := r.extractor.Extract(ctx, normalized)
	if err != nil {
		return nil, nil, fmt.Errorf("extract embedding: %w", err)
	}

	return normalized, embedding, nil
}

// removeImage deletes an image whose database row was never written or has
// been deleted. Failures are logged and left to the orphan sweep.
func removeImage(ctx context.Context, logger *slog.Logger, store ImageStore, path string) {
	if err := store.Delete(path); err != nil {
		logger.WarnContext(ctx, "failed to remove image",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
