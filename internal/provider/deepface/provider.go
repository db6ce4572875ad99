package deepface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider"
)

// noFaceMarker is how DeepFace words its enforce_detection failure
const noFaceMarker = "face could not be detected"

// Provider implements provider.EmbeddingExtractor using the DeepFace API
type Provider struct {
	client    *Client
	model     string
	dimension int
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	if config.Dimension <= 0 {
		config.Dimension = DefaultConfig().Dimension
	}
	return &Provider{
		client:    NewClient(config),
		model:     config.Model,
		dimension: config.Dimension,
	}
}

// Extract returns the embedding of the first face DeepFace finds
func (p *Provider) Extract(ctx context.Context, image []byte) ([]float64, error) {
	resp, err := p.client.Represent(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		return nil, p.translate(err)
	}

	if len(resp.Results) == 0 || len(resp.Results[0].Embedding) == 0 {
		return nil, domain.ErrNoFaceDetected.WithError(ErrNoFaceInResponse)
	}

	embedding := resp.Results[0].Embedding
	if len(embedding) != p.dimension {
		return nil, domain.ErrDimensionalityMismatch.WithError(
			fmt.Errorf("deepface model %s returned %d dimensions, expected %d", p.model, len(embedding), p.dimension),
		)
	}

	return embedding, nil
}

// Dimension returns the configured embedding length
func (p *Provider) Dimension() int {
	return p.dimension
}

// Name identifies the backend and model
func (p *Provider) Name() string {
	return "deepface/" + p.model
}

func (p *Provider) translate(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.IsClientError() &&
		strings.Contains(strings.ToLower(statusErr.Message), noFaceMarker) {
		return domain.ErrNoFaceDetected.WithError(err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("extract embedding: %w", err)
	}

	return domain.ErrExtractorUnavailable.WithError(fmt.Errorf("extract embedding: %w", err))
}

var _ provider.EmbeddingExtractor = (*Provider)(nil)
