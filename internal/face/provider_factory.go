package face

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/config"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider/mock"
)

// ExtractorType defines supported embedding extractor backends
type ExtractorType string

const (
	// ExtractorTypeDeepFace calls a DeepFace HTTP service
	ExtractorTypeDeepFace ExtractorType = "deepface"
	// ExtractorTypeMock hashes the image bytes, for development and tests
	ExtractorTypeMock ExtractorType = "mock"
)

// NewExtractor creates the embedding extractor selected by EXTRACTOR_TYPE.
// It is built once at startup and shared by every request.
//
// Environment variables:
//   - EXTRACTOR_TYPE: "deepface" or "mock" (default: "deepface")
//   - DEEPFACE_URL, DEEPFACE_MODEL, DEEPFACE_DETECTOR, DEEPFACE_TIMEOUT, DEEPFACE_RETRIES
//   - EMBEDDING_DIMENSION: expected vector length (default: 128)
func NewExtractor(cfg *config.Config) (provider.EmbeddingExtractor, error) {
	switch ExtractorType(cfg.ExtractorType) {
	case ExtractorTypeDeepFace, "":
		return createDeepFaceExtractor(cfg), nil

	case ExtractorTypeMock:
		return mock.New(cfg.EmbeddingDimension), nil

	default:
		return nil, fmt.Errorf("unknown extractor type: %s (supported: %s, %s)",
			cfg.ExtractorType, ExtractorTypeDeepFace, ExtractorTypeMock)
	}
}

func createDeepFaceExtractor(cfg *config.Config) provider.EmbeddingExtractor {
	dfConfig := deepface.DefaultConfig()

	if cfg.DeepFaceURL != "" {
		dfConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceModel != "" {
		dfConfig.Model = cfg.DeepFaceModel
	}
	if cfg.DeepFaceDetector != "" {
		dfConfig.Detector = cfg.DeepFaceDetector
	}
	if cfg.DeepFaceTimeout > 0 {
		dfConfig.Timeout = cfg.DeepFaceTimeout
	}
	if cfg.DeepFaceRetries >= 0 {
		dfConfig.RetryCount = cfg.DeepFaceRetries
	}
	if cfg.EmbeddingDimension > 0 {
		dfConfig.Dimension = cfg.EmbeddingDimension
	}

	return deepface.NewProvider(dfConfig)
}
