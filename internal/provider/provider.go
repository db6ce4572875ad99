package provider

import "context"

// EmbeddingExtractor turns an image into a face embedding.
//
// Extract uses the first face found in the image only. It returns
// domain.ErrNoFaceDetected when the image has no face and
// domain.ErrDimensionalityMismatch when the model produced a vector whose
// length differs from Dimension.
type EmbeddingExtractor interface {
	Extract(ctx context.Context, image []byte) ([]float64, error)
	// Dimension is the fixed embedding length the extractor produces
	Dimension() int
	// Name identifies the backend in logs and audit events
	Name() string
}
