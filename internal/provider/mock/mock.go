package mock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/imaging"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/provider"
)

// flatTolerance is the largest per-channel spread (16-bit scale) an image
// may have and still count as blank
const flatTolerance = 2 << 8

// Provider is a deterministic provider.EmbeddingExtractor for development and
// tests. Identical images always yield identical embeddings, and blank
// single-color images contain no face.
type Provider struct {
	dimension int

	mu       sync.RWMutex
	fixtures map[[sha256.Size]byte]fixture
}

type fixture struct {
	embedding []float64
	noFace    bool
}

// New creates a mock extractor producing vectors of the given length
func New(dimension int) *Provider {
	if dimension <= 0 {
		dimension = 128
	}
	return &Provider{
		dimension: dimension,
		fixtures:  make(map[[sha256.Size]byte]fixture),
	}
}

// Register pins the embedding returned for upload. The pin covers both the
// upload itself and its normalized JPEG form, which is what the services
// hand to the extractor.
func (p *Provider) Register(upload []byte, embedding []float64) {
	p.add(upload, fixture{embedding: append([]float64(nil), embedding...)})
}

// RegisterNoFace makes Extract report ErrNoFaceDetected for upload
func (p *Provider) RegisterNoFace(upload []byte) {
	p.add(upload, fixture{noFace: true})
}

func (p *Provider) add(upload []byte, f fixture) {
	keys := [][sha256.Size]byte{sha256.Sum256(upload)}
	if normalized, err := imaging.Prepare(upload, 0); err == nil {
		keys = append(keys, sha256.Sum256(normalized))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, key := range keys {
		p.fixtures[key] = f
	}
}

// Extract returns a fixture embedding when one matches, otherwise a vector
// derived from the SHA-256 of the image
func (p *Provider) Extract(ctx context.Context, data []byte) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, domain.ErrInvalidImage
	}

	p.mu.RLock()
	f, ok := p.fixtures[sha256.Sum256(data)]
	p.mu.RUnlock()

	if ok {
		if f.noFace {
			return nil, domain.ErrNoFaceDetected
		}
		if len(f.embedding) != p.dimension {
			return nil, domain.ErrDimensionalityMismatch.WithError(
				fmt.Errorf("fixture has %d dimensions, expected %d", len(f.embedding), p.dimension),
			)
		}
		return append([]float64(nil), f.embedding...), nil
	}

	if isBlank(data) {
		return nil, domain.ErrNoFaceDetected
	}

	return generateEmbedding(data, p.dimension), nil
}

func (p *Provider) Dimension() int {
	return p.dimension
}

func (p *Provider) Name() string {
	return "mock"
}

// isBlank reports whether data decodes to an image of a single color.
// Bytes that are not an image are never blank.
func isBlank(data []byte) bool {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return false
	}

	r0, g0, b0, _ := img.At(bounds.Min.X, bounds.Min.Y).RGBA()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if spread(r, r0) > flatTolerance || spread(g, g0) > flatTolerance || spread(b, b0) > flatTolerance {
				return false
			}
		}
	}
	return true
}

func spread(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// generateEmbedding spreads the image hash over dimension components and
// normalizes the result to unit length
func generateEmbedding(data []byte, dimension int) []float64 {
	hash := sha256.Sum256(data)
	embedding := make([]float64, dimension)
	hashLen := len(hash)

	for i := 0; i < dimension; i++ {
		idx := i % hashLen
		//nolint:gosec // idx is always < hashLen due to modulo operation
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return embedding
	}

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var _ provider.EmbeddingExtractor = (*Provider)(nil)
