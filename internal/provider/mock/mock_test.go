package mock

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/imaging"
)

func TestProvider_ExtractDeterministic(t *testing.T) {
	p := New(128)
	ctx := context.Background()

	first, err := p.Extract(ctx, []byte("alice.jpg bytes"))
	require.NoError(t, err)
	second, err := p.Extract(ctx, []byte("alice.jpg bytes"))
	require.NoError(t, err)
	other, err := p.Extract(ctx, []byte("bob.jpg bytes"))
	require.NoError(t, err)

	assert.Len(t, first, 128)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)

	var norm float64
	for _, v := range first {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func gradient(t *testing.T, seed uint8) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x*8) ^ seed, G: uint8(y * 8), B: seed, A: 255})
		}
	}
	return encodePNG(t, img)
}

func blank(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 200, G: 180, B: 160, A: 255}}, image.Point{}, draw.Src)
	return encodePNG(t, img)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProvider_ExtractFixtures(t *testing.T) {
	p := New(3)
	p.Register([]byte("alice"), []float64{0, 0, 0})
	p.Register([]byte("broken"), []float64{1, 1})

	got, err := p.Extract(context.Background(), []byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, got)

	// returned slices do not alias the fixture
	got[0] = 42
	again, err := p.Extract(context.Background(), []byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, again)

	// fixtures match whole images, not substrings
	got, err = p.Extract(context.Background(), []byte("photo of alice"))
	require.NoError(t, err)
	assert.NotEqual(t, []float64{0, 0, 0}, got)

	_, err = p.Extract(context.Background(), []byte("broken"))
	assert.ErrorIs(t, err, domain.ErrDimensionalityMismatch)
}

func TestProvider_FixturesSurviveNormalization(t *testing.T) {
	p := New(3)
	upload := gradient(t, 7)
	p.Register(upload, []float64{1, 1, 1})

	normalized, err := imaging.Prepare(upload, 1<<20)
	require.NoError(t, err)
	require.NotEqual(t, upload, normalized)

	for name, data := range map[string][]byte{"upload": upload, "normalized": normalized} {
		t.Run(name, func(t *testing.T) {
			got, err := p.Extract(context.Background(), data)
			require.NoError(t, err)
			assert.Equal(t, []float64{1, 1, 1}, got)
		})
	}

	other, err := imaging.Prepare(gradient(t, 99), 1<<20)
	require.NoError(t, err)
	got, err := p.Extract(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, []float64{1, 1, 1}, got)
}

func TestProvider_NoFace(t *testing.T) {
	p := New(128)
	hidden := gradient(t, 42)
	p.RegisterNoFace(hidden)

	normalizedBlank, err := imaging.Prepare(blank(t), 1<<20)
	require.NoError(t, err)
	normalizedHidden, err := imaging.Prepare(hidden, 1<<20)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"blank upload", blank(t)},
		{"blank after normalization", normalizedBlank},
		{"registered upload", hidden},
		{"registered after normalization", normalizedHidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Extract(context.Background(), tt.data)
			assert.ErrorIs(t, err, domain.ErrNoFaceDetected)
		})
	}

	_, err = p.Extract(context.Background(), gradient(t, 43))
	assert.NoError(t, err)
}

func TestProvider_ExtractErrors(t *testing.T) {
	p := New(128)

	_, err := p.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Extract(ctx, []byte("alice"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	assert.Equal(t, 128, New(0).Dimension())
	assert.Equal(t, 512, New(512).Dimension())
	assert.Equal(t, "mock", New(4).Name())
}
