// Package imaging decodes and checks the face images clients upload.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

const (
	// MinImageSize rejects payloads too small to hold a usable face
	MinImageSize = 100

	// DefaultMaxDimension bounds the longest side sent to the extractor
	DefaultMaxDimension = 1600

	jpegQuality = 90
)

// DecodeBase64 accepts raw base64 (standard or URL alphabet, padded or not)
// or a data URL such as "data:image/png;base64,...".
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("empty image"))
	}

	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
			return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("malformed data url"))
		}
		s = s[comma+1:]
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}

	return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("decode base64: %w", lastErr))
}

// Validate checks size bounds and that a registered decoder recognizes the
// bytes. It returns the format name ("jpeg", "png", ...).
func Validate(data []byte, maxSize int64) (string, error) {
	if len(data) < MinImageSize {
		return "", domain.ErrInvalidImage.WithError(fmt.Errorf("image is %d bytes", len(data)))
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", domain.ErrImageTooLarge.WithError(fmt.Errorf("image is %d bytes, limit %d", len(data), maxSize))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", domain.ErrInvalidImage.WithError(err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", domain.ErrInvalidImage.WithError(fmt.Errorf("image has no pixels"))
	}

	return format, nil
}

// NormalizeJPEG decodes any supported format and re-encodes it as JPEG,
// scaling it down so the longest side is at most maxDimension.
func NormalizeJPEG(data []byte, maxDimension int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if maxDimension > 0 && (width > maxDimension || height > maxDimension) {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxDimension
			newHeight = max(1, int(float64(height)*float64(maxDimension)/float64(width)))
		} else {
			newHeight = maxDimension
			newWidth = max(1, int(float64(width)*float64(maxDimension)/float64(height)))
		}

		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// Prepare runs Validate followed by NormalizeJPEG
func Prepare(data []byte, maxSize int64) ([]byte, error) {
	if _, err := Validate(data, maxSize); err != nil {
		return nil, err
	}
	return NormalizeJPEG(data, DefaultMaxDimension)
}
