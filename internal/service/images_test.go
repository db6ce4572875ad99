package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	fakeface "github.com/saturnino-fabrica-de-software/frontdesk/internal/provider/mock"
)

func blankImage(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 24, 24))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 40, G: 40, B: 40, A: 255}}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// The services hand the extractor a normalized JPEG, so fixtures of the
// development extractor must still apply to what the client uploaded.
func TestEmployeeService_RegisterWithFixtureExtractor(t *testing.T) {
	upload := testImage(t)
	pinned := []float64{0.25, 0.5, 0.75}

	t.Run("pinned embedding is stored", func(t *testing.T) {
		extractor := fakeface.New(3)
		extractor.Register(upload, pinned)

		repo := new(MockEmployeeRepository)
		images := new(MockImageStore)
		svc := NewEmployeeService(repo, images, extractor, testMaxImageSize, noAudit(), discardLogger())

		images.On("Save", mock.Anything, "employee", mock.Anything, "jpg").Return("uploads/employee_1.jpg", nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Employee) bool {
			return assert.ObjectsAreEqual(pinned, e.Embedding)
		})).Return(nil)

		_, err := svc.Register(context.Background(), "Alice", upload)
		require.NoError(t, err)

		repo.AssertExpectations(t)
		images.AssertExpectations(t)
	})

	t.Run("registered no-face upload stores nothing", func(t *testing.T) {
		extractor := fakeface.New(3)
		extractor.RegisterNoFace(upload)

		repo := new(MockEmployeeRepository)
		images := new(MockImageStore)
		svc := NewEmployeeService(repo, images, extractor, testMaxImageSize, noAudit(), discardLogger())

		_, err := svc.Register(context.Background(), "Alice", upload)
		assert.ErrorIs(t, err, domain.ErrNoFaceDetected)

		images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blank upload has no face", func(t *testing.T) {
		repo := new(MockEmployeeRepository)
		images := new(MockImageStore)
		svc := NewEmployeeService(repo, images, fakeface.New(3), testMaxImageSize, noAudit(), discardLogger())

		_, err := svc.Register(context.Background(), "Alice", blankImage(t))
		assert.ErrorIs(t, err, domain.ErrNoFaceDetected)

		images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVisitorService_CreateWithFixtureExtractor(t *testing.T) {
	upload := testImage(t)
	pinned := []float64{1, 0, 0}

	extractor := fakeface.New(3)
	extractor.Register(upload, pinned)

	repo := new(MockVisitorRepository)
	images := new(MockImageStore)
	svc := NewVisitorService(repo, images, extractor, testMaxImageSize, noAudit(), discardLogger())

	images.On("Save", mock.Anything, "visitor", mock.Anything, "jpg").Return("uploads/visitor_1.jpg", nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.Visitor) bool {
		return assert.ObjectsAreEqual(pinned, v.Embedding)
	})).Return(nil)

	_, err := svc.Create(context.Background(), "Eve", "Alice", upload)
	require.NoError(t, err)

	repo.AssertExpectations(t)
	images.AssertExpectations(t)
}
