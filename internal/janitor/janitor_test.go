package janitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/storage"
)

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) List(ctx context.Context) ([]storage.StoredImage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.StoredImage), args.Error(1)
}

func (m *MockImageStore) Delete(path string) error {
	return m.Called(path).Error(0)
}

type MockReferences struct {
	mock.Mock
}

func (m *MockReferences) ImagePaths(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newJanitor(images ImageStore, refs ReferenceSource) *Janitor {
	j := New(images, refs, testLogger(), Config{Interval: time.Hour, GracePeriod: 15 * time.Minute})
	j.now = func() time.Time { return now }
	return j
}

func TestJanitor_Sweep(t *testing.T) {
	old := now.Add(-time.Hour)
	fresh := now.Add(-time.Minute)

	images := new(MockImageStore)
	images.On("List", mock.Anything).Return([]storage.StoredImage{
		{Path: "uploads/employee_a.jpg", ModTime: old},
		{Path: "uploads/orphan_old.jpg", ModTime: old},
		{Path: "uploads/orphan_fresh.jpg", ModTime: fresh},
		{Path: "uploads/visitor_b.jpg", ModTime: old},
		{Path: "uploads/locked.jpg", ModTime: old},
	}, nil)
	images.On("Delete", "uploads/orphan_old.jpg").Return(nil)
	images.On("Delete", "uploads/locked.jpg").Return(errors.New("permission denied"))

	refs := new(MockReferences)
	refs.On("ImagePaths", mock.Anything).Return(map[string]struct{}{
		"uploads/employee_a.jpg":   {},
		"./uploads/visitor_b.jpg":  {},
		"uploads/already_gone.jpg": {},
	}, nil)

	result, err := newJanitor(images, refs).Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 5, Deleted: 1, Failed: 1}, result)
	images.AssertExpectations(t)
	images.AssertNotCalled(t, "Delete", "uploads/orphan_fresh.jpg")
	images.AssertNotCalled(t, "Delete", "uploads/employee_a.jpg")
	images.AssertNotCalled(t, "Delete", "uploads/visitor_b.jpg")
}

func TestJanitor_SweepErrors(t *testing.T) {
	t.Run("list fails", func(t *testing.T) {
		images := new(MockImageStore)
		images.On("List", mock.Anything).Return(nil, errors.New("disk gone"))
		refs := new(MockReferences)

		_, err := newJanitor(images, refs).Sweep(context.Background())

		require.Error(t, err)
		refs.AssertNotCalled(t, "ImagePaths", mock.Anything)
	})

	t.Run("references fail", func(t *testing.T) {
		images := new(MockImageStore)
		images.On("List", mock.Anything).Return([]storage.StoredImage{
			{Path: "uploads/a.jpg", ModTime: now.Add(-time.Hour)},
		}, nil)
		refs := new(MockReferences)
		refs.On("ImagePaths", mock.Anything).Return(nil, errors.New("db down"))

		_, err := newJanitor(images, refs).Sweep(context.Background())

		require.Error(t, err)
		images.AssertNotCalled(t, "Delete", mock.Anything)
	})
}

func TestJanitor_SweepWithImageStore(t *testing.T) {
	store, err := storage.NewImageStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	kept, err := store.Save(ctx, "employee", []byte("kept"), "jpg")
	require.NoError(t, err)
	orphan, err := store.Save(ctx, "visitor", []byte("orphan"), "jpg")
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(kept, past, past))
	require.NoError(t, os.Chtimes(orphan, past, past))

	refs := new(MockReferences)
	refs.On("ImagePaths", mock.Anything).Return(map[string]struct{}{kept: {}}, nil)

	j := New(store, refs, testLogger(), Config{Interval: time.Hour, GracePeriod: time.Minute})
	result, err := j.Sweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
	assert.FileExists(t, kept)
	assert.NoFileExists(t, orphan)
	assert.Equal(t, filepath.Dir(kept), store.Dir())
}

func TestJanitor_RunRejectsZeroInterval(t *testing.T) {
	j := New(new(MockImageStore), new(MockReferences), testLogger(), Config{})
	assert.Error(t, j.Run(context.Background()))
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	images := new(MockImageStore)
	images.On("List", mock.Anything).Return([]storage.StoredImage{}, nil).Maybe()
	refs := new(MockReferences)
	refs.On("ImagePaths", mock.Anything).Return(map[string]struct{}{}, nil).Maybe()

	j := New(images, refs, testLogger(), Config{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
