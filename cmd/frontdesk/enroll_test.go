package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) Register(ctx context.Context, name string, image []byte) (*domain.Employee, error) {
	args := m.Called(ctx, name, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}
}

func TestEnrollFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "bob.PNG", "alice.jpg", "notes.txt", ".hidden.jpg", "carol.webp")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	files, err := enrollFiles(dir)

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "alice.jpg"),
		filepath.Join(dir, "bob.PNG"),
		filepath.Join(dir, "carol.webp"),
	}, files)

	_, err = enrollFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestEmployeeName(t *testing.T) {
	assert.Equal(t, "Alice Smith", employeeName("/photos/Alice Smith.jpg"))
	assert.Equal(t, "bob.jr", employeeName("bob.jr.png"))
}

func TestEnroll(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "alice.jpg", "ghost.jpg")
	files, err := enrollFiles(dir)
	require.NoError(t, err)

	registrar := new(MockRegistrar)
	registrar.On("Register", mock.Anything, "alice", []byte("alice.jpg")).
		Return(&domain.Employee{ID: 1, Name: "alice"}, nil)
	registrar.On("Register", mock.Anything, "ghost", []byte("ghost.jpg")).
		Return(nil, domain.ErrNoFaceDetected)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result := enroll(context.Background(), registrar, files, nil, logger)

	require.Len(t, result.Registered, 1)
	assert.Equal(t, "alice", result.Registered[0].Name)
	require.Len(t, result.Failures, 1)
	assert.True(t, errors.Is(result.Failures[0].Err, domain.ErrNoFaceDetected))

	var out bytes.Buffer
	printEnrollSummary(&out, result)
	assert.Contains(t, out.String(), "Enrolled 1 employee(s), 1 failure(s)")
	assert.Contains(t, out.String(), "+ alice (id 1)")
	assert.Contains(t, out.String(), "- ghost.jpg: No face detected in the image")
}

func TestEnroll_CanceledContext(t *testing.T) {
	registrar := new(MockRegistrar)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result := enroll(ctx, registrar, []string{"a.jpg", "b.jpg"}, nil, logger)

	assert.Empty(t, result.Registered)
	assert.Len(t, result.Failures, 2)
	registrar.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "enroll"})

	migrate, _, err := root.Find([]string{"migrate", "force"})
	require.NoError(t, err)
	assert.Equal(t, "force", migrate.Name())
}

func TestMigrateDownRejectsBadSteps(t *testing.T) {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"migrate", "down", "zero"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid step count")
}
