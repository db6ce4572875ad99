package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
	"github.com/saturnino-fabrica-de-software/frontdesk/internal/service"
)

type MockEmployeeService struct {
	mock.Mock
}

func (m *MockEmployeeService) Register(ctx context.Context, name string, image []byte) (*domain.Employee, error) {
	args := m.Called(ctx, name, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) Rename(ctx context.Context, id int64, name string) (*domain.Employee, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockVisitorService struct {
	mock.Mock
}

func (m *MockVisitorService) Create(ctx context.Context, name, personToMeet string, image []byte) (*domain.Visitor, error) {
	args := m.Called(ctx, name, personToMeet, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Visitor), args.Error(1)
}

func (m *MockVisitorService) List(ctx context.Context) ([]domain.Visitor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Visitor), args.Error(1)
}

func (m *MockVisitorService) Get(ctx context.Context, id int64) (*domain.Visitor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Visitor), args.Error(1)
}

func (m *MockVisitorService) Update(ctx context.Context, id int64, update domain.VisitorUpdate) (*domain.Visitor, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Visitor), args.Error(1)
}

func (m *MockVisitorService) Decide(ctx context.Context, id int64, decision string) (*domain.Visitor, error) {
	args := m.Called(ctx, id, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Visitor), args.Error(1)
}

func (m *MockVisitorService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) Mark(ctx context.Context, image []byte) (*service.AttendanceResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttendanceResult), args.Error(1)
}

func (m *MockAttendanceService) List(ctx context.Context, date string) ([]domain.Attendance, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attendance), args.Error(1)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
}

var imageBytes = []byte("fake-image-bytes")

func imageBase64() string {
	return base64.StdEncoding.EncodeToString(imageBytes)
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a request with the given form fields and an
// optional "image" file part
func multipartRequest(t *testing.T, target string, fields map[string]string, file []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if file != nil {
		part, err := writer.CreateFormFile("image", "face.jpg")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, resp *http.Response) Response {
	t.Helper()

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeError(t *testing.T, resp *http.Response) middleware.ErrorResponse {
	t.Helper()

	var out middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeJSON(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

func strPtr(s string) *string {
	return &s
}
