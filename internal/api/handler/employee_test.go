package handler

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/frontdesk/internal/domain"
)

func setupEmployeeApp(svc *MockEmployeeService) *fiber.App {
	app := newTestApp()
	h := NewEmployeeHandler(svc, testLogger())
	app.Post("/employees", h.Register)
	app.Get("/employees", h.List)
	app.Get("/employees/:id", h.Get)
	app.Put("/employees/:id", h.Update)
	app.Delete("/employees/:id", h.Delete)
	return app
}

func TestEmployeeHandler_Register(t *testing.T) {
	t.Run("base64 json body", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Register", mock.Anything, "Alice", imageBytes).
			Return(&domain.Employee{ID: 7, Name: "Alice"}, nil)

		resp, err := setupEmployeeApp(svc).Test(jsonRequest(t, "POST", "/employees",
			RegisterEmployeeRequest{Name: "Alice", Image: imageBase64()}))
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)

		body := decodeResponse(t, resp)
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, "Employee Alice registered successfully", body.Message)
		assert.Equal(t, map[string]any{"employee_id": float64(7)}, body.Data)
		svc.AssertExpectations(t)
	})

	t.Run("data url", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Register", mock.Anything, "Alice", imageBytes).
			Return(&domain.Employee{ID: 1, Name: "Alice"}, nil)

		resp, err := setupEmployeeApp(svc).Test(jsonRequest(t, "POST", "/employees",
			RegisterEmployeeRequest{Name: "Alice", Image: "data:image/jpeg;base64," + imageBase64()}))
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("multipart upload", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Register", mock.Anything, "Bob", imageBytes).
			Return(&domain.Employee{ID: 2, Name: "Bob"}, nil)

		resp, err := setupEmployeeApp(svc).Test(multipartRequest(t, "/employees",
			map[string]string{"name": "Bob"}, imageBytes))
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("missing image", func(t *testing.T) {
		svc := new(MockEmployeeService)

		resp, err := setupEmployeeApp(svc).Test(jsonRequest(t, "POST", "/employees",
			RegisterEmployeeRequest{Name: "Alice"}))
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
		svc.AssertNotCalled(t, "Register")
	})

	t.Run("invalid base64", func(t *testing.T) {
		svc := new(MockEmployeeService)

		resp, err := setupEmployeeApp(svc).Test(jsonRequest(t, "POST", "/employees",
			RegisterEmployeeRequest{Name: "Alice", Image: "%%% not base64 %%%"}))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "INVALID_IMAGE", decodeError(t, resp).Error.Code)
	})

	t.Run("no face", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Register", mock.Anything, "Alice", imageBytes).
			Return(nil, domain.ErrNoFaceDetected)

		resp, err := setupEmployeeApp(svc).Test(jsonRequest(t, "POST", "/employees",
			RegisterEmployeeRequest{Name: "Alice", Image: imageBase64()}))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "NO_FACE_DETECTED", decodeError(t, resp).Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(MockEmployeeService)
		req := httptest.NewRequest("POST", "/employees", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := setupEmployeeApp(svc).Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestEmployeeHandler_List(t *testing.T) {
	svc := new(MockEmployeeService)
	svc.On("List", mock.Anything).Return([]domain.Employee{
		{ID: 1, Name: "Alice", Embedding: []float64{0.1}},
		{ID: 2, Name: "Bob"},
	}, nil)

	resp, err := setupEmployeeApp(svc).Test(httptest.NewRequest("GET", "/employees", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var employees []map[string]any
	require.NoError(t, decodeJSON(resp, &employees))
	require.Len(t, employees, 2)
	assert.Equal(t, "Alice", employees[0]["name"])
	assert.NotContains(t, employees[0], "embedding")
}

func TestEmployeeHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(*MockEmployeeService)
		wantStatus int
	}{
		{
			name: "found",
			path: "/employees/3",
			setup: func(m *MockEmployeeService) {
				m.On("Get", mock.Anything, int64(3)).Return(&domain.Employee{ID: 3, Name: "Carol"}, nil)
			},
			wantStatus: 200,
		},
		{
			name: "not found",
			path: "/employees/9",
			setup: func(m *MockEmployeeService) {
				m.On("Get", mock.Anything, int64(9)).Return(nil, domain.ErrEmployeeNotFound)
			},
			wantStatus: 404,
		},
		{name: "non numeric id", path: "/employees/abc", setup: func(*MockEmployeeService) {}, wantStatus: 400},
		{name: "zero id", path: "/employees/0", setup: func(*MockEmployeeService) {}, wantStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockEmployeeService)
			tt.setup(svc)

			resp, err := setupEmployeeApp(svc).Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			svc.AssertExpectations(t)
		})
	}
}

func TestEmployeeHandler_Update(t *testing.T) {
	svc := new(MockEmployeeService)
	svc.On("Rename", mock.Anything, int64(4), "Dana").Return(&domain.Employee{ID: 4, Name: "Dana"}, nil)

	resp, err := setupEmployeeApp(svc).Test(jsonRequest(t, "PUT", "/employees/4", UpdateEmployeeRequest{Name: "Dana"}))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Employee 4 updated successfully", decodeResponse(t, resp).Message)
}

func TestEmployeeHandler_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Delete", mock.Anything, int64(5)).Return(nil)

		resp, err := setupEmployeeApp(svc).Test(httptest.NewRequest("DELETE", "/employees/5", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "Employee 5 deleted successfully", decodeResponse(t, resp).Message)
	})

	t.Run("repository failure", func(t *testing.T) {
		svc := new(MockEmployeeService)
		svc.On("Delete", mock.Anything, int64(5)).Return(errors.New("db down"))

		resp, err := setupEmployeeApp(svc).Test(httptest.NewRequest("DELETE", "/employees/5", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}
