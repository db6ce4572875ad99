package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(ctx context.Context) error {
	return p.err
}

func TestHealthHandler_Health(t *testing.T) {
	app := fiber.New()
	handler := NewHealthHandler(nil)
	app.Get("/health", handler.Health)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result.Status)
	assert.NotEmpty(t, result.Version)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		pinger     *fakePinger
		wantStatus int
		wantBody   string
	}{
		{name: "no database configured", wantStatus: 200, wantBody: "ready"},
		{name: "database reachable", pinger: &fakePinger{}, wantStatus: 200, wantBody: "ready"},
		{name: "database down", pinger: &fakePinger{err: errors.New("connection refused")}, wantStatus: 503, wantBody: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(nil)
			if tt.pinger != nil {
				handler = NewHealthHandler(*tt.pinger)
			}

			app := fiber.New()
			app.Get("/ready", handler.Ready)

			resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var result HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
			assert.Equal(t, tt.wantBody, result.Status)
		})
	}
}
