package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveSystem(h *SystemHandler, path string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/system/info", h.GetSystemInfo)
	r.GET("/system/ping", h.Ping)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler("Unity API", "1.0.0")
	h.AddCheck("database", func(context.Context) error { return errors.New("down") })

	w := serveSystem(h, "/health")

	// Liveness ignores dependencies.
	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Empty(t, resp.Dependencies)
}

func TestSystemHandler_Ready(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		h := NewSystemHandler("Unity API", "1.0.0")
		h.AddCheck("database", func(context.Context) error { return nil })
		h.AddCheck("redis", func(context.Context) error { return nil })

		w := serveSystem(h, "/ready")

		require.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, map[string]string{"database": "ok", "redis": "ok"}, resp.Dependencies)
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewSystemHandler("Unity API", "1.0.0")
		h.AddCheck("database", func(context.Context) error { return nil })
		h.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		w := serveSystem(h, "/ready")

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "ok", resp.Dependencies["database"])
		assert.Equal(t, "error", resp.Dependencies["redis"])
	})

	t.Run("probe gets a deadline", func(t *testing.T) {
		h := NewSystemHandler("Unity API", "1.0.0")
		h.AddCheck("database", func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		})

		w := serveSystem(h, "/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("Unity API", "2.3.4")

	w := serveSystem(h, "/system/info")

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "Unity API", data["name"])
	assert.Equal(t, "2.3.4", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	w := serveSystem(NewSystemHandler("Unity API", "1.0.0"), "/system/ping")

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "pong", data["message"])
	assert.NotEmpty(t, data["timestamp"])
}
