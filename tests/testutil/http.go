package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response body with typed data
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

// APIClient sends JSON requests straight into an http.Handler
type APIClient struct {
	t       *testing.T
	handler http.Handler
	headers map[string]string
}

// NewAPIClient wraps handler, usually a configured gin engine
func NewAPIClient(t *testing.T, handler http.Handler) *APIClient {
	return &APIClient{t: t, handler: handler, headers: map[string]string{}}
}

// WithHeader returns a copy that sends key on every request
func (c *APIClient) WithHeader(key, value string) *APIClient {
	headers := make(map[string]string, len(c.headers)+1)
	for k, v := range c.headers {
		headers[k] = v
	}
	headers[key] = value
	return &APIClient{t: c.t, handler: c.handler, headers: headers}
}

// Do encodes body as JSON (when not nil) and serves the request
func (c *APIClient) Do(method, target string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

// DecodeData asserts a success envelope and returns its data
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, w.Body.String())
	return env.Data
}

// AssertError checks the status and error code of a failure envelope
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, w.Body.String())
	var env Envelope[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, w.Body.String())
	assert.Equal(t, code, env.Error.Code)
}
