package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/botforce/unity/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")
	assert.Empty(t, getRequestID(c))

	c.Set(middleware.RequestIDKey, "req-123")
	assert.Equal(t, "req-123", getRequestID(c))
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		h.Success(c, map[string]string{"key": "value"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("success with meta", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(45), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("created", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/")
		h.Created(c, map[string]string{"id": "123"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no content", func(t *testing.T) {
		r := gin.New()
		r.DELETE("/x", func(c *gin.Context) { h.NoContent(c) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/x", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})
}

func TestBaseHandlerBadRequestCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")
	c.Set(middleware.RequestIDKey, "req-abc")

	h.BadRequest(c, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Equal(t, "req-abc", resp.Error.RequestID)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:       "domain not found",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "domain already exists",
			err:        shared.ErrAlreadyExists,
			wantStatus: http.StatusConflict,
			wantCode:   "ALREADY_EXISTS",
		},
		{
			name:       "version conflict",
			err:        shared.ErrConcurrencyConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "VERSION_CONFLICT",
		},
		{
			name:        "wrapped domain rule violation",
			err:         fmt.Errorf("issue: %w", shared.NewDomainError("INVALID_STATE", "Only drafts can be issued")),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "INVALID_STATE",
			wantMessage: "Only drafts can be issued",
		},
		{
			name:       "app auth error",
			err:        shared.NewAuthError(""),
			wantStatus: http.StatusUnauthorized,
			wantCode:   shared.CodeUnauthorized,
		},
		{
			name:        "external service keeps service name only",
			err:         shared.NewExternalServiceError("document-ai", fmt.Errorf("dial tcp: timeout")),
			wantStatus:  http.StatusBadGateway,
			wantCode:    shared.CodeExternalService,
			wantMessage: "document-ai is currently unavailable",
		},
		{
			name:        "unexpected error is masked",
			err:         fmt.Errorf("pq: relation \"documents\" does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    shared.CodeInternal,
			wantMessage: shared.GenericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(http.MethodGet, "/")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
			assert.NotContains(t, w.Body.String(), "pq:")
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestBaseHandlerHandleErrorFields(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodPost, "/")

	h.HandleError(c, shared.NewValidationError("",
		shared.FieldError{Field: "lines[0].quantity", Message: "must be positive"},
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, shared.CodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Fields, 1)
	assert.Equal(t, "lines[0].quantity", resp.Error.Fields[0].Field)
}

func TestBaseHandlerHandleErrorRetryAfter(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.HandleError(c, shared.NewRateLimitError(30*time.Second))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestBaseHandlerHandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerIdentity(t *testing.T) {
	h := &BaseHandler{}

	t.Run("missing identity writes 401", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")

		_, _, ok := h.identity(c)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("identity from context", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		tenantID, userID := uuid.New(), uuid.New()
		c.Set(middleware.TenantIDKey, tenantID)
		c.Set(middleware.UserIDKey, userID)

		gotTenant, gotUser, ok := h.identity(c)

		require.True(t, ok)
		assert.Equal(t, tenantID, gotTenant)
		assert.Equal(t, userID, gotUser)
	})
}

func TestBaseHandlerPathID(t *testing.T) {
	h := &BaseHandler{}
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidID, decodeResponse(t, w).Error.Code)
}

func TestBaseHandlerBindOptionalJSON(t *testing.T) {
	h := &BaseHandler{}
	type body struct {
		Reason string `json:"reason" binding:"max=5"`
	}

	t.Run("empty body is accepted", func(t *testing.T) {
		c, _ := newTestContext(http.MethodPost, "/")
		var b body
		assert.True(t, h.bindOptionalJSON(c, &b))
		assert.Empty(t, b.Reason)
	})

	t.Run("present body is validated", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"far too long"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var b body
		assert.False(t, h.bindOptionalJSON(c, &b))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
