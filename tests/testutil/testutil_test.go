package testutil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
	assert.NotEqual(t, TestTenantID(), OtherTenantID())
}

func TestEventRecorder(t *testing.T) {
	rec := NewEventRecorder()
	tenantID := uuid.New()
	first := shared.NewBaseDomainEvent("DocumentIssued", "Document", uuid.New(), tenantID)
	second := shared.NewBaseDomainEvent("DocumentPaid", "Document", uuid.New(), tenantID)

	require.NoError(t, rec.Publish(context.Background(), &first, &second))
	require.NoError(t, rec.Handle(context.Background(), &first))

	assert.Equal(t, []string{"DocumentIssued", "DocumentPaid", "DocumentIssued"}, rec.Types())
	assert.Equal(t, 2, rec.Count("DocumentIssued"))
	assert.Empty(t, rec.EventTypes())

	rec.FailWith(errors.New("bus down"))
	assert.Error(t, rec.Publish(context.Background(), &second))
	assert.Len(t, rec.Events(), 4)

	rec.Reset()
	assert.Empty(t, rec.Events())
	assert.NoError(t, rec.Publish(context.Background(), &second))
}

func TestAPIClient(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "VALIDATION_ERROR", "message": err.Error()}})
			return
		}
		body["tenant"] = c.GetHeader("X-Tenant-ID")
		c.JSON(http.StatusOK, gin.H{"success": true, "data": body})
	})

	client := NewAPIClient(t, engine).WithHeader("X-Tenant-ID", "t-1")

	w := client.Do(http.MethodPost, "/echo", map[string]string{"name": "ACME"})
	data := DecodeData[map[string]string](t, w)
	assert.Equal(t, "ACME", data["name"])
	assert.Equal(t, "t-1", data["tenant"])

	w = client.Do(http.MethodPost, "/echo", nil)
	AssertError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestRequireEventually(t *testing.T) {
	start := time.Now()
	RequireEventually(t, func() bool { return time.Since(start) > 20*time.Millisecond }, time.Second, 5*time.Millisecond)
}

func TestDate(t *testing.T) {
	d := Date(2026, time.March, 31)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 31, d.Day())
}
