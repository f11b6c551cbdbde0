// Package testutil provides helpers shared by the integration suites:
// deterministic identities, an event recorder and an HTTP client for the
// JSON envelope.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a reproducible UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}

// TestTenantID returns the default tenant used by the suites
func TestTenantID() uuid.UUID {
	return NewTestUUID("test-tenant")
}

// OtherTenantID returns a second tenant for isolation checks
func OtherTenantID() uuid.UUID {
	return NewTestUUID("other-tenant")
}

// TestUserID returns the default acting user
func TestUserID() uuid.UUID {
	return NewTestUUID("test-user")
}

// ContextWithTimeout returns a context cancelled when the test ends or the
// timeout passes, whichever comes first.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or timeout passes
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	require.Fail(t, "condition not met within timeout", msgAndArgs...)
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
