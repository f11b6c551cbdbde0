package middleware

import (
	"context"
	"strings"

	"github.com/botforce/unity/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips health probes and the API docs.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/ready", "/api/v1/health"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// Profiling attaches route, method, resource and tenant labels to CPU
// samples taken while the request runs.
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range cfg.SkipPaths {
			if path == p {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	labels := map[string]string{"method": c.Request.Method}
	if route := c.FullPath(); route != "" {
		labels["route"] = route
		if resource := resourceFromRoute(route); resource != "" {
			labels["resource"] = resource
		}
	}
	if tenantID := GetTenantID(c); tenantID != uuid.Nil {
		labels["tenant_id"] = tenantID.String()
	}
	return labels
}

// resourceFromRoute returns the first segment after the API version,
// "/api/v1/documents/:id/issue" -> "documents".
func resourceFromRoute(route string) string {
	segments := strings.Split(strings.Trim(route, "/"), "/")
	for _, s := range segments {
		if s == "" || s == "api" || strings.HasPrefix(s, ":") || strings.HasPrefix(s, "*") {
			continue
		}
		if len(s) > 1 && s[0] == 'v' && strings.Trim(s[1:], "0123456789") == "" {
			continue
		}
		return s
	}
	return ""
}
