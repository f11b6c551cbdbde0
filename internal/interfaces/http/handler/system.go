package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readinessTimeout bounds each dependency probe in Ready
const readinessTimeout = 2 * time.Second

// DependencyCheck probes one backing service for readiness
type DependencyCheck func(ctx context.Context) error

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]DependencyCheck
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    make(map[string]DependencyCheck),
	}
}

// AddCheck registers a dependency probed by Ready
func (h *SystemHandler) AddCheck(name string, check DependencyCheck) {
	h.checks[name] = check
}

// HealthResponse represents the liveness and readiness payload
// @name HandlerHealthResponse
type HealthResponse struct {
	Status       string            `json:"status" example:"healthy"`
	Time         string            `json:"time" example:"2026-01-23T12:00:00Z"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health godoc
// @ID           getSystemHealth
// @Summary      Liveness probe
// @Description  Reports that the process is up. Does not touch dependencies.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready godoc
// @ID           getSystemReady
// @Summary      Readiness probe
// @Description  Pings the database and every other registered dependency
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			logger.GetGinLogger(c).Warn("Readiness check failed",
				zap.String("dependency", name),
				zap.Error(err),
			)
			deps[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	resp := HealthResponse{
		Status:       "ready",
		Time:         time.Now().UTC().Format(time.RFC3339),
		Dependencies: deps,
	}
	if status != http.StatusOK {
		resp.Status = "unavailable"
	}
	c.JSON(status, resp)
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Unity API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}
