package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/installer"
)

// readinessTimeout bounds the installer probe of the readiness check
const readinessTimeout = 5 * time.Second

// HealthHandler handles health check endpoints
type HealthHandler struct {
	api     installer.API
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(api installer.API, version string) *HealthHandler {
	return &HealthHandler{
		api:     api,
		version: version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

var startTime = time.Now()

// Health returns the basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(startTime).String(),
	})
}

// Ready reports whether the installer service answers
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	services := make(map[string]string)
	status := "ready"
	statusCode := http.StatusOK

	if _, err := h.api.ListOpenshiftVersions(ctx); err != nil {
		services["installer"] = "unhealthy: " + errors.Message(err)
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	} else {
		services["installer"] = "healthy"
	}

	c.JSON(statusCode, ReadinessResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	})
}

// SystemInfo returns runtime information about the console process
func SystemInfo(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
		"cpu_count":  runtime.NumCPU(),
		"goroutines": runtime.NumGoroutine(),
		"memory": gin.H{
			"alloc":      m.Alloc,
			"sys":        m.Sys,
			"heap_inuse": m.HeapInuse,
		},
		"num_gc":    m.NumGC,
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}
