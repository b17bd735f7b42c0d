package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const componentCheckTimeout = 2 * time.Second

// StateReporter exposes the monitor lifecycle state.
type StateReporter interface {
	StateName() string
}

// ComponentChecks maps a dependency name to a probe returning nil when the
// dependency is usable.
type ComponentChecks map[string]func(ctx context.Context) error

type HealthHandler struct {
	Version string
	monitor StateReporter
	checks  ComponentChecks
}

func NewHealthHandler(version string, monitor StateReporter, checks ComponentChecks) *HealthHandler {
	return &HealthHandler{Version: version, monitor: monitor, checks: checks}
}

type HealthResponse struct {
	Status     string            `json:"status" example:"healthy"`
	State      string            `json:"state" example:"running"`
	Components map[string]string `json:"components,omitempty"`
}

type ServiceInfoResponse struct {
	Service      string   `json:"service" example:"ppe-monitor"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Report the monitor lifecycle state and the health of its detector and event bus. Status is "degraded" when a component check fails.
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status: "healthy",
		State:  h.monitor.StateName(),
	}

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), componentCheckTimeout)
		defer cancel()

		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		resp.Components = make(map[string]string, len(names))
		for _, name := range names {
			if err := h.checks[name](ctx); err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Components[name] = "healthy"
		}
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Service information
// @Description Get basic service information and capabilities
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} ServiceInfoResponse
// @Router / [get]
func (h *HealthHandler) ServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceInfoResponse{
		Service: "ppe-monitor",
		Status:  h.monitor.StateName(),
		Version: h.Version,
		Capabilities: []string{
			"ppe_detection",
			"hardhat_alerts",
			"mjpeg_streaming",
		},
	})
}
