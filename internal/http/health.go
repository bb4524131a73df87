package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	registry     SourceRegistry
	coversActive bool
	version      string
}

func NewHealthController(registry SourceRegistry, coversActive bool, version string) *HealthController {
	return &HealthController{
		registry:     registry,
		coversActive: coversActive,
		version:      version,
	}
}

// Status reports readiness. No upstream site is contacted: a slow source must
// not make the service look down.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.registry == nil || len(h.registry.All()) == 0 {
		checks["sources"] = "none registered"
		status = "unhealthy"
	} else {
		checks["sources"] = "ok"
	}

	if h.coversActive {
		checks["image_host"] = "enabled"
	} else {
		checks["image_host"] = "disabled"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
