package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kv-shepherd.io/multiauth/internal/provider"
)

// GetLiveness handles GET /health/live.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReadiness handles GET /health/ready.
func (s *Server) GetReadiness(c *gin.Context) {
	checks := map[string]string{}
	httpStatus := http.StatusOK
	status := "ok"

	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			checks["database"] = "error"
			httpStatus = http.StatusServiceUnavailable
			status = "degraded"
		} else {
			checks["database"] = "ok"
		}
	}

	var providers []provider.ProviderHealth
	if s.health != nil {
		providers = s.health.Snapshot()
		for _, h := range providers {
			if h.Status == provider.HealthUnhealthy || h.Status == provider.HealthBroken {
				httpStatus = http.StatusServiceUnavailable
				status = "degraded"
			}
		}
	}

	body := gin.H{"status": status, "checks": checks}
	if providers != nil {
		body["providers"] = providers
	}
	c.JSON(httpStatus, body)
}
