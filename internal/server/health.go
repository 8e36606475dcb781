package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the JSON response structure for health checks.
type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
	Uptime string `json:"uptime"`
	Error  string `json:"error,omitempty"`
}

// handleHealth returns 200 if the backend answers a ping within two seconds,
// 503 otherwise.
func (s *Server) handleHealth(c *gin.Context) {
	response := HealthResponse{
		Status: "healthy",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}

	if s.pinger == nil {
		c.JSON(http.StatusOK, response)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		response.Status = "unhealthy"
		response.Redis = "disconnected"
		response.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response.Redis = "connected"
	c.JSON(http.StatusOK, response)
}
