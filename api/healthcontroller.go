package api

import (
	"net/http"

	"cofoundr/types"

	"github.com/gin-gonic/gin"
)

// HealthResponse reports liveness and which steps are currently running
type HealthResponse struct {
	Status  string       `json:"status"`
	Running []types.Step `json:"running"`
}

func (s *Server) registerHealthRoutes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
}

func (s *Server) handleHealth(c *gin.Context) {
	running := make([]types.Step, 0, len(types.Steps))
	for _, step := range types.Steps {
		if s.store.Status(step) == types.StatusLoading {
			running = append(running, step)
		}
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Running: running})
}
