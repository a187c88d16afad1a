package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cofoundr/types"
	"cofoundr/workflow"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerWorkflowRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.GET("/status", s.handleStatus)
	g.POST("/idea", s.handleSubmitIdea)
	g.POST("/steps/:step", s.handleRunStep)
	g.PUT("/linkedin/post", s.handleEditPost)
}

// SubmitIdeaRequest starts an analysis of Idea
type SubmitIdeaRequest struct {
	Idea string `json:"idea" binding:"required"`
}

// EditPostRequest replaces the LinkedIn post text
type EditPostRequest struct {
	Post *string `json:"post" binding:"required"`
}

// AcceptedResponse acknowledges a background step run
type AcceptedResponse struct {
	Status string     `json:"status"`
	Step   types.Step `json:"step"`
}

// handleStatus returns the whole workflow state
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

// handleSubmitIdea stores the idea and analyzes it in the background
func (s *Server) handleSubmitIdea(c *gin.Context) {
	var req SubmitIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	idea := strings.TrimSpace(req.Idea)
	if idea == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": workflow.ErrMissingIdea.Error()})
		return
	}

	err := s.launch(types.StepAnalyze, func(ctx context.Context) error {
		return s.runner.Analyze(ctx, idea)
	})
	if err != nil {
		launchFailed(c, "analysis", err)
		return
	}
	c.JSON(http.StatusAccepted, AcceptedResponse{Status: "accepted", Step: types.StepAnalyze})
}

// handleRunStep runs the named step in the background
func (s *Server) handleRunStep(c *gin.Context) {
	step, ok := types.ParseStep(c.Param("step"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown step: " + c.Param("step")})
		return
	}

	if err := s.runner.Check(step); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, workflow.ErrUnknownStep) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	err := s.launch(step, func(ctx context.Context) error {
		return s.runner.Run(ctx, step)
	})
	if err != nil {
		launchFailed(c, step.Label(), err)
		return
	}
	c.JSON(http.StatusAccepted, AcceptedResponse{Status: "accepted", Step: step})
}

func launchFailed(c *gin.Context, what string, err error) {
	if errors.Is(err, errServerClosed) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusConflict, gin.H{"error": what + " already in progress"})
}

// handleEditPost replaces the LinkedIn post before publishing
func (s *Server) handleEditPost(c *gin.Context) {
	var req EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.runner.EditPost(*req.Post)
	c.JSON(http.StatusOK, gin.H{"linkedin_post": s.store.LinkedInPost()})
}
