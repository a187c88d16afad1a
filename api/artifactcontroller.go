package api

import (
	"errors"
	"fmt"
	"net/http"

	"cofoundr/artifacts"
	"cofoundr/client"
	"cofoundr/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) registerArtifactRoutes(r *gin.Engine) {
	r.GET("/api/artifacts/:step", s.handleDownloadArtifact)
}

// handleDownloadArtifact streams the brochure image or report PDF. A
// brochure that the service returned as a URL is a redirect.
func (s *Server) handleDownloadArtifact(c *gin.Context) {
	var (
		handle, contentType, name string
		size                      int64
	)

	switch step, _ := types.ParseStep(c.Param("step")); step {
	case types.StepBrochure:
		img := s.store.BrochureImage()
		if img == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no brochure generated yet"})
			return
		}
		if img.Kind == types.ImageURL {
			c.Redirect(http.StatusFound, img.URL)
			return
		}
		handle, contentType, size, name = img.Handle, img.ContentType, img.Size, client.BrochureFileName
	case types.StepReport:
		doc := s.store.Report()
		if doc == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no report generated yet"})
			return
		}
		handle, contentType, size, name = doc.Handle, doc.ContentType, doc.Size, doc.Name
		if name == "" {
			name = client.ReportFileName
		}
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "no artifact for step: " + c.Param("step")})
		return
	}

	if s.artifacts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "artifact store not configured"})
		return
	}

	rc, err := s.artifacts.Open(c.Request.Context(), handle)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.logger.Warn("failed to open artifact", zap.String("handle", handle), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	})
}
