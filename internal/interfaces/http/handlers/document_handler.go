package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/ptab"
)

// Downloader streams a proceeding document.  *ptab.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, documentID string) (*ptab.Download, error)
}

// DocumentHandler proxies PTAB document downloads.
type DocumentHandler struct {
	downloader Downloader
	logger     logging.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(d Downloader, logger logging.Logger) *DocumentHandler {
	return &DocumentHandler{downloader: d, logger: logger}
}

// RegisterRoutes mounts the document endpoints on rg.
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/download", h.Download)
}

// Download handles GET /documents/:id/download.  The body is streamed as it
// arrives from the registry.
func (h *DocumentHandler) Download(c *gin.Context) {
	id := c.Param("id")
	dl, err := h.downloader.Download(c.Request.Context(), id)
	if err != nil {
		h.logger.WithContext(c.Request.Context()).WithError(err).Warn("document download failed",
			logging.String("document_id", id))
		writeAppError(c, err)
		return
	}
	defer dl.Body.Close()

	c.DataFromReader(http.StatusOK, dl.ContentLength, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": dl.Disposition(),
	})
}

//Personal.AI order the ending
