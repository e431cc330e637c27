package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Continuity/internal/application/lookup"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// LookupHandler exposes the lookup service.
type LookupHandler struct {
	svc    lookup.Service
	logger logging.Logger
}

// NewLookupHandler creates a LookupHandler.
func NewLookupHandler(svc lookup.Service, logger logging.Logger) *LookupHandler {
	return &LookupHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the lookup endpoints on rg.
func (h *LookupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/lookup", h.Resolve)
	rg.GET("/search", h.Search)
	rg.GET("/proceedings/:number", h.Proceeding)
	rg.GET("/family/:application", h.Family)
}

// Resolve handles GET /lookup with exactly one of application, patent,
// publication, q or proceeding.
func (h *LookupHandler) Resolve(c *gin.Context) {
	var req lookup.Request
	if err := c.ShouldBindQuery(&req); err != nil {
		writeAppError(c, errors.InvalidParam("invalid query parameters").WithCause(err))
		return
	}
	h.render(c, "resolve")(h.svc.Resolve(c.Request.Context(), req))
}

// Search handles GET /search?q=&confirm_large=.
func (h *LookupHandler) Search(c *gin.Context) {
	var req struct {
		Term         string `form:"q"`
		ConfirmLarge bool   `form:"confirm_large"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		writeAppError(c, errors.InvalidParam("invalid query parameters").WithCause(err))
		return
	}
	h.render(c, "search")(h.svc.Search(c.Request.Context(), req.Term, req.ConfirmLarge))
}

// Proceeding handles GET /proceedings/:number.
func (h *LookupHandler) Proceeding(c *gin.Context) {
	h.render(c, "proceeding")(h.svc.Proceeding(c.Request.Context(), c.Param("number")))
}

// Family handles GET /family/:application.
func (h *LookupHandler) Family(c *gin.Context) {
	h.render(c, "family")(h.svc.Family(c.Request.Context(), c.Param("application")))
}

func (h *LookupHandler) render(c *gin.Context, op string) func(*lookup.Result, error) {
	return func(res *lookup.Result, err error) {
		if err != nil {
			h.logger.WithContext(c.Request.Context()).WithError(err).Warn("lookup request failed",
				logging.String("operation", op))
			writeAppError(c, err)
			return
		}
		c.JSON(http.StatusOK, res.View())
	}
}

//Personal.AI order the ending
