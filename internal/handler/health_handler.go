package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"idcardgen/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	storage   port.ScratchStorage
	generator port.ArtifactGenerator
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(storage port.ScratchStorage, generator port.ArtifactGenerator) *HealthHandler {
	return &HealthHandler{storage: storage, generator: generator}
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "healthy"})
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readiness handles GET /readyz
// @Summary Readiness check
// @Description Reports whether the scratch directories are writable and the generator can be launched.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.storage.Check(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable", Error: "scratch storage not writable"})
		return
	}
	if err := h.generator.Check(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable", Error: "generator not available"})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}
