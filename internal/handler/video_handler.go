package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bjjvault/video-gateway/internal/service"
)

// VideoHandler serves search and transcription.
type VideoHandler struct {
	gateway *service.VideoGateway
}

// NewVideoHandler creates a new VideoHandler instance.
func NewVideoHandler(gateway *service.VideoGateway) *VideoHandler {
	return &VideoHandler{gateway: gateway}
}

// Search handles GET /api/videos/search?q=&provider=.
func (h *VideoHandler) Search(c *gin.Context) {
	videos, err := h.gateway.Search(c.Request.Context(), c.Query("q"), c.Query("provider"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// Transcription handles GET /api/videos/:provider/:id/transcription. A
// degraded result is still returned, with status 500.
func (h *VideoHandler) Transcription(c *gin.Context) {
	result, err := h.gateway.Transcription(c.Request.Context(), c.Param("provider"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Degraded {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

// Providers handles GET /api/videos/providers.
func (h *VideoHandler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.gateway.Providers()})
}
