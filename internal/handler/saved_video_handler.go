package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/internal/service"
	"github.com/bjjvault/video-gateway/internal/store"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

// SavedVideoHandler serves /api/users/:userId/videos.
type SavedVideoHandler struct {
	library *service.SavedVideoService
}

// NewSavedVideoHandler creates a new SavedVideoHandler instance.
func NewSavedVideoHandler(library *service.SavedVideoService) *SavedVideoHandler {
	return &SavedVideoHandler{library: library}
}

func videoKey(c *gin.Context) models.Key {
	return models.Key{
		ID:       c.Param("videoId"),
		Provider: models.ProviderID(c.Param("provider")),
	}
}

// owner resolves the path user id, answering 400 itself when it is invalid.
func (h *SavedVideoHandler) owner(c *gin.Context) (store.Owner, bool) {
	owner, err := h.library.AccountOwner(c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return store.Owner{}, false
	}
	return owner, true
}

func (h *SavedVideoHandler) List(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	videos, err := h.library.List(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *SavedVideoHandler) Get(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	video, err := h.library.Get(c.Request.Context(), owner, videoKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *SavedVideoHandler) Add(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var video models.VideoSummary
	if !bindVideo(c, &video) {
		return
	}

	saved, err := h.library.Save(c.Request.Context(), owner, video)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Update replaces a saved video. The path names the video; id and provider
// may be omitted from the body.
func (h *SavedVideoHandler) Update(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	key := videoKey(c)
	video := models.VideoSummary{ID: key.ID, Provider: key.Provider}
	if !bindVideo(c, &video) {
		return
	}
	video.ID, video.Provider = key.ID, key.Provider

	updated, err := h.library.Update(c.Request.Context(), owner, video)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *SavedVideoHandler) Remove(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	if err := h.library.Remove(c.Request.Context(), owner, videoKey(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video removed from saved list"})
}

func (h *SavedVideoHandler) Exists(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	exists, err := h.library.Exists(c.Request.Context(), owner, videoKey(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ExistsResponse{Exists: exists})
}

func bindVideo(c *gin.Context, video *models.VideoSummary) bool {
	if err := c.ShouldBindJSON(video); err != nil {
		logger.Log.Warn("Invalid request payload",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}
