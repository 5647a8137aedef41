package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bjjvault/video-gateway/internal/metrics"
	"github.com/bjjvault/video-gateway/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Videos  *VideoHandler
	Saved   *SavedVideoHandler
	Health  *HealthHandler
	Auth    *middleware.APIKeyAuth
	Metrics *metrics.Metrics
}

// NewRouter wires the routes. Health and metrics stay outside the API key guard.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware())
		router.GET("/metrics", h.Metrics.Handler())
	}

	router.GET("/health/live", h.Health.LivenessProbe)
	router.GET("/health/ready", h.Health.ReadinessProbe)

	api := router.Group("/api")
	if h.Auth != nil {
		api.Use(h.Auth.Middleware())
	}

	videos := api.Group("/videos")
	videos.GET("/search", h.Videos.Search)
	videos.GET("/providers", h.Videos.Providers)
	videos.GET("/:provider/:id/transcription", h.Videos.Transcription)

	saved := api.Group("/users/:userId/videos")
	saved.GET("", h.Saved.List)
	saved.POST("", h.Saved.Add)
	saved.GET("/:provider/:videoId", h.Saved.Get)
	saved.PUT("/:provider/:videoId", h.Saved.Update)
	saved.DELETE("/:provider/:videoId", h.Saved.Remove)
	saved.GET("/:provider/:videoId/exists", h.Saved.Exists)

	return router
}
