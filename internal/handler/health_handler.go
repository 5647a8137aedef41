package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bjjvault/video-gateway/internal/service/quota"
)

const readinessTimeout = 2 * time.Second

// Pinger is implemented by the saved-video service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker is implemented by the event publisher.
type HealthChecker interface {
	IsHealthy() bool
}

// QuotaReporter is implemented by the YouTube quota manager.
type QuotaReporter interface {
	Info() quota.Info
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store     Pinger
	publisher HealthChecker
	quota     QuotaReporter
}

// NewHealthHandler creates a new HealthHandler instance. publisher may be nil
// when events are disabled, quota when usage is not tracked.
func NewHealthHandler(store Pinger, publisher HealthChecker, quotaReporter QuotaReporter) *HealthHandler {
	return &HealthHandler{
		store:     store,
		publisher: publisher,
		quota:     quotaReporter,
	}
}

// LivenessProbe checks if the application is running.
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

// ReadinessProbe checks if the application is ready to serve traffic.
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"storage": "unhealthy",
			"time":    time.Now(),
		})
		return
	}

	rabbitmq := "disabled"
	if h.publisher != nil {
		if !h.publisher.IsHealthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "DOWN",
				"storage":  "healthy",
				"rabbitmq": "unhealthy",
				"time":     time.Now(),
			})
			return
		}
		rabbitmq = "healthy"
	}

	body := gin.H{
		"status":   "UP",
		"storage":  "healthy",
		"rabbitmq": rabbitmq,
		"time":     time.Now(),
	}
	// Quota is informational; an exhausted quota still serves saved videos.
	if h.quota != nil {
		info := h.quota.Info()
		body["youtubeQuota"] = gin.H{
			"date":      info.Date,
			"used":      info.Used,
			"limit":     info.Limit,
			"remaining": info.Remaining,
		}
	}
	c.JSON(http.StatusOK, body)
}
