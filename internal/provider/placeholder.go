package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

// Placeholder stands in for a platform that is registered but not integrated
// yet. Search is always empty and transcription is a fixed notice.
type Placeholder struct {
	id          models.ProviderID
	displayName string
}

// NewVimeo returns the Vimeo placeholder.
func NewVimeo() *Placeholder {
	return &Placeholder{id: models.ProviderVimeo, displayName: "Vimeo"}
}

// NewBilibili returns the Bilibili placeholder.
func NewBilibili() *Placeholder {
	return &Placeholder{id: models.ProviderBilibili, displayName: "Bilibili"}
}

// ID implements Provider.
func (p *Placeholder) ID() models.ProviderID {
	return p.id
}

// Search implements Provider.
func (p *Placeholder) Search(_ context.Context, query string) ([]models.VideoSummary, error) {
	logger.Log.Debug("Search on placeholder provider",
		zap.String("provider", string(p.id)),
		zap.String("query", query),
	)
	return []models.VideoSummary{}, nil
}

// Transcription implements Provider.
func (p *Placeholder) Transcription(_ context.Context, videoID string) models.Transcription {
	logger.Log.Debug("Transcription on placeholder provider",
		zap.String("provider", string(p.id)),
		zap.String("videoId", videoID),
	)
	return models.Transcription{Text: fmt.Sprintf("Transcription not available for %s yet.", p.displayName)}
}
