// Package service composes providers, validation and storage into the
// operations exposed over HTTP.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/internal/provider"
	"github.com/bjjvault/video-gateway/internal/validation"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

// VideoGateway dispatches search and transcription to the selected provider.
type VideoGateway struct {
	providers       *provider.Registry
	validator       *validation.Validator
	fallbackEnabled bool
}

// NewVideoGateway creates a gateway. With fallbackEnabled, upstream search
// failures return synthetic results instead of an error.
func NewVideoGateway(providers *provider.Registry, validator *validation.Validator, fallbackEnabled bool) *VideoGateway {
	return &VideoGateway{
		providers:       providers,
		validator:       validator,
		fallbackEnabled: fallbackEnabled,
	}
}

// Search returns normalized summaries in provider order. An empty selector
// searches YouTube.
func (g *VideoGateway) Search(ctx context.Context, query, selector string) ([]models.VideoSummary, error) {
	query, err := g.validator.Query(query)
	if err != nil {
		return nil, err
	}
	p, err := g.resolve(selector)
	if err != nil {
		return nil, err
	}

	videos, err := p.Search(ctx, query)
	if err != nil {
		if g.fallbackEnabled && apperr.Is(err, apperr.KindUpstream) {
			logger.Log.Warn("Search failed upstream, serving fallback results",
				zap.Error(err),
				zap.String("provider", string(p.ID())),
				zap.String("query", query),
			)
			return fallbackResults(query), nil
		}
		logger.Log.Error("Search failed",
			zap.Error(err),
			zap.String("provider", string(p.ID())),
			zap.String("query", query),
		)
		return nil, err
	}

	if videos == nil {
		videos = []models.VideoSummary{}
	}
	return videos, nil
}

// Transcription looks up transcription info. Provider failures never surface
// as errors; the result is flagged Degraded instead.
func (g *VideoGateway) Transcription(ctx context.Context, selector, videoID string) (models.Transcription, error) {
	if err := g.validator.VideoID(videoID); err != nil {
		return models.Transcription{}, err
	}
	p, err := g.resolve(selector)
	if err != nil {
		return models.Transcription{}, err
	}

	result := p.Transcription(ctx, videoID)
	if result.Degraded {
		logger.Log.Warn("Serving placeholder transcription",
			zap.String("provider", string(p.ID())),
			zap.String("videoId", videoID),
		)
	}
	return result, nil
}

// Providers lists the registered provider ids.
func (g *VideoGateway) Providers() []models.ProviderID {
	return g.providers.IDs()
}

func (g *VideoGateway) resolve(selector string) (provider.Provider, error) {
	id, err := g.validator.Provider(selector)
	if err != nil {
		return nil, err
	}
	p, ok := g.providers.Get(id)
	if !ok {
		return nil, apperr.InvalidRequest("Provider %s is not enabled", id)
	}
	return p, nil
}
