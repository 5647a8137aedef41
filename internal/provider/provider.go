// Package provider defines the video platform abstraction the gateway
// dispatches to and the registry of implemented platforms.
package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/bjjvault/video-gateway/internal/models"
)

// Provider is one video platform.
type Provider interface {
	ID() models.ProviderID
	// Search returns normalized results in the platform's native order.
	Search(ctx context.Context, query string) ([]models.VideoSummary, error)
	// Transcription never fails; failures degrade to placeholder text.
	Transcription(ctx context.Context, videoID string) models.Transcription
}

// Registry maps provider ids to implementations.
type Registry struct {
	providers map[models.ProviderID]Provider
}

// NewRegistry builds a registry. Registering the same id twice is a
// programming error and panics.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[models.ProviderID]Provider, len(providers))}
	for _, p := range providers {
		if _, dup := r.providers[p.ID()]; dup {
			panic(fmt.Sprintf("provider %q registered twice", p.ID()))
		}
		r.providers[p.ID()] = p
	}
	return r
}

// Get returns the provider registered under id.
func (r *Registry) Get(id models.ProviderID) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// IDs returns the registered ids sorted alphabetically.
func (r *Registry) IDs() []models.ProviderID {
	ids := make([]models.ProviderID, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
