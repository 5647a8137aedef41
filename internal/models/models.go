// Package models contains the data models and DTOs of the video gateway.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderID names a video platform.
type ProviderID string

// ProviderID constants.
const (
	ProviderYouTube  ProviderID = "youtube"
	ProviderVimeo    ProviderID = "vimeo"
	ProviderBilibili ProviderID = "bilibili"
)

// LocalUserID is the owner id of the unauthenticated, device-local scope.
const LocalUserID = "local"

// KnownProviders lists every provider id the gateway understands, in display order.
var KnownProviders = []ProviderID{ProviderYouTube, ProviderVimeo, ProviderBilibili}

// IsKnown reports whether p is one of KnownProviders.
func (p ProviderID) IsKnown() bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}

// WatchURL returns the canonical watch URL of a video on p.
func (p ProviderID) WatchURL(videoID string) string {
	switch p {
	case ProviderYouTube:
		return "https://youtube.com/watch?v=" + videoID
	case ProviderVimeo:
		return "https://vimeo.com/" + videoID
	case ProviderBilibili:
		return "https://www.bilibili.com/video/" + videoID
	default:
		return ""
	}
}

// PlaceholderThumbnail is used when a provider returns no thumbnail.
const PlaceholderThumbnail = "https://placehold.co/480x360?text=No+Thumbnail"

// CaptionTrack describes a caption stream advertised for a video.
type CaptionTrack struct {
	ID        string `json:"id"`
	Language  string `json:"language"`
	Name      string `json:"name"`
	TrackKind string `json:"trackKind"`
}

// VideoSummary is the normalized, provider-tagged video record.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type VideoSummary struct {
	ID            string         `json:"id" binding:"required,max=128"`
	Provider      ProviderID     `json:"provider" binding:"required"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	ChannelTitle  string         `json:"channelTitle"`
	Thumbnail     string         `json:"thumbnail"`
	PublishedAt   string         `json:"publishedAt"`
	ViewCount     string         `json:"viewCount"`
	Link          string         `json:"link"`
	Transcription string         `json:"transcription,omitempty"`
	CaptionTracks []CaptionTrack `json:"captionTracks,omitempty"`
	Saved         bool           `json:"saved,omitempty"`
}

// Key is the composite identity of a video inside one owner's collection.
type Key struct {
	ID       string
	Provider ProviderID
}

// Key returns the composite identity of v.
func (v VideoSummary) Key() Key {
	return Key{ID: v.ID, Provider: v.Provider}
}

// Transcription is the result of a transcription lookup. Degraded is set when
// the text is a placeholder produced after a failure.
type Transcription struct {
	Text     string         `json:"text"`
	Tracks   []CaptionTrack `json:"tracks,omitempty"`
	Degraded bool           `json:"-"`
}

// ExistsResponse answers an existence check.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// SavedVideoEventType names a change to a saved-video collection.
type SavedVideoEventType string

// SavedVideoEventType constants.
const (
	EventVideoSaved   SavedVideoEventType = "video.saved"
	EventVideoUpdated SavedVideoEventType = "video.updated"
	EventVideoRemoved SavedVideoEventType = "video.removed"
)

// SavedVideoEvent is published after a collection changes.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SavedVideoEvent struct {
	ID         uuid.UUID           `json:"id"`
	Type       SavedVideoEventType `json:"type"`
	OwnerID    string              `json:"ownerId"`
	VideoID    string              `json:"videoId"`
	Provider   ProviderID          `json:"provider"`
	Title      string              `json:"title,omitempty"`
	OccurredAt time.Time           `json:"occurredAt"`
}

// ErrorResponse represents an error response.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
