// Package store persists per-owner collections of saved videos.
package store

import (
	"context"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/models"
)

// Owner scopes a collection. Every store call names its owner explicitly.
type Owner struct {
	UserID string
}

// LocalOwner is the unauthenticated, device-local scope. It never merges with
// an account scope.
func LocalOwner() Owner {
	return Owner{UserID: models.LocalUserID}
}

func (o Owner) String() string {
	return o.UserID
}

// Store is implemented by every saved-video backend.
type Store interface {
	// List returns the collection in storage order. An owner without a
	// collection gets an empty slice.
	List(ctx context.Context, owner Owner) ([]models.VideoSummary, error)
	// Add appends video stamped saved=true and returns the stored copy. A
	// video with the same key fails with a Conflict error.
	Add(ctx context.Context, owner Owner, video models.VideoSummary) (models.VideoSummary, error)
	// Get returns the saved video with key or fails with a NotFound error.
	Get(ctx context.Context, owner Owner, key models.Key) (models.VideoSummary, error)
	// Update replaces the saved video with the same key in place, keeping its
	// position, and returns the stored copy. A missing video fails with a
	// NotFound error.
	Update(ctx context.Context, owner Owner, video models.VideoSummary) (models.VideoSummary, error)
	// Remove deletes the video with key or fails with a NotFound error.
	Remove(ctx context.Context, owner Owner, key models.Key) error
	// Exists reports whether key is saved. Missing storage is not an error.
	Exists(ctx context.Context, owner Owner, key models.Key) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

func errDuplicate() error {
	return apperr.Conflict("This video is already saved.")
}

func errNotSaved(key models.Key) error {
	return apperr.NotFound("Video %s/%s not found in saved list", key.Provider, key.ID)
}

func indexOf(videos []models.VideoSummary, key models.Key) int {
	for i, v := range videos {
		if v.Key() == key {
			return i
		}
	}
	return -1
}

// appendVideo is the document-backend add: it checks the key and returns the
// new collection with the stamped copy at the end.
func appendVideo(videos []models.VideoSummary, video models.VideoSummary) ([]models.VideoSummary, models.VideoSummary, error) {
	if indexOf(videos, video.Key()) >= 0 {
		return nil, models.VideoSummary{}, errDuplicate()
	}
	video.Saved = true
	return append(videos, video), video, nil
}

func findVideo(videos []models.VideoSummary, key models.Key) (models.VideoSummary, error) {
	i := indexOf(videos, key)
	if i < 0 {
		return models.VideoSummary{}, errNotSaved(key)
	}
	return videos[i], nil
}

// replaceVideo returns a copy of videos with the entry for video's key
// swapped for the stamped video.
func replaceVideo(videos []models.VideoSummary, video models.VideoSummary) ([]models.VideoSummary, models.VideoSummary, error) {
	i := indexOf(videos, video.Key())
	if i < 0 {
		return nil, models.VideoSummary{}, errNotSaved(video.Key())
	}
	video.Saved = true
	next := make([]models.VideoSummary, len(videos))
	copy(next, videos)
	next[i] = video
	return next, video, nil
}

func removeVideo(videos []models.VideoSummary, key models.Key) ([]models.VideoSummary, error) {
	i := indexOf(videos, key)
	if i < 0 {
		return nil, errNotSaved(key)
	}
	return append(videos[:i:i], videos[i+1:]...), nil
}
