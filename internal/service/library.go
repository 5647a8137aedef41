package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/metrics"
	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/internal/store"
	"github.com/bjjvault/video-gateway/internal/validation"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

const publishTimeout = 5 * time.Second

// EventPublisher receives collection changes. *events.Publisher implements it.
type EventPublisher interface {
	Publish(ctx context.Context, event models.SavedVideoEvent) error
}

// SavedVideoService validates requests against a store and announces
// successful mutations.
type SavedVideoService struct {
	store     store.Store
	validator *validation.Validator
	publisher EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewSavedVideoService creates the service. publisher and m may be nil.
func NewSavedVideoService(st store.Store, validator *validation.Validator, publisher EventPublisher, m *metrics.Metrics) *SavedVideoService {
	return &SavedVideoService{
		store:     st,
		validator: validator,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// AccountOwner resolves a user id taken from a request. The device-local
// scope is not addressable this way.
func (s *SavedVideoService) AccountOwner(userID string) (store.Owner, error) {
	if err := s.validator.UserID(userID); err != nil {
		return store.Owner{}, err
	}
	return store.Owner{UserID: userID}, nil
}

func (s *SavedVideoService) List(ctx context.Context, owner store.Owner) ([]models.VideoSummary, error) {
	if err := s.validator.OwnerID(owner.UserID); err != nil {
		return nil, err
	}
	return s.store.List(ctx, owner)
}

func (s *SavedVideoService) Get(ctx context.Context, owner store.Owner, key models.Key) (models.VideoSummary, error) {
	if err := s.validator.OwnerID(owner.UserID); err != nil {
		return models.VideoSummary{}, err
	}
	if err := s.validator.VideoKey(&key); err != nil {
		return models.VideoSummary{}, err
	}
	return s.store.Get(ctx, owner, key)
}

// Save stores video for owner. The link is always derived from id and
// provider; thumbnail and view count get their defaults when blank.
func (s *SavedVideoService) Save(ctx context.Context, owner store.Owner, video models.VideoSummary) (models.VideoSummary, error) {
	if err := s.prepare(owner, &video); err != nil {
		return models.VideoSummary{}, err
	}

	saved, err := s.store.Add(ctx, owner, video)
	s.metrics.ObserveMutation("add", err)
	if err != nil {
		return models.VideoSummary{}, err
	}

	logger.Log.Info("Video saved",
		zap.Stringer("owner", owner),
		zap.String("provider", string(saved.Provider)),
		zap.String("videoId", saved.ID),
	)

	s.publish(ctx, models.EventVideoSaved, owner, saved.Key(), saved.Title)
	return saved, nil
}

// Update replaces an already saved video, typically to attach a
// transcription or caption tracks. The video keeps its place in the list.
func (s *SavedVideoService) Update(ctx context.Context, owner store.Owner, video models.VideoSummary) (models.VideoSummary, error) {
	if err := s.prepare(owner, &video); err != nil {
		return models.VideoSummary{}, err
	}

	updated, err := s.store.Update(ctx, owner, video)
	s.metrics.ObserveMutation("update", err)
	if err != nil {
		return models.VideoSummary{}, err
	}

	logger.Log.Info("Saved video updated",
		zap.Stringer("owner", owner),
		zap.String("provider", string(updated.Provider)),
		zap.String("videoId", updated.ID),
		zap.Bool("transcription", updated.Transcription != ""),
		zap.Int("captionTracks", len(updated.CaptionTracks)),
	)

	s.publish(ctx, models.EventVideoUpdated, owner, updated.Key(), updated.Title)
	return updated, nil
}

func (s *SavedVideoService) Remove(ctx context.Context, owner store.Owner, key models.Key) error {
	if err := s.validator.OwnerID(owner.UserID); err != nil {
		return err
	}
	if err := s.validator.VideoKey(&key); err != nil {
		return err
	}

	err := s.store.Remove(ctx, owner, key)
	s.metrics.ObserveMutation("remove", err)
	if err != nil {
		return err
	}

	logger.Log.Info("Video removed",
		zap.Stringer("owner", owner),
		zap.String("provider", string(key.Provider)),
		zap.String("videoId", key.ID),
	)

	s.publish(ctx, models.EventVideoRemoved, owner, key, "")
	return nil
}

func (s *SavedVideoService) Exists(ctx context.Context, owner store.Owner, key models.Key) (bool, error) {
	if err := s.validator.OwnerID(owner.UserID); err != nil {
		return false, err
	}
	if err := s.validator.VideoKey(&key); err != nil {
		return false, err
	}
	return s.store.Exists(ctx, owner, key)
}

// prepare validates a video for storage and fills derived fields.
func (s *SavedVideoService) prepare(owner store.Owner, video *models.VideoSummary) error {
	if err := s.validator.OwnerID(owner.UserID); err != nil {
		return err
	}
	if err := s.validator.Video(video); err != nil {
		return err
	}

	video.Link = video.Provider.WatchURL(video.ID)
	if video.Thumbnail == "" {
		video.Thumbnail = models.PlaceholderThumbnail
	}
	if video.ViewCount == "" {
		video.ViewCount = "0"
	}
	return nil
}

// Ping reports store health.
func (s *SavedVideoService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// publish runs after the mutation is durable, so failures are only logged.
func (s *SavedVideoService) publish(ctx context.Context, eventType models.SavedVideoEventType, owner store.Owner, key models.Key, title string) {
	if s.publisher == nil {
		return
	}

	event := models.SavedVideoEvent{
		ID:         uuid.New(),
		Type:       eventType,
		OwnerID:    owner.UserID,
		VideoID:    key.ID,
		Provider:   key.Provider,
		Title:      title,
		OccurredAt: s.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Log.Warn("Failed to publish saved video event",
			zap.Error(err),
			zap.String("eventId", event.ID.String()),
			zap.String("type", string(eventType)),
		)
	}
}
