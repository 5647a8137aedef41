package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

const (
	redisKeyPrefix = "saved_videos:"
	maxCASRetries  = 10
)

var errContention = errors.New("collection changed concurrently too many times")

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps each owner's collection as one JSON document. Mutations
// use WATCH/MULTI so concurrent writers retry instead of overwriting.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redisURL (redis:// or rediss://) and pings it.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreFromClient(client), nil
}

func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(owner Owner) string {
	return redisKeyPrefix + owner.UserID
}

func (s *RedisStore) List(ctx context.Context, owner Owner) ([]models.VideoSummary, error) {
	return s.read(ctx, s.client, s.key(owner))
}

func (s *RedisStore) Add(ctx context.Context, owner Owner, video models.VideoSummary) (models.VideoSummary, error) {
	var saved models.VideoSummary
	err := s.update(ctx, owner, func(videos []models.VideoSummary) ([]models.VideoSummary, error) {
		next, stamped, err := appendVideo(videos, video)
		saved = stamped
		return next, err
	})
	if err != nil {
		return models.VideoSummary{}, err
	}
	return saved, nil
}

func (s *RedisStore) Get(ctx context.Context, owner Owner, key models.Key) (models.VideoSummary, error) {
	videos, err := s.read(ctx, s.client, s.key(owner))
	if err != nil {
		return models.VideoSummary{}, err
	}
	return findVideo(videos, key)
}

func (s *RedisStore) Update(ctx context.Context, owner Owner, video models.VideoSummary) (models.VideoSummary, error) {
	var updated models.VideoSummary
	err := s.update(ctx, owner, func(videos []models.VideoSummary) ([]models.VideoSummary, error) {
		next, stamped, err := replaceVideo(videos, video)
		updated = stamped
		return next, err
	})
	if err != nil {
		return models.VideoSummary{}, err
	}
	return updated, nil
}

func (s *RedisStore) Remove(ctx context.Context, owner Owner, key models.Key) error {
	return s.update(ctx, owner, func(videos []models.VideoSummary) ([]models.VideoSummary, error) {
		return removeVideo(videos, key)
	})
}

func (s *RedisStore) Exists(ctx context.Context, owner Owner, key models.Key) (bool, error) {
	videos, err := s.read(ctx, s.client, s.key(owner))
	if err != nil {
		return false, err
	}
	return indexOf(videos, key) >= 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperr.Storage("ping redis", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// update applies fn to the current collection inside an optimistic
// transaction, retrying when another writer touched the key.
func (s *RedisStore) update(ctx context.Context, owner Owner, fn func([]models.VideoSummary) ([]models.VideoSummary, error)) error {
	key := s.key(owner)

	txf := func(tx *redis.Tx) error {
		videos, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(videos)
		if err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return apperr.Storage("encode saved videos", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxCASRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			logger.Log.Debug("Saved videos changed concurrently, retrying",
				zap.String("owner", owner.UserID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if err == nil {
			return nil
		}
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Storage("update saved videos", err)
	}
	return apperr.Storage("update saved videos", errContention)
}

// read loads the document through c, which is the client or a watching tx.
func (s *RedisStore) read(ctx context.Context, c getter, key string) ([]models.VideoSummary, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.VideoSummary{}, nil
	}
	if err != nil {
		return nil, apperr.Storage("read saved videos", err)
	}

	var videos []models.VideoSummary
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, apperr.Storage("decode saved videos", err)
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}
	return videos, nil
}
