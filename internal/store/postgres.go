package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/db"
	"github.com/bjjvault/video-gateway/internal/models"
)

// PostgresStore keeps one row per saved video. The primary key on
// (owner_id, provider, video_id) enforces uniqueness, so mutations need no
// application-level lock.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. Call db.EnsureSchema first.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) List(ctx context.Context, owner Owner) ([]models.VideoSummary, error) {
	query := `
		SELECT data FROM saved_videos
		WHERE owner_id = $1
		ORDER BY position
	`
	rows, err := s.pool.Query(ctx, query, owner.UserID)
	if err != nil {
		return nil, apperr.Storage("list saved videos", db.WrapError(err, "list saved videos"))
	}

	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, apperr.Storage("list saved videos", db.WrapError(err, "scan saved videos"))
	}

	videos := make([]models.VideoSummary, 0, len(docs))
	for _, doc := range docs {
		var video models.VideoSummary
		if err := json.Unmarshal(doc, &video); err != nil {
			return nil, apperr.Storage("decode saved videos", err)
		}
		videos = append(videos, video)
	}
	return videos, nil
}

func (s *PostgresStore) Add(ctx context.Context, owner Owner, video models.VideoSummary) (models.VideoSummary, error) {
	video.Saved = true
	doc, err := json.Marshal(video)
	if err != nil {
		return models.VideoSummary{}, apperr.Storage("encode saved video", err)
	}

	query := `
		INSERT INTO saved_videos (owner_id, provider, video_id, title, data)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, query, owner.UserID, string(video.Provider), video.ID, video.Title, doc); err != nil {
		err = db.WrapError(err, "insert saved video")
		if db.IsDuplicateKey(err) {
			return models.VideoSummary{}, errDuplicate()
		}
		return models.VideoSummary{}, apperr.Storage("save video", err)
	}
	return video, nil
}

func (s *PostgresStore) Get(ctx context.Context, owner Owner, key models.Key) (models.VideoSummary, error) {
	query := `
		SELECT data FROM saved_videos
		WHERE owner_id = $1 AND provider = $2 AND video_id = $3
	`
	var doc []byte
	if err := s.pool.QueryRow(ctx, query, owner.UserID, string(key.Provider), key.ID).Scan(&doc); err != nil {
		err = db.WrapError(err, "get saved video")
		if db.IsNotFound(err) {
			return models.VideoSummary{}, errNotSaved(key)
		}
		return models.VideoSummary{}, apperr.Storage("get saved video", err)
	}

	var video models.VideoSummary
	if err := json.Unmarshal(doc, &video); err != nil {
		return models.VideoSummary{}, apperr.Storage("decode saved video", err)
	}
	return video, nil
}

// Update rewrites the row's payload. position is untouched, so the video keeps
// its place in List.
func (s *PostgresStore) Update(ctx context.Context, owner Owner, video models.VideoSummary) (models.VideoSummary, error) {
	video.Saved = true
	doc, err := json.Marshal(video)
	if err != nil {
		return models.VideoSummary{}, apperr.Storage("encode saved video", err)
	}

	query := `
		UPDATE saved_videos
		SET title = $4, data = $5
		WHERE owner_id = $1 AND provider = $2 AND video_id = $3
	`
	tag, err := s.pool.Exec(ctx, query, owner.UserID, string(video.Provider), video.ID, video.Title, doc)
	if err != nil {
		return models.VideoSummary{}, apperr.Storage("update video", db.WrapError(err, "update saved video"))
	}
	if tag.RowsAffected() == 0 {
		return models.VideoSummary{}, errNotSaved(video.Key())
	}
	return video, nil
}

func (s *PostgresStore) Remove(ctx context.Context, owner Owner, key models.Key) error {
	query := `
		DELETE FROM saved_videos
		WHERE owner_id = $1 AND provider = $2 AND video_id = $3
	`
	tag, err := s.pool.Exec(ctx, query, owner.UserID, string(key.Provider), key.ID)
	if err != nil {
		return apperr.Storage("remove video", db.WrapError(err, "delete saved video"))
	}
	if tag.RowsAffected() == 0 {
		return errNotSaved(key)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, owner Owner, key models.Key) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM saved_videos
			WHERE owner_id = $1 AND provider = $2 AND video_id = $3
		)
	`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, owner.UserID, string(key.Provider), key.ID).Scan(&exists); err != nil {
		return false, apperr.Storage("check saved video", db.WrapError(err, "check saved video"))
	}
	return exists, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return apperr.Storage("ping database", err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	db.Close(s.pool)
	return nil
}
