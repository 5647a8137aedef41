package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the saved_videos table. position keeps insertion order.
const Schema = `
CREATE TABLE IF NOT EXISTS saved_videos (
	owner_id   VARCHAR(128) NOT NULL,
	provider   VARCHAR(32)  NOT NULL,
	video_id   VARCHAR(128) NOT NULL,
	title      TEXT         NOT NULL DEFAULT '',
	data       JSONB        NOT NULL,
	position   BIGINT GENERATED ALWAYS AS IDENTITY,
	saved_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	PRIMARY KEY (owner_id, provider, video_id)
);

CREATE INDEX IF NOT EXISTS idx_saved_videos_owner_position
	ON saved_videos (owner_id, position);
`

// EnsureSchema applies Schema. It is safe to run on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// DropSchema removes everything Schema creates.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS saved_videos`); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}
