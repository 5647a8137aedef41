//go:build integration
// +build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjjvault/video-gateway/internal/db/testutil"
	"github.com/bjjvault/video-gateway/internal/models"
)

func TestPostgresStore_Contract(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	runStoreContract(t, func(t *testing.T) Store {
		td.TruncateTables(t)
		return NewPostgresStore(td.Pool)
	})
}

func TestPostgresStore_KeepsFullDocument(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	s := NewPostgresStore(td.Pool)
	ctx := context.Background()
	owner := Owner{UserID: "user1"}

	video := testVideo("abc", models.ProviderYouTube)
	video.ChannelTitle = "Gracie"
	video.ViewCount = "1,234"
	video.CaptionTracks = []models.CaptionTrack{{ID: "t1", Language: "en", Name: "English", TrackKind: "standard"}}

	_, err := s.Add(ctx, owner, video)
	require.NoError(t, err)

	videos, err := s.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, videos, 1)

	video.Saved = true
	assert.Equal(t, video, videos[0])

	var title string
	err = td.Pool.QueryRow(ctx, `SELECT title FROM saved_videos WHERE owner_id = $1`, "user1").Scan(&title)
	require.NoError(t, err)
	assert.Equal(t, "Video abc", title)
}

func TestPostgresStore_OrderSurvivesRemoveAndReAdd(t *testing.T) {
	td := testutil.SetupTestDatabase(t)
	defer td.Cleanup(t)

	s := NewPostgresStore(td.Pool)
	ctx := context.Background()
	owner := Owner{UserID: "user1"}

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Add(ctx, owner, testVideo(id, models.ProviderYouTube))
		require.NoError(t, err)
	}
	require.NoError(t, s.Remove(ctx, owner, models.Key{ID: "a", Provider: models.ProviderYouTube}))
	_, err := s.Add(ctx, owner, testVideo("a", models.ProviderYouTube))
	require.NoError(t, err)

	videos, err := s.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{videos[0].ID, videos[1].ID, videos[2].ID})
}
