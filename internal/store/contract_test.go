package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/models"
)

// runStoreContract exercises the behavior every backend shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("list on unknown owner is empty", func(t *testing.T) {
		s := newStore(t)
		videos, err := s.List(context.Background(), Owner{UserID: "nobody"})
		require.NoError(t, err)
		assert.NotNil(t, videos)
		assert.Empty(t, videos)
	})

	t.Run("exists on unknown owner is false", func(t *testing.T) {
		s := newStore(t)
		exists, err := s.Exists(context.Background(), Owner{UserID: "nobody"},
			models.Key{ID: "abc", Provider: models.ProviderYouTube})
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("add then list keeps order and stamps saved", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		first, err := s.Add(ctx, owner, testVideo("b", models.ProviderYouTube))
		require.NoError(t, err)
		assert.True(t, first.Saved)
		_, err = s.Add(ctx, owner, testVideo("a", models.ProviderVimeo))
		require.NoError(t, err)
		_, err = s.Add(ctx, owner, testVideo("c", models.ProviderBilibili))
		require.NoError(t, err)

		videos, err := s.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, videos, 3)
		assert.Equal(t, []string{"b", "a", "c"}, []string{videos[0].ID, videos[1].ID, videos[2].ID})
		for _, v := range videos {
			assert.True(t, v.Saved)
		}
		assert.Equal(t, "Video b", videos[0].Title)
		assert.Equal(t, "https://vimeo.com/a", videos[1].Link)
	})

	t.Run("duplicate key conflicts and leaves collection unchanged", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		_, err := s.Add(ctx, owner, testVideo("abc", models.ProviderYouTube))
		require.NoError(t, err)

		dup := testVideo("abc", models.ProviderYouTube)
		dup.Title = "Other title"
		_, err = s.Add(ctx, owner, dup)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindConflict))

		videos, err := s.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, videos, 1)
		assert.Equal(t, "Video abc", videos[0].Title)
	})

	t.Run("same id on different providers are distinct", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		_, err := s.Add(ctx, owner, testVideo("123", models.ProviderYouTube))
		require.NoError(t, err)
		_, err = s.Add(ctx, owner, testVideo("123", models.ProviderVimeo))
		require.NoError(t, err)

		videos, err := s.List(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, videos, 2)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Add(ctx, Owner{UserID: "user1"}, testVideo("abc", models.ProviderYouTube))
		require.NoError(t, err)
		_, err = s.Add(ctx, LocalOwner(), testVideo("abc", models.ProviderYouTube))
		require.NoError(t, err)

		videos, err := s.List(ctx, Owner{UserID: "user2"})
		require.NoError(t, err)
		assert.Empty(t, videos)

		local, err := s.List(ctx, LocalOwner())
		require.NoError(t, err)
		assert.Len(t, local, 1)
	})

	t.Run("remove deletes exactly one entry", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		for _, id := range []string{"a", "b", "c"} {
			_, err := s.Add(ctx, owner, testVideo(id, models.ProviderYouTube))
			require.NoError(t, err)
		}

		key := models.Key{ID: "b", Provider: models.ProviderYouTube}
		require.NoError(t, s.Remove(ctx, owner, key))

		exists, err := s.Exists(ctx, owner, key)
		require.NoError(t, err)
		assert.False(t, exists)

		videos, err := s.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, videos, 2)
		assert.Equal(t, "a", videos[0].ID)
		assert.Equal(t, "c", videos[1].ID)
	})

	t.Run("remove missing is not found", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		err := s.Remove(ctx, owner, models.Key{ID: "abc", Provider: models.ProviderYouTube})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		_, err = s.Add(ctx, owner, testVideo("abc", models.ProviderYouTube))
		require.NoError(t, err)
		err = s.Remove(ctx, owner, models.Key{ID: "abc", Provider: models.ProviderVimeo})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("exists after add", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		_, err := s.Add(ctx, owner, testVideo("abc", models.ProviderYouTube))
		require.NoError(t, err)

		exists, err := s.Exists(ctx, owner, models.Key{ID: "abc", Provider: models.ProviderYouTube})
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("get returns the saved copy", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		_, err := s.Add(ctx, owner, testVideo("abc", models.ProviderYouTube))
		require.NoError(t, err)

		got, err := s.Get(ctx, owner, models.Key{ID: "abc", Provider: models.ProviderYouTube})
		require.NoError(t, err)
		assert.Equal(t, "Video abc", got.Title)
		assert.True(t, got.Saved)

		_, err = s.Get(ctx, owner, models.Key{ID: "abc", Provider: models.ProviderVimeo})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
		_, err = s.Get(ctx, Owner{UserID: "nobody"}, models.Key{ID: "abc", Provider: models.ProviderYouTube})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("update attaches transcription in place", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		for _, id := range []string{"a", "b", "c"} {
			_, err := s.Add(ctx, owner, testVideo(id, models.ProviderYouTube))
			require.NoError(t, err)
		}

		changed := testVideo("b", models.ProviderYouTube)
		changed.Transcription = "Transcription for: Video b"
		changed.CaptionTracks = []models.CaptionTrack{{ID: "t1", Language: "en", Name: "EN", TrackKind: "standard"}}
		updated, err := s.Update(ctx, owner, changed)
		require.NoError(t, err)
		assert.True(t, updated.Saved)

		got, err := s.Get(ctx, owner, changed.Key())
		require.NoError(t, err)
		assert.Equal(t, "Transcription for: Video b", got.Transcription)
		require.Len(t, got.CaptionTracks, 1)
		assert.Equal(t, "t1", got.CaptionTracks[0].ID)

		videos, err := s.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, videos, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{videos[0].ID, videos[1].ID, videos[2].ID})
		assert.Equal(t, "Transcription for: Video b", videos[1].Transcription)
	})

	t.Run("update missing is not found and stores nothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		owner := Owner{UserID: "user1"}

		_, err := s.Update(ctx, owner, testVideo("abc", models.ProviderYouTube))
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		videos, err := s.List(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, videos)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}
