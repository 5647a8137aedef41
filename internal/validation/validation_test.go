package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/models"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		maxQueryLength int
		want           int
	}{
		{name: "explicit limit", maxQueryLength: 50, want: 50},
		{name: "zero uses default", maxQueryLength: 0, want: defaultMaxQueryLength},
		{name: "negative uses default", maxQueryLength: -1, want: defaultMaxQueryLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(tt.maxQueryLength)
			require.NotNil(t, v)
			assert.Equal(t, tt.want, v.maxQueryLength)
		})
	}
}

func TestValidator_Query(t *testing.T) {
	v := New(20)

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{name: "plain", query: "armbar", want: "armbar"},
		{name: "trimmed", query: "  triangle choke \t", want: "triangle choke"},
		{name: "empty", query: "", wantErr: true},
		{name: "whitespace only", query: "   \n", wantErr: true},
		{name: "too long", query: strings.Repeat("a", 21), wantErr: true},
		{name: "limit counts runes", query: strings.Repeat("é", 20), want: strings.Repeat("é", 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Query(tt.query)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidator_Provider(t *testing.T) {
	v := New(0)

	tests := []struct {
		selector string
		want     models.ProviderID
		wantErr  bool
	}{
		{selector: "", want: models.ProviderYouTube},
		{selector: "youtube", want: models.ProviderYouTube},
		{selector: "Vimeo", want: models.ProviderVimeo},
		{selector: " bilibili ", want: models.ProviderBilibili},
		{selector: "dailymotion", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, err := v.Provider(tt.selector)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
				assert.Contains(t, err.Error(), "dailymotion")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidator_UserID(t *testing.T) {
	v := New(0)

	valid := []string{"user1", "a", "user_name-42", "localuser", strings.Repeat("x", 128)}
	for _, id := range valid {
		assert.NoError(t, v.UserID(id), id)
		assert.NoError(t, v.OwnerID(id), id)
	}

	invalid := []string{"", "../etc", "user/1", "user 1", "user.json", strings.Repeat("x", 129)}
	for _, id := range invalid {
		err := v.UserID(id)
		require.Error(t, err, id)
		assert.True(t, apperr.Is(err, apperr.KindInvalidRequest), id)
		assert.Error(t, v.OwnerID(id), id)
	}
}

func TestValidator_UserID_ReservesLocalScope(t *testing.T) {
	v := New(0)

	err := v.UserID(models.LocalUserID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
	assert.Contains(t, err.Error(), "reserved")

	assert.NoError(t, v.OwnerID(models.LocalUserID))
}

func TestValidator_VideoKey(t *testing.T) {
	v := New(0)

	tests := []struct {
		name    string
		key     models.Key
		want    models.ProviderID
		wantErr bool
	}{
		{name: "youtube", key: models.Key{ID: "dQw4w9WgXcQ", Provider: "youtube"}, want: models.ProviderYouTube},
		{name: "vimeo", key: models.Key{ID: "76979871", Provider: "vimeo"}, want: models.ProviderVimeo},
		{name: "bilibili", key: models.Key{ID: "BV1xx411c7mD", Provider: "bilibili"}, want: models.ProviderBilibili},
		{name: "mixed case provider", key: models.Key{ID: "v1", Provider: "YouTube"}, want: models.ProviderYouTube},
		{name: "padded provider", key: models.Key{ID: "v1", Provider: " Vimeo "}, want: models.ProviderVimeo},
		{name: "empty id", key: models.Key{ID: "", Provider: "youtube"}, wantErr: true},
		{name: "path escape", key: models.Key{ID: "../../x", Provider: "youtube"}, wantErr: true},
		{name: "space in id", key: models.Key{ID: "has space", Provider: "youtube"}, wantErr: true},
		{name: "missing provider", key: models.Key{ID: "abc", Provider: ""}, wantErr: true},
		{name: "unknown provider", key: models.Key{ID: "abc", Provider: "tiktok"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := tt.key
			err := v.VideoKey(&key)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key.Provider)
		})
	}
}

func TestValidator_Video(t *testing.T) {
	v := New(0)

	video := &models.VideoSummary{ID: "abc123", Provider: "YOUTUBE", Title: "Kimura"}
	require.NoError(t, v.Video(video))
	assert.Equal(t, models.ProviderYouTube, video.Provider)

	video.Title = strings.Repeat("t", maxTitleLength+1)
	err := v.Video(video)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
}
