package youtube

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/youtube/v3"

	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/internal/service/quota"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

const (
	tracksAvailableText = "Transcription is available for this video. Select a track below:"
	notAvailableText    = "Transcription is not available for this video."

	// PlaceholderText is returned whenever the lookup fails.
	PlaceholderText = "This is a sample transcription for the requested video. In a real app, this would be fetched from YouTube's API or a transcription service. For Brazilian Jiu-Jitsu videos, this transcription would contain detailed explanations of techniques, positions, and strategies."

	descriptionLines = 5
)

const synthesizedTemplate = `Transcription for: {{title}}

Introduction:
Welcome to this Brazilian Jiu-Jitsu technique video. Today we're going to break down this important technique step by step.

Main Content:
{{description}}

Technique Breakdown:
1. Start with proper positioning
2. Control your opponent's posture and movements
3. Focus on your hip placement and leverage
4. Execute the technique with proper timing
5. Follow through to secure the position or submission

Additional Tips:
- Practice this technique regularly with a training partner
- Pay attention to the small details that make this effective
- Incorporate this into your rolling sessions gradually

I hope you found this demonstration helpful for your BJJ journey. Remember to train safely!`

// Transcription lists the caption tracks of videoID. Without tracks it
// synthesizes instructional text from the video's title and description.
// This text is generic and does not reflect what is said in the video.
func (c *Client) Transcription(ctx context.Context, videoID string) models.Transcription {
	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	captions, err := c.service.Captions.List([]string{"snippet"}, videoID).Context(ctx).Do()
	c.record("captions.list", quota.CostCaptionsList, err)
	if err != nil {
		logger.Log.Warn("Failed to fetch captions data",
			zap.Error(err),
			zap.String("videoId", videoID),
		)
		return placeholder()
	}

	if len(captions.Items) > 0 {
		return models.Transcription{
			Text:   tracksAvailableText,
			Tracks: mapCaptionTracks(captions.Items),
		}
	}

	videos, err := c.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	c.record("videos.list", quota.CostVideosList, err)
	if err != nil {
		logger.Log.Warn("Failed to fetch video details",
			zap.Error(err),
			zap.String("videoId", videoID),
		)
		return placeholder()
	}

	if len(videos.Items) == 0 || videos.Items[0].Snippet == nil {
		return models.Transcription{Text: notAvailableText}
	}

	snippet := videos.Items[0].Snippet
	return models.Transcription{Text: synthesizeTranscript(snippet.Title, snippet.Description)}
}

func placeholder() models.Transcription {
	return models.Transcription{Text: PlaceholderText, Degraded: true}
}

func mapCaptionTracks(items []*youtube.Caption) []models.CaptionTrack {
	tracks := make([]models.CaptionTrack, 0, len(items))
	for _, item := range items {
		track := models.CaptionTrack{ID: item.Id}
		if item.Snippet != nil {
			track.Language = item.Snippet.Language
			track.Name = item.Snippet.Name
			track.TrackKind = item.Snippet.TrackKind
		}
		if track.Name == "" {
			track.Name = strings.ToUpper(track.Language)
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// synthesizeTranscript fills the template with the title and the first lines
// of the description.
func synthesizeTranscript(title, description string) string {
	lines := strings.Split(description, "\n")
	if len(lines) > descriptionLines {
		lines = lines[:descriptionLines]
	}

	text := strings.NewReplacer(
		"{{title}}", title,
		"{{description}}", strings.Join(lines, "\n"),
	).Replace(synthesizedTemplate)

	return strings.TrimSpace(text)
}
