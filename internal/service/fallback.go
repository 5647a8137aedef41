package service

import (
	"fmt"

	"github.com/bjjvault/video-gateway/internal/models"
)

type fallbackTemplate struct {
	id           string
	title        string
	description  string
	thumbnail    string
	publishedAt  string
	viewCount    string
	channelTitle string
}

var fallbackTemplates = []fallbackTemplate{
	{
		id:           "bjj123",
		title:        "%s Fundamentals for Beginners",
		description:  "Learn the essential techniques that every BJJ practitioner should know.",
		thumbnail:    "https://i.ytimg.com/vi/sample1/maxresdefault.jpg",
		publishedAt:  "2023-06-15T14:30:00Z",
		viewCount:    "245,678",
		channelTitle: "BJJ Fanatics",
	},
	{
		id:           "bjj456",
		title:        "Advanced %s Techniques",
		description:  "Take your skills to the next level with these advanced techniques.",
		thumbnail:    "https://i.ytimg.com/vi/sample2/maxresdefault.jpg",
		publishedAt:  "2023-08-22T10:15:00Z",
		viewCount:    "123,456",
		channelTitle: "GracieBJJ",
	},
	{
		id:           "bjj789",
		title:        "%s Competition Highlights 2023",
		description:  "Watch the best moments from this year's competitions.",
		thumbnail:    "https://i.ytimg.com/vi/sample3/maxresdefault.jpg",
		publishedAt:  "2023-11-05T17:45:00Z",
		viewCount:    "89,012",
		channelTitle: "IBJJF Official",
	},
}

// fallbackResults builds the fixed placeholder result set for query.
func fallbackResults(query string) []models.VideoSummary {
	videos := make([]models.VideoSummary, 0, len(fallbackTemplates))
	for _, tpl := range fallbackTemplates {
		videos = append(videos, models.VideoSummary{
			ID:           tpl.id,
			Provider:     models.ProviderYouTube,
			Title:        fmt.Sprintf(tpl.title, query),
			Description:  tpl.description,
			ChannelTitle: tpl.channelTitle,
			Thumbnail:    tpl.thumbnail,
			PublishedAt:  tpl.publishedAt,
			ViewCount:    tpl.viewCount,
			Link:         models.ProviderYouTube.WatchURL(tpl.id),
		})
	}
	return videos
}
