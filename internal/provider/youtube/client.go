// Package youtube implements the YouTube provider on the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/metrics"
	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/internal/service/quota"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

const (
	// idSeparator joins video ids for the videos.list call.
	idSeparator = ","

	defaultMaxResults     = 10
	defaultRequestTimeout = 10 * time.Second
)

// Options tune the client.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Options struct {
	// Topic is appended to every query to bias results toward the niche.
	Topic          string
	MaxResults     int64
	RequestTimeout time.Duration
}

// Client wraps the YouTube Data API v3 service.
type Client struct {
	service *youtube.Service
	opts    Options
	quota   *quota.Manager
	metrics *metrics.Metrics
	printer *message.Printer
}

// NewService creates the Data API service authenticated with apiKey. A
// non-empty endpoint overrides the API base URL.
func NewService(ctx context.Context, apiKey, endpoint string) (*youtube.Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return service, nil
}

// NewClient creates a YouTube provider. quotaManager and m may be nil.
func NewClient(service *youtube.Service, opts Options, quotaManager *quota.Manager, m *metrics.Metrics) *Client {
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	return &Client{
		service: service,
		opts:    opts,
		quota:   quotaManager,
		metrics: m,
		printer: message.NewPrinter(language.English),
	}
}

// ID implements provider.Provider.
func (c *Client) ID() models.ProviderID {
	return models.ProviderYouTube
}

// Search runs search.list for the topic-qualified query and joins view counts
// from a second videos.list call.
func (c *Client) Search(ctx context.Context, query string) ([]models.VideoSummary, error) {
	if c.quota.IsExhausted() {
		logger.Log.Warn("YouTube quota exhausted, skipping search",
			zap.Int("used", c.quota.Info().Used),
		)
		return nil, apperr.Upstream("YouTube API daily quota exhausted", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	searchQuery := strings.TrimSpace(query + " " + c.opts.Topic)

	response, err := c.service.Search.List([]string{"snippet"}).
		Q(searchQuery).
		MaxResults(c.opts.MaxResults).
		Type("video").
		Context(ctx).
		Do()
	c.record("search.list", quota.CostSearchList, err)
	if err != nil {
		return nil, upstreamError(err, "YouTube API request failed")
	}

	results := make([]*youtube.SearchResult, 0, len(response.Items))
	ids := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		results = append(results, item)
		ids = append(ids, item.Id.VideoId)
	}

	if len(ids) == 0 {
		return []models.VideoSummary{}, nil
	}

	viewCounts, err := c.fetchViewCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	videos := make([]models.VideoSummary, 0, len(results))
	for _, item := range results {
		videoID := item.Id.VideoId
		viewCount, ok := viewCounts[videoID]
		if !ok {
			viewCount = "0"
		}
		videos = append(videos, c.mapSearchResult(item, viewCount))
	}

	logger.Log.Debug("YouTube search completed",
		zap.String("query", searchQuery),
		zap.Int("results", len(videos)),
	)

	return videos, nil
}

// fetchViewCounts returns formatted view counts keyed by video id.
func (c *Client) fetchViewCounts(ctx context.Context, ids []string) (map[string]string, error) {
	response, err := c.service.Videos.List([]string{"statistics", "snippet"}).
		Id(strings.Join(ids, idSeparator)).
		Context(ctx).
		Do()
	c.record("videos.list", quota.CostVideosList, err)
	if err != nil {
		return nil, upstreamError(err, "Failed to fetch video statistics")
	}

	counts := make(map[string]string, len(response.Items))
	for _, item := range response.Items {
		if item.Statistics == nil {
			continue
		}
		if _, seen := counts[item.Id]; seen {
			continue
		}
		counts[item.Id] = c.formatCount(item.Statistics.ViewCount)
	}
	return counts, nil
}

// mapSearchResult converts a search hit to the normalized summary.
func (c *Client) mapSearchResult(item *youtube.SearchResult, viewCount string) models.VideoSummary {
	videoID := item.Id.VideoId
	video := models.VideoSummary{
		ID:        videoID,
		Provider:  models.ProviderYouTube,
		Thumbnail: models.PlaceholderThumbnail,
		ViewCount: viewCount,
		Link:      models.ProviderYouTube.WatchURL(videoID),
	}

	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Description = item.Snippet.Description
		video.ChannelTitle = item.Snippet.ChannelTitle
		video.PublishedAt = item.Snippet.PublishedAt
		if thumb := thumbnailURL(item.Snippet.Thumbnails); thumb != "" {
			video.Thumbnail = thumb
		}
	}

	return video
}

// thumbnailURL prefers the high resolution thumbnail.
func thumbnailURL(details *youtube.ThumbnailDetails) string {
	if details == nil {
		return ""
	}
	if details.High != nil && details.High.Url != "" {
		return details.High.Url
	}
	if details.Default != nil && details.Default.Url != "" {
		return details.Default.Url
	}
	return ""
}

func (c *Client) formatCount(n uint64) string {
	return c.printer.Sprintf("%d", n)
}

func (c *Client) record(operation string, cost int, err error) {
	c.quota.Record(cost, operation)
	c.metrics.ObserveUpstream(string(models.ProviderYouTube), operation, err)
}

// upstreamError keeps the API-reported message when there is one.
func upstreamError(err error, fallback string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apperr.Upstream(apiErr.Message, err)
	}
	return apperr.Upstream(fallback, err)
}
