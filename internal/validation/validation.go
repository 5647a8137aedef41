// Package validation checks identifiers and payloads before they reach the
// gateway or a store.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/models"
)

const (
	defaultMaxQueryLength = 200
	maxTitleLength        = 500
)

var (
	userIDRegex  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
)

type Validator struct {
	maxQueryLength int
}

// New creates a Validator. A non-positive maxQueryLength uses the default.
func New(maxQueryLength int) *Validator {
	if maxQueryLength <= 0 {
		maxQueryLength = defaultMaxQueryLength
	}
	return &Validator{maxQueryLength: maxQueryLength}
}

// Query trims q and rejects empty or oversized queries.
func (v *Validator) Query(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", apperr.InvalidRequest("Search query is required")
	}
	if utf8.RuneCountInString(q) > v.maxQueryLength {
		return "", apperr.InvalidRequest("Search query exceeds %d characters", v.maxQueryLength)
	}
	return q, nil
}

// Provider parses a provider selector. An empty selector means YouTube.
func (v *Validator) Provider(selector string) (models.ProviderID, error) {
	if strings.TrimSpace(selector) == "" {
		return models.ProviderYouTube, nil
	}
	return v.explicitProvider(selector)
}

// explicitProvider parses a selector that must name a provider.
func (v *Validator) explicitProvider(selector string) (models.ProviderID, error) {
	provider := models.ProviderID(strings.ToLower(strings.TrimSpace(selector)))
	if !provider.IsKnown() {
		return "", apperr.InvalidRequest("Unsupported provider: %s", provider)
	}
	return provider, nil
}

// OwnerID checks the charset of any collection scope, the device-local one
// included.
func (v *Validator) OwnerID(ownerID string) error {
	if !userIDRegex.MatchString(ownerID) {
		return apperr.InvalidRequest("Invalid user id: %q", ownerID)
	}
	return nil
}

// UserID checks an account id taken from a request. The device-local scope id
// is reserved and cannot be addressed as an account.
func (v *Validator) UserID(userID string) error {
	if err := v.OwnerID(userID); err != nil {
		return err
	}
	if userID == models.LocalUserID {
		return apperr.InvalidRequest("User id %q is reserved", userID)
	}
	return nil
}

func (v *Validator) VideoID(videoID string) error {
	if videoID == "" {
		return apperr.InvalidRequest("Video ID is required")
	}
	if !videoIDRegex.MatchString(videoID) {
		return apperr.InvalidRequest("Invalid video id: %q", videoID)
	}
	return nil
}

// VideoKey validates a (video id, provider) pair and normalizes its provider
// the way Provider does. Unlike Provider, the provider must be given.
func (v *Validator) VideoKey(key *models.Key) error {
	if err := v.VideoID(key.ID); err != nil {
		return err
	}
	provider, err := v.explicitProvider(string(key.Provider))
	if err != nil {
		return err
	}
	key.Provider = provider
	return nil
}

// Video validates a summary submitted for saving and normalizes its provider.
func (v *Validator) Video(video *models.VideoSummary) error {
	key := video.Key()
	if err := v.VideoKey(&key); err != nil {
		return err
	}
	video.Provider = key.Provider
	if utf8.RuneCountInString(video.Title) > maxTitleLength {
		return apperr.InvalidRequest("Title exceeds %d characters", maxTitleLength)
	}
	return nil
}
