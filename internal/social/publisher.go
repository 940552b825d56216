// internal/social/publisher.go
package social

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viralforge/campaign-launcher/internal/config"
	"github.com/viralforge/campaign-launcher/internal/model"
)

// Publisher posts finished artifacts to the target platforms. Posting is
// simulated: with credentials configured a mock post id and canonical URL
// are returned, without them the platform is skipped before any network
// attempt is made.
type Publisher interface {
	Publish(ctx context.Context, platform, caption, mediaURL string) model.PublishResult
	Engage(ctx context.Context, platform, postID, taskType string) (string, error)
}

type PlatformPublisher struct {
	settings config.Settings
}

func NewPublisher(settings config.Settings) *PlatformPublisher {
	return &PlatformPublisher{settings: settings}
}

func (p *PlatformPublisher) configured(platform string) bool {
	switch platform {
	case model.PlatformTikTok:
		return p.settings.TikTokClientKey != ""
	case model.PlatformInstagram:
		return p.settings.InstagramClientID != ""
	case model.PlatformYouTube:
		return p.settings.YouTubeClientID != ""
	}
	return false
}

func (p *PlatformPublisher) Publish(ctx context.Context, platform, caption, mediaURL string) model.PublishResult {
	if !model.ValidPlatform(platform) {
		return model.PublishResult{
			Platform: platform,
			Status:   model.PublishError,
			Error:    fmt.Sprintf("unknown platform: %s", platform),
		}
	}

	if !p.configured(platform) {
		return model.PublishResult{
			Platform: platform,
			Status:   model.PublishSkipped,
			Error:    fmt.Sprintf("%s API not configured", platform),
		}
	}

	if mediaURL == "" {
		return model.PublishResult{
			Platform: platform,
			Status:   model.PublishError,
			Error:    "no video available",
		}
	}

	// Real platform API calls would go here. A single attempt, no retry:
	// the orchestrator decides what a non-success result means.
	postID := strings.ReplaceAll(uuid.New().String(), "-", "")[:16]

	return model.PublishResult{
		Platform:    platform,
		Status:      model.PublishSuccess,
		PostID:      postID,
		URL:         postURL(platform, postID),
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func postURL(platform, postID string) string {
	switch platform {
	case model.PlatformTikTok:
		return fmt.Sprintf("https://tiktok.com/@user/video/%s", postID)
	case model.PlatformInstagram:
		return fmt.Sprintf("https://instagram.com/p/%s", postID)
	case model.PlatformYouTube:
		return fmt.Sprintf("https://youtube.com/watch?v=%s", postID)
	}
	return ""
}

// Engage performs one post-publish action (reply/like/share). A single
// attempt; a failed action is recorded by the caller and never retried.
func (p *PlatformPublisher) Engage(ctx context.Context, platform, postID, taskType string) (string, error) {
	if !p.configured(platform) {
		return "", fmt.Errorf("%s API not configured", platform)
	}

	switch taskType {
	case model.EngagementReply, model.EngagementLike, model.EngagementShare:
		return fmt.Sprintf("%s on %s post %s handled", taskType, platform, postID), nil
	}
	return "", fmt.Errorf("unknown engagement type: %s", taskType)
}

// DecorateCaption applies the platform-specific caption dressing used when
// publishing the same content everywhere.
func DecorateCaption(platform, caption string) string {
	switch platform {
	case model.PlatformTikTok:
		return fmt.Sprintf("🔥 %s #バイラル #TikTok #AI", caption)
	case model.PlatformInstagram:
		return fmt.Sprintf("✨ %s\n\n📱 フォローしてね！", caption)
	case model.PlatformYouTube:
		return fmt.Sprintf("🎬 %s\n\nチャンネル登録お願いします！", caption)
	}
	return caption
}

var _ Publisher = (*PlatformPublisher)(nil)
