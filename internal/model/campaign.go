// internal/model/campaign.go
package model

import "time"

// Campaign statuses. pending -> {scheduled|processing} -> {completed|failed},
// paused is reachable from processing only, archived is set by the cleanup job.
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusProcessing = "processing"
	StatusPaused     = "paused"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusArchived   = "archived"
)

const (
	PlatformTikTok    = "tiktok"
	PlatformInstagram = "instagram"
	PlatformYouTube   = "youtube"
)

const (
	ContentTypeProductReaction = "ai_product_reaction"
	ContentTypeMysteryLaunch   = "mystery_launch"
	ContentTypeAIVsHumanPoll   = "ai_vs_human_poll"
	ContentTypeDayInLife       = "day_in_life"
	ContentTypeMemeable        = "memeable_content"
)

// ContentTypes lists every supported content archetype.
var ContentTypes = []string{
	ContentTypeProductReaction,
	ContentTypeMysteryLaunch,
	ContentTypeAIVsHumanPoll,
	ContentTypeDayInLife,
	ContentTypeMemeable,
}

// Platforms lists every supported target platform.
var Platforms = []string{PlatformTikTok, PlatformInstagram, PlatformYouTube}

type VideoConfig struct {
	Style           string `json:"style"`
	VoiceLanguage   string `json:"voice_language"`
	Duration        int    `json:"duration"`
	Resolution      string `json:"resolution"`
	BackgroundMusic bool   `json:"background_music"`
}

type CampaignConfig struct {
	Name        string      `json:"name"`
	TemplateKey string      `json:"template_key"`
	Platforms   []string    `json:"platforms"`
	ContentType string      `json:"content_type"`
	Schedule    *string     `json:"schedule,omitempty"`
	DailyLimit  int         `json:"daily_limit"`
	Video       VideoConfig `json:"video_config"`
	Tags        []string    `json:"tags"`
}

// Campaign is the central aggregate. Mutated only by the orchestrator and
// its background jobs; PublishedURLs only ever gains entries.
type Campaign struct {
	ID               string            `db:"id" json:"id"`
	Config           CampaignConfig    `db:"config" json:"config"`
	Status           string            `db:"status" json:"status"`
	ErrorMessage     string            `db:"error_message" json:"error_message,omitempty"`
	GeneratedContent *ContentResult    `db:"generated_content" json:"generated_content,omitempty"`
	PublishedURLs    map[string]string `db:"published_urls" json:"published_urls"`
	Analytics        map[string]any    `db:"analytics" json:"analytics"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time        `db:"updated_at" json:"updated_at,omitempty"`
}

// IsTerminal reports whether no further automatic transition occurs.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusArchived
}

func ValidPlatform(p string) bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

func ValidContentType(ct string) bool {
	for _, known := range ContentTypes {
		if ct == known {
			return true
		}
	}
	return false
}
