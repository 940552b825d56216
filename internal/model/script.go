// internal/model/script.go
package model

import "time"

// VideoScript is produced fresh per generation request and never mutated
// after creation. Any field may be empty after a best-effort parse; the
// fallback pools guarantee a fully populated script.
type VideoScript struct {
	Hook              string   `json:"hook"`
	Bullets           []string `json:"bullets"`
	Twist             string   `json:"twist"`
	CTA               string   `json:"cta"`
	Hashtags          []string `json:"hashtags"`
	Style             string   `json:"style"`
	EstimatedDuration int      `json:"estimated_duration"`
}

// MediaArtifact is the local render result before upload. Superseded, not
// merged, by a later regeneration.
type MediaArtifact struct {
	VideoPath string  `json:"video_path"`
	AudioPath string  `json:"audio_path,omitempty"`
	Duration  float64 `json:"duration"`
}

// ContentResult is what a finished content stage leaves on the campaign.
type ContentResult struct {
	Script      *VideoScript `json:"script"`
	VideoURL    string       `json:"video_url"`
	AudioURL    string       `json:"audio_url,omitempty"`
	Duration    float64      `json:"duration"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// PublishResult is the per-platform outcome of one publish attempt.
type PublishResult struct {
	Platform    string `json:"platform"`
	Status      string `json:"status"` // success, skipped, error
	PostID      string `json:"post_id,omitempty"`
	URL         string `json:"url,omitempty"`
	Error       string `json:"error,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

const (
	PublishSuccess = "success"
	PublishSkipped = "skipped"
	PublishError   = "error"
)
