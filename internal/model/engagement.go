// internal/model/engagement.go
package model

import "time"

const (
	EngagementReply = "reply"
	EngagementLike  = "like"
	EngagementShare = "share"
)

// EngagementTask is a scheduled post-publish action against one platform
// post. Executed is monotonic: once true the queue processor never selects
// the task again.
type EngagementTask struct {
	ID            string    `db:"id" json:"id"`
	CampaignID    string    `db:"campaign_id" json:"campaign_id"`
	Platform      string    `db:"platform" json:"platform"`
	PostID        string    `db:"post_id" json:"post_id"`
	TaskType      string    `db:"task_type" json:"task_type"`
	Executed      bool      `db:"executed" json:"executed"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduled_time"`
	Result        string    `db:"result" json:"result,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
