// internal/model/task.go
package model

import "time"

// Task statuses, shared by workflow and video tasks.
const (
	TaskPending    = "pending"
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskFailed     = "failed"
)

// WorkflowTask tracks one workflow run for the /tasks/{id} endpoint. The
// worker writes progress rows, the API polls them.
type WorkflowTask struct {
	ID         string    `db:"id" json:"task_id"`
	CampaignID string    `db:"campaign_id" json:"campaign_id"`
	Status     string    `db:"status" json:"status"` // pending, processing, completed, failed
	Progress   int       `db:"progress" json:"progress"`
	Step       string    `db:"step" json:"step"`
	Result     string    `db:"result" json:"-"` // raw JSON, decoded by the handler
	Error      string    `db:"error" json:"error,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// VideoTask tracks a direct /video/generate job.
type VideoTask struct {
	ID           string     `db:"id" json:"id"`
	Status       string     `db:"status" json:"status"` // pending, processing, completed, failed
	Prompt       string     `db:"prompt" json:"prompt"`
	Style        string     `db:"style" json:"style"`
	Duration     int        `db:"duration" json:"duration"`
	VideoURL     string     `db:"video_url" json:"video_url,omitempty"`
	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
