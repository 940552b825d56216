package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
	"github.com/viralforge/campaign-launcher/internal/model"
)

type TaskRepositoryInterface interface {
	// Workflow tasks
	CreateWorkflowTask(t *model.WorkflowTask) error
	GetWorkflowTask(id string) (*model.WorkflowTask, error)
	UpdateWorkflowProgress(id string, progress int, step string) error
	CompleteWorkflowTask(id, result string) error
	FailWorkflowTask(id, errMsg string) error

	// Video tasks
	CreateVideoTask(t *model.VideoTask) error
	GetVideoTask(id string) (*model.VideoTask, error)
	CompleteVideoTask(id, videoURL string) error
	FailVideoTask(id, errMsg string) error
}

type TaskRepository struct {
	DB *sql.DB
}

// ====================== Workflow tasks ======================

func (r *TaskRepository) CreateWorkflowTask(t *model.WorkflowTask) error {
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = model.TaskProcessing
	}
	query := `
        INSERT INTO workflow_tasks (id, campaign_id, status, progress, step, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.Exec(query, t.ID, t.CampaignID, t.Status, t.Progress, t.Step, t.CreatedAt)
	return err
}

func (r *TaskRepository) GetWorkflowTask(id string) (*model.WorkflowTask, error) {
	query := `
        SELECT id, campaign_id, status, progress, step, result, error, created_at, updated_at
        FROM workflow_tasks WHERE id=$1
    `
	var t model.WorkflowTask
	var result, errMsg sql.NullString
	err := r.DB.QueryRow(query, id).Scan(&t.ID, &t.CampaignID, &t.Status, &t.Progress, &t.Step, &result, &errMsg, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTaskNotFound(id)
		}
		return nil, err
	}
	t.Result = result.String
	t.Error = errMsg.String
	return &t, nil
}

func (r *TaskRepository) UpdateWorkflowProgress(id string, progress int, step string) error {
	query := `UPDATE workflow_tasks SET progress=$1, step=$2, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, progress, step, id)
	return err
}

func (r *TaskRepository) CompleteWorkflowTask(id, result string) error {
	query := `UPDATE workflow_tasks SET status=$1, progress=100, result=$2, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, model.TaskCompleted, result, id)
	return err
}

func (r *TaskRepository) FailWorkflowTask(id, errMsg string) error {
	query := `UPDATE workflow_tasks SET status=$1, error=$2, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, model.TaskFailed, errMsg, id)
	return err
}

// ====================== Video tasks ======================

func (r *TaskRepository) CreateVideoTask(t *model.VideoTask) error {
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = model.TaskProcessing
	}
	query := `
        INSERT INTO video_tasks (id, status, prompt, style, duration, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.Exec(query, t.ID, t.Status, t.Prompt, t.Style, t.Duration, t.CreatedAt)
	return err
}

func (r *TaskRepository) GetVideoTask(id string) (*model.VideoTask, error) {
	query := `
        SELECT id, status, prompt, style, duration, video_url, error_message, created_at, completed_at
        FROM video_tasks WHERE id=$1
    `
	var t model.VideoTask
	var videoURL, errMsg sql.NullString
	err := r.DB.QueryRow(query, id).Scan(&t.ID, &t.Status, &t.Prompt, &t.Style, &t.Duration, &videoURL, &errMsg, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewTaskNotFound(id)
		}
		return nil, err
	}
	t.VideoURL = videoURL.String
	t.ErrorMessage = errMsg.String
	return &t, nil
}

func (r *TaskRepository) CompleteVideoTask(id, videoURL string) error {
	query := `UPDATE video_tasks SET status=$1, video_url=$2, completed_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, model.TaskCompleted, videoURL, id)
	return err
}

func (r *TaskRepository) FailVideoTask(id, errMsg string) error {
	query := `UPDATE video_tasks SET status=$1, error_message=$2, completed_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, model.TaskFailed, errMsg, id)
	return err
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)
