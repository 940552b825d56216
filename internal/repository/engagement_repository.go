package repository

import (
	"database/sql"
	"time"

	"github.com/viralforge/campaign-launcher/internal/model"
)

type EngagementRepositoryInterface interface {
	Create(tasks []*model.EngagementTask) error
	ListDue(now time.Time, limit int) ([]*model.EngagementTask, error)
	MarkExecuted(id, result string) error
	CountPending(campaignID string) (int, error)
}

type EngagementRepository struct {
	DB *sql.DB
}

func (r *EngagementRepository) Create(tasks []*model.EngagementTask) error {
	query := `
        INSERT INTO engagement_tasks (id, campaign_id, platform, post_id, task_type, executed, scheduled_time, created_at)
        VALUES ($1, $2, $3, $4, $5, false, $6, $7)
    `
	for _, t := range tasks {
		t.CreatedAt = time.Now()
		if _, err := r.DB.Exec(query, t.ID, t.CampaignID, t.Platform, t.PostID, t.TaskType, t.ScheduledTime, t.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// ListDue returns unexecuted tasks whose scheduled time has passed, oldest
// first, capped at limit per sweep.
func (r *EngagementRepository) ListDue(now time.Time, limit int) ([]*model.EngagementTask, error) {
	query := `
        SELECT id, campaign_id, platform, post_id, task_type, executed, scheduled_time, result, created_at
        FROM engagement_tasks
        WHERE executed=false AND scheduled_time<=$1
        ORDER BY scheduled_time ASC
        LIMIT $2
    `
	rows, err := r.DB.Query(query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*model.EngagementTask{}
	for rows.Next() {
		t := &model.EngagementTask{}
		var result sql.NullString
		if err := rows.Scan(&t.ID, &t.CampaignID, &t.Platform, &t.PostID, &t.TaskType, &t.Executed, &t.ScheduledTime, &result, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Result = result.String
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *EngagementRepository) MarkExecuted(id, result string) error {
	query := `UPDATE engagement_tasks SET executed=true, result=$1 WHERE id=$2`
	_, err := r.DB.Exec(query, result, id)
	return err
}

func (r *EngagementRepository) CountPending(campaignID string) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM engagement_tasks WHERE campaign_id=$1 AND executed=false`, campaignID).Scan(&count)
	return count, err
}

var _ EngagementRepositoryInterface = (*EngagementRepository)(nil)
