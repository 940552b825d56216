package repository

import (
	"sort"
	"sync"
	"time"

	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
	"github.com/viralforge/campaign-launcher/internal/model"
)

// In-memory implementations backing tests and single-process development
// runs where Postgres is not available.

type InMemoryCampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[string]*model.Campaign
}

func NewInMemoryCampaignRepository() *InMemoryCampaignRepository {
	return &InMemoryCampaignRepository{campaigns: make(map[string]*model.Campaign)}
}

func (r *InMemoryCampaignRepository) Create(c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.StatusPending
	}
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *InMemoryCampaignRepository) GetByID(id string) (*model.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryCampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := []*model.Campaign{}
	for _, c := range r.campaigns {
		if status != "" && c.Status != status {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *InMemoryCampaignRepository) Update(c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	now := time.Now()
	c.UpdatedAt = &now
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *InMemoryCampaignRepository) UpdateStatus(campaignID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.Status = status
	now := time.Now()
	c.UpdatedAt = &now
	return nil
}

func (r *InMemoryCampaignRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[id]; !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	delete(r.campaigns, id)
	return nil
}

var _ CampaignRepositoryInterface = (*InMemoryCampaignRepository)(nil)

type InMemoryTaskRepository struct {
	mu         sync.RWMutex
	workflows  map[string]*model.WorkflowTask
	videoTasks map[string]*model.VideoTask
}

func NewInMemoryTaskRepository() *InMemoryTaskRepository {
	return &InMemoryTaskRepository{
		workflows:  make(map[string]*model.WorkflowTask),
		videoTasks: make(map[string]*model.VideoTask),
	}
}

func (r *InMemoryTaskRepository) CreateWorkflowTask(t *model.WorkflowTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = model.TaskProcessing
	}
	cp := *t
	r.workflows[t.ID] = &cp
	return nil
}

func (r *InMemoryTaskRepository) GetWorkflowTask(id string) (*model.WorkflowTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.workflows[id]
	if !ok {
		return nil, appErrors.NewTaskNotFound(id)
	}
	cp := *t
	return &cp, nil
}

func (r *InMemoryTaskRepository) UpdateWorkflowProgress(id string, progress int, step string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.workflows[id]
	if !ok {
		return appErrors.NewTaskNotFound(id)
	}
	t.Progress = progress
	t.Step = step
	t.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryTaskRepository) CompleteWorkflowTask(id, result string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.workflows[id]
	if !ok {
		return appErrors.NewTaskNotFound(id)
	}
	t.Status = model.TaskCompleted
	t.Progress = 100
	t.Result = result
	t.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryTaskRepository) FailWorkflowTask(id, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.workflows[id]
	if !ok {
		return appErrors.NewTaskNotFound(id)
	}
	t.Status = model.TaskFailed
	t.Error = errMsg
	t.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryTaskRepository) CreateVideoTask(t *model.VideoTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = model.TaskProcessing
	}
	cp := *t
	r.videoTasks[t.ID] = &cp
	return nil
}

func (r *InMemoryTaskRepository) GetVideoTask(id string) (*model.VideoTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.videoTasks[id]
	if !ok {
		return nil, appErrors.NewTaskNotFound(id)
	}
	cp := *t
	return &cp, nil
}

func (r *InMemoryTaskRepository) CompleteVideoTask(id, videoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.videoTasks[id]
	if !ok {
		return appErrors.NewTaskNotFound(id)
	}
	now := time.Now()
	t.Status = model.TaskCompleted
	t.VideoURL = videoURL
	t.CompletedAt = &now
	return nil
}

func (r *InMemoryTaskRepository) FailVideoTask(id, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.videoTasks[id]
	if !ok {
		return appErrors.NewTaskNotFound(id)
	}
	now := time.Now()
	t.Status = model.TaskFailed
	t.ErrorMessage = errMsg
	t.CompletedAt = &now
	return nil
}

var _ TaskRepositoryInterface = (*InMemoryTaskRepository)(nil)

type InMemoryEngagementRepository struct {
	mu    sync.RWMutex
	tasks map[string]*model.EngagementTask
}

func NewInMemoryEngagementRepository() *InMemoryEngagementRepository {
	return &InMemoryEngagementRepository{tasks: make(map[string]*model.EngagementTask)}
}

func (r *InMemoryEngagementRepository) Create(tasks []*model.EngagementTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tasks {
		t.CreatedAt = time.Now()
		cp := *t
		r.tasks[t.ID] = &cp
	}
	return nil
}

func (r *InMemoryEngagementRepository) ListDue(now time.Time, limit int) ([]*model.EngagementTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	due := []*model.EngagementTask{}
	for _, t := range r.tasks {
		if t.Executed || t.ScheduledTime.After(now) {
			continue
		}
		cp := *t
		due = append(due, &cp)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledTime.Before(due[j].ScheduledTime) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *InMemoryEngagementRepository) MarkExecuted(id, result string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return appErrors.NewTaskNotFound(id)
	}
	t.Executed = true
	t.Result = result
	return nil
}

func (r *InMemoryEngagementRepository) CountPending(campaignID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, t := range r.tasks {
		if t.CampaignID == campaignID && !t.Executed {
			count++
		}
	}
	return count, nil
}

var _ EngagementRepositoryInterface = (*InMemoryEngagementRepository)(nil)
