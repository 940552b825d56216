// internal/service/orchestrator.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viralforge/campaign-launcher/internal/analytics"
	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
	"github.com/viralforge/campaign-launcher/internal/model"
	"github.com/viralforge/campaign-launcher/internal/queue"
	"github.com/viralforge/campaign-launcher/internal/repository"
	"github.com/viralforge/campaign-launcher/internal/social"
	"github.com/viralforge/campaign-launcher/internal/storage"
	"github.com/viralforge/campaign-launcher/internal/templates"
)

// ScriptGenerator produces a video script for a template and archetype.
// Implemented by content.Generator.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, template *model.CampaignTemplate, contentType, topic string) (*model.VideoScript, error)
}

// MediaRenderer turns a script into a local video file, honoring the
// campaign's per-video settings when given. Implemented by video.Renderer.
type MediaRenderer interface {
	Render(ctx context.Context, script *model.VideoScript, opts *model.VideoConfig, backgroundImages []string) (*model.MediaArtifact, error)
}

// CampaignService orchestrates the full campaign lifecycle: validation,
// script generation, rendering, upload, publishing and engagement
// scheduling. The HTTP layer enqueues; the worker calls RunWorkflow.
type CampaignService struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	TaskRepo       repository.TaskRepositoryInterface
	EngagementRepo repository.EngagementRepositoryInterface
	Catalog        *templates.Catalog
	Generator      ScriptGenerator
	Renderer       MediaRenderer
	Store          storage.ObjectStore
	Publisher      social.Publisher
	Analytics      *analytics.Service
	Queue          queue.Queue
}

// Result struct for CreateCampaign
type CreateCampaignResult struct {
	CampaignID string    `json:"campaign_id"`
	TaskID     string    `json:"task_id,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Engagement delays after a successful publish.
const (
	likeDelay  = 30 * time.Minute
	replyDelay = 2 * time.Hour
	shareDelay = 4 * time.Hour
)

// ====================== Lifecycle ======================

func (s *CampaignService) CreateCampaign(cfg model.CampaignConfig) (*CreateCampaignResult, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, appErrors.NewValidation("campaign name is required")
	}
	if len(cfg.Platforms) == 0 {
		return nil, appErrors.NewValidation("at least one platform is required")
	}
	for _, p := range cfg.Platforms {
		if !model.ValidPlatform(p) {
			return nil, appErrors.NewValidation("unknown platform: %s", p)
		}
	}
	if cfg.ContentType != "" && !model.ValidContentType(cfg.ContentType) {
		return nil, appErrors.NewValidation("unknown content type: %s", cfg.ContentType)
	}
	if cfg.TemplateKey != "" {
		if _, err := s.Catalog.GetByKey(cfg.TemplateKey); err != nil {
			return nil, appErrors.NewValidation("unknown template: %s", cfg.TemplateKey)
		}
	}
	if cfg.ContentType == "" {
		cfg.ContentType = model.ContentTypeProductReaction
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = 1
	}

	c := &model.Campaign{
		ID:     uuid.New().String(),
		Config: cfg,
		Status: model.StatusPending,
	}

	// A parseable future schedule defers the run; everything else (including
	// cron expressions, which the promotion sweep does not evaluate) stays
	// scheduled until started explicitly.
	startNow := true
	if cfg.Schedule != nil && strings.TrimSpace(*cfg.Schedule) != "" {
		if at, err := time.Parse(time.RFC3339, *cfg.Schedule); err == nil {
			if at.After(time.Now()) {
				c.Status = model.StatusScheduled
				startNow = false
			}
		} else {
			log.Printf("⚠️ Schedule %q is not RFC3339, treating as cron and leaving campaign scheduled", *cfg.Schedule)
			c.Status = model.StatusScheduled
			startNow = false
		}
	}

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}

	result := &CreateCampaignResult{
		CampaignID: c.ID,
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
	}

	if startNow {
		task, err := s.enqueueWorkflow(c.ID)
		if err != nil {
			return nil, err
		}
		result.TaskID = task.ID
		result.Status = model.StatusProcessing
	}

	return result, nil
}

// enqueueWorkflow creates a tracking task, flips the campaign to processing
// and hands the job to the queue.
func (s *CampaignService) enqueueWorkflow(campaignID string) (*model.WorkflowTask, error) {
	task := &model.WorkflowTask{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		Status:     model.TaskProcessing,
		Step:       "queued",
	}
	if err := s.TaskRepo.CreateWorkflowTask(task); err != nil {
		return nil, err
	}
	if err := s.CampaignRepo.UpdateStatus(campaignID, model.StatusProcessing); err != nil {
		return nil, err
	}
	job := queue.WorkflowJob{CampaignID: campaignID, TaskID: task.ID}
	if err := s.Queue.Publish(queue.TopicCampaignWorkflows, job); err != nil {
		return nil, err
	}
	log.Println("🚀 Queued workflow for campaign", campaignID)
	return task, nil
}

// StartCampaign re-runs the content workflow. Allowed from any state except
// processing; previously published URLs are kept and only gain entries.
func (s *CampaignService) StartCampaign(id string) (*model.WorkflowTask, error) {
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c.Status == model.StatusProcessing {
		return nil, appErrors.NewValidation("campaign %s is already processing", id)
	}
	return s.enqueueWorkflow(c.ID)
}

// StopCampaign pauses a processing campaign. Pausing gates future engagement
// and scheduling only; an in-flight workflow stage is not interrupted.
func (s *CampaignService) StopCampaign(id string) error {
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if c.Status != model.StatusProcessing {
		return appErrors.NewValidation("campaign %s cannot be stopped in status: %s", id, c.Status)
	}
	return s.CampaignRepo.UpdateStatus(id, model.StatusPaused)
}

func (s *CampaignService) GetCampaign(id string) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(id)
}

func (s *CampaignService) DeleteCampaign(id string) error {
	return s.CampaignRepo.Delete(id)
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetTask(id string) (*model.WorkflowTask, error) {
	return s.TaskRepo.GetWorkflowTask(id)
}

// ====================== Workflow ======================

// RunWorkflow executes the full stage sequence for one campaign. Called by
// the worker for every WorkflowJob.
func (s *CampaignService) RunWorkflow(ctx context.Context, campaignID, taskID string) error {
	c, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return s.failWorkflow(campaignID, taskID, err)
	}

	s.progress(taskID, 10, "resolving template")
	template, err := s.resolveTemplate(c)
	if err != nil {
		return s.failWorkflow(campaignID, taskID, err)
	}

	s.progress(taskID, 30, "generating script")
	script, err := s.Generator.GenerateScript(ctx, template, c.Config.ContentType, c.Config.Name)
	if err != nil {
		return s.failWorkflow(campaignID, taskID, err)
	}
	if d := c.Config.Video.Duration; d > 0 {
		script.EstimatedDuration = d
	}

	s.progress(taskID, 60, "rendering video")
	artifact, err := s.Renderer.Render(ctx, script, &c.Config.Video, nil)
	if err != nil {
		return s.failWorkflow(campaignID, taskID, err)
	}

	s.progress(taskID, 80, "uploading artifacts")
	content := &model.ContentResult{
		Script:      script,
		Duration:    artifact.Duration,
		GeneratedAt: time.Now(),
	}
	videoURL, err := s.Store.Upload(ctx, artifact.VideoPath, fmt.Sprintf("campaigns/%s/video.mp4", c.ID))
	if err != nil {
		return s.failWorkflow(campaignID, taskID, err)
	}
	content.VideoURL = videoURL
	if artifact.AudioPath != "" {
		audioURL, err := s.Store.Upload(ctx, artifact.AudioPath, fmt.Sprintf("campaigns/%s/audio.mp3", c.ID))
		if err != nil {
			log.Println("⚠️ audio upload failed, continuing without narration track:", err)
		} else {
			content.AudioURL = audioURL
		}
	}
	c.GeneratedContent = content

	s.progress(taskID, 90, "publishing")
	results := s.publishAll(ctx, c, script, videoURL)

	c.Status = model.StatusCompleted
	c.ErrorMessage = ""
	if err := s.CampaignRepo.Update(c); err != nil {
		return s.failWorkflow(campaignID, taskID, err)
	}

	published := 0
	for _, res := range results {
		if res.Status == model.PublishSuccess {
			published++
		}
	}
	summary, _ := json.Marshal(map[string]any{
		"campaign_id":     c.ID,
		"video_url":       videoURL,
		"script":          script,
		"published_count": published,
		"publishing":      results,
	})
	if err := s.TaskRepo.CompleteWorkflowTask(taskID, string(summary)); err != nil {
		return err
	}
	log.Println("✅ Workflow completed for campaign", campaignID)
	return nil
}

func (s *CampaignService) resolveTemplate(c *model.Campaign) (*model.CampaignTemplate, error) {
	if c.Config.TemplateKey != "" {
		return s.Catalog.GetByKey(c.Config.TemplateKey)
	}
	// No template configured, improvise one from the campaign itself.
	return &model.CampaignTemplate{
		Key:          "custom",
		Display:      c.Config.Name,
		StylePrimary: c.Config.Video.Style,
		Keywords:     c.Config.Tags,
	}, nil
}

// publishAll posts to every configured platform, merges new URLs without
// dropping earlier ones, and schedules engagement for each success. Platform
// failures are recorded, never fatal.
func (s *CampaignService) publishAll(ctx context.Context, c *model.Campaign, script *model.VideoScript, videoURL string) []model.PublishResult {
	caption := script.Hook
	if len(script.Hashtags) > 0 {
		caption = caption + "\n\n" + strings.Join(script.Hashtags, " ")
	}

	if c.PublishedURLs == nil {
		c.PublishedURLs = map[string]string{}
	}

	results := make([]model.PublishResult, 0, len(c.Config.Platforms))
	for _, platform := range c.Config.Platforms {
		res := s.Publisher.Publish(ctx, platform, social.DecorateCaption(platform, caption), videoURL)
		results = append(results, res)
		if res.Status != model.PublishSuccess {
			if res.Status == model.PublishError {
				log.Printf("⚠️ Publish to %s failed: %s", platform, res.Error)
			}
			continue
		}
		c.PublishedURLs[platform] = res.URL
		if err := s.scheduleEngagement(c.ID, platform, res.PostID); err != nil {
			log.Println("⚠️ failed to schedule engagement for", platform, ":", err)
		}
	}
	return results
}

// scheduleEngagement queues the staggered like/reply/share follow-ups for
// one published post.
func (s *CampaignService) scheduleEngagement(campaignID, platform, postID string) error {
	now := time.Now()
	tasks := []*model.EngagementTask{
		{ID: uuid.New().String(), CampaignID: campaignID, Platform: platform, PostID: postID, TaskType: model.EngagementLike, ScheduledTime: now.Add(likeDelay)},
		{ID: uuid.New().String(), CampaignID: campaignID, Platform: platform, PostID: postID, TaskType: model.EngagementReply, ScheduledTime: now.Add(replyDelay)},
		{ID: uuid.New().String(), CampaignID: campaignID, Platform: platform, PostID: postID, TaskType: model.EngagementShare, ScheduledTime: now.Add(shareDelay)},
	}
	return s.EngagementRepo.Create(tasks)
}

func (s *CampaignService) progress(taskID string, pct int, step string) {
	if err := s.TaskRepo.UpdateWorkflowProgress(taskID, pct, step); err != nil {
		log.Println("⚠️ failed to update task progress:", err)
	}
}

func (s *CampaignService) failWorkflow(campaignID, taskID string, cause error) error {
	log.Printf("⚠️ Workflow failed for campaign %s: %v", campaignID, cause)
	if err := s.TaskRepo.FailWorkflowTask(taskID, cause.Error()); err != nil {
		log.Println("⚠️ failed to mark task failed:", err)
	}
	c, err := s.CampaignRepo.GetByID(campaignID)
	if err == nil {
		c.Status = model.StatusFailed
		c.ErrorMessage = cause.Error()
		if err := s.CampaignRepo.Update(c); err != nil {
			log.Println("⚠️ failed to mark campaign failed:", err)
		}
	}
	return cause
}

// StartSubscribers wires the queue topics to the workflow and video runners.
// Used by the worker process, and by the server when it falls back to the
// in-process queue.
func (s *CampaignService) StartSubscribers(ctx context.Context, q queue.Queue) error {
	err := q.Subscribe(queue.TopicCampaignWorkflows, func(body []byte) error {
		var job queue.WorkflowJob
		if err := json.Unmarshal(body, &job); err != nil {
			log.Println("⚠️ dropping malformed workflow job:", err)
			return nil
		}
		// A workflow failure is already recorded as the campaign's
		// terminal failed state; the only retry path is an explicit
		// start request, so the delivery is always acked.
		if err := s.RunWorkflow(ctx, job.CampaignID, job.TaskID); err != nil {
			log.Println("⚠️ workflow job finished with error:", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return q.Subscribe(queue.TopicVideoJobs, func(body []byte) error {
		var job queue.VideoJob
		if err := json.Unmarshal(body, &job); err != nil {
			log.Println("⚠️ dropping malformed video job:", err)
			return nil
		}
		if err := s.RunVideoJob(ctx, job); err != nil {
			log.Println("⚠️ video job finished with error:", err)
		}
		return nil
	})
}

// ====================== Analytics ======================

// CampaignAnalytics simulates per-platform metrics for a campaign's posts
// and persists the aggregate on first computation.
func (s *CampaignService) CampaignAnalytics(id string) (map[string]any, error) {
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	metrics := s.Analytics.ForCampaign(c)
	c.Analytics = metrics
	if err := s.CampaignRepo.Update(c); err != nil {
		log.Println("⚠️ failed to persist analytics snapshot:", err)
	}
	return metrics, nil
}

// ====================== Video-only jobs ======================

// GenerateVideo queues a direct video render without a campaign.
func (s *CampaignService) GenerateVideo(prompt, style string, duration int) (*model.VideoTask, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, appErrors.NewValidation("prompt is required")
	}
	if duration <= 0 {
		duration = 30
	}
	task := &model.VideoTask{
		ID:       uuid.New().String(),
		Status:   model.TaskProcessing,
		Prompt:   prompt,
		Style:    style,
		Duration: duration,
	}
	if err := s.TaskRepo.CreateVideoTask(task); err != nil {
		return nil, err
	}
	job := queue.VideoJob{TaskID: task.ID, Prompt: prompt, Style: style, Duration: duration}
	if err := s.Queue.Publish(queue.TopicVideoJobs, job); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *CampaignService) GetVideoTask(id string) (*model.VideoTask, error) {
	return s.TaskRepo.GetVideoTask(id)
}

// RunVideoJob renders and uploads one standalone video. Called by the worker
// for every VideoJob.
func (s *CampaignService) RunVideoJob(ctx context.Context, job queue.VideoJob) error {
	script := &model.VideoScript{
		Hook:              job.Prompt,
		Style:             job.Style,
		EstimatedDuration: job.Duration,
	}
	artifact, err := s.Renderer.Render(ctx, script, nil, nil)
	if err != nil {
		if ferr := s.TaskRepo.FailVideoTask(job.TaskID, err.Error()); ferr != nil {
			log.Println("⚠️ failed to mark video task failed:", ferr)
		}
		return err
	}
	videoURL, err := s.Store.Upload(ctx, artifact.VideoPath, fmt.Sprintf("videos/%s.mp4", job.TaskID))
	if err != nil {
		if ferr := s.TaskRepo.FailVideoTask(job.TaskID, err.Error()); ferr != nil {
			log.Println("⚠️ failed to mark video task failed:", ferr)
		}
		return err
	}
	return s.TaskRepo.CompleteVideoTask(job.TaskID, videoURL)
}
