// internal/service/scheduler.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
	"github.com/viralforge/campaign-launcher/internal/model"
)

// Default retention windows for the maintenance sweeps.
const (
	defaultVideoRetention = 7 * 24 * time.Hour
	tempRetention         = 1 * time.Hour
	defaultArchiveAfter   = 30 * 24 * time.Hour
	engagementBatch       = 10
	maintenanceEvery      = 1 * time.Hour
	engagementEvery       = 1 * time.Minute
)

// Scheduler runs the periodic jobs: engagement execution, scheduled-campaign
// promotion, video cleanup and campaign archival. Each sweep is safe to run
// from a single worker process.
type Scheduler struct {
	Campaigns      *CampaignService
	VideoDir       string
	TempDir        string
	VideoRetention time.Duration
	ArchiveAfter   time.Duration
}

func NewScheduler(campaigns *CampaignService, videoDir, tempDir string) *Scheduler {
	return &Scheduler{
		Campaigns:      campaigns,
		VideoDir:       videoDir,
		TempDir:        tempDir,
		VideoRetention: defaultVideoRetention,
		ArchiveAfter:   defaultArchiveAfter,
	}
}

// Start launches the ticker loops and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	engagement := time.NewTicker(engagementEvery)
	maintenance := time.NewTicker(maintenanceEvery)
	defer engagement.Stop()
	defer maintenance.Stop()

	log.Println("🚀 Scheduler started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case now := <-engagement.C:
			s.ProcessEngagement(ctx, now)
			s.PromoteScheduled(now)
		case now := <-maintenance.C:
			s.CleanupVideos(now)
			s.ArchiveOldCampaigns(now)
			s.ReportStorage(ctx)
		}
	}
}

// ProcessEngagement executes due engagement tasks, a bounded batch per
// sweep. Tasks belonging to paused campaigns stay pending and fire on the
// first sweep after a resume; tasks of deleted campaigns are retired.
func (s *Scheduler) ProcessEngagement(ctx context.Context, now time.Time) {
	due, err := s.Campaigns.EngagementRepo.ListDue(now, engagementBatch)
	if err != nil {
		log.Println("⚠️ failed to list due engagement tasks:", err)
		return
	}

	for _, task := range due {
		c, err := s.Campaigns.CampaignRepo.GetByID(task.CampaignID)
		if err != nil {
			var notFound *appErrors.ErrCampaignNotFound
			if errors.As(err, &notFound) {
				s.markExecuted(task.ID, "campaign deleted")
				continue
			}
			log.Println("⚠️ failed to load campaign for engagement task:", err)
			continue
		}
		if c.Status == model.StatusPaused {
			// Deferred, not retired. Due tasks of a long-paused campaign
			// keep occupying batch slots until a resume or archival.
			continue
		}

		result, err := s.Campaigns.Publisher.Engage(ctx, task.Platform, task.PostID, task.TaskType)
		if err != nil {
			s.markExecuted(task.ID, "error: "+err.Error())
			continue
		}
		s.markExecuted(task.ID, result)
	}
}

func (s *Scheduler) markExecuted(id, result string) {
	if err := s.Campaigns.EngagementRepo.MarkExecuted(id, result); err != nil {
		log.Println("⚠️ failed to mark engagement task executed:", err)
	}
}

// PromoteScheduled starts campaigns whose RFC3339 schedule has arrived.
// Promotion fires once; cron-style schedules are left alone.
func (s *Scheduler) PromoteScheduled(now time.Time) {
	scheduled, _, err := s.Campaigns.CampaignRepo.ListCampaigns(0, 100, model.StatusScheduled)
	if err != nil {
		log.Println("⚠️ failed to list scheduled campaigns:", err)
		return
	}

	for _, c := range scheduled {
		if c.Config.Schedule == nil {
			continue
		}
		at, err := time.Parse(time.RFC3339, *c.Config.Schedule)
		if err != nil {
			// Cron expression; out of scope for the sweep.
			continue
		}
		if at.After(now) {
			continue
		}
		if _, err := s.Campaigns.enqueueWorkflow(c.ID); err != nil {
			log.Println("⚠️ failed to promote scheduled campaign", c.ID, ":", err)
			continue
		}
		log.Println("🚀 Promoted scheduled campaign", c.ID)
	}
}

// CleanupVideos removes rendered videos older than the retention window and
// stale temp files.
func (s *Scheduler) CleanupVideos(now time.Time) {
	removed := s.removeOlderThan(s.VideoDir, now.Add(-s.VideoRetention))
	removed += s.removeOlderThan(s.TempDir, now.Add(-tempRetention))
	if removed > 0 {
		log.Printf("✅ Cleanup removed %d stale files", removed)
	}
}

func (s *Scheduler) removeOlderThan(dir string, cutoff time.Time) int {
	if dir == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			log.Println("⚠️ failed to remove stale file:", err)
			continue
		}
		removed++
	}
	return removed
}

// ArchiveOldCampaigns flips completed and failed campaigns past the archive
// window to archived. The row is kept.
func (s *Scheduler) ArchiveOldCampaigns(now time.Time) {
	cutoff := now.Add(-s.ArchiveAfter)
	for _, status := range []string{model.StatusCompleted, model.StatusFailed} {
		finished, _, err := s.Campaigns.CampaignRepo.ListCampaigns(0, 100, status)
		if err != nil {
			log.Printf("⚠️ failed to list %s campaigns: %v", status, err)
			continue
		}
		for _, c := range finished {
			ref := c.CreatedAt
			if c.UpdatedAt != nil {
				ref = *c.UpdatedAt
			}
			if ref.After(cutoff) {
				continue
			}
			if err := s.Campaigns.CampaignRepo.UpdateStatus(c.ID, model.StatusArchived); err != nil {
				log.Println("⚠️ failed to archive campaign", c.ID, ":", err)
				continue
			}
			log.Println("✅ Archived campaign", c.ID)
		}
	}
}

// ReportStorage logs a usage summary of the local media directory, plus
// the campaign bucket when it is reachable.
func (s *Scheduler) ReportStorage(ctx context.Context) map[string]any {
	localFiles, localBytes := dirUsage(s.VideoDir)
	report := map[string]any{
		"local_files": localFiles,
		"local_mb":    float64(localBytes) / (1 << 20),
		"reported":    time.Now().Format(time.RFC3339),
	}

	if objects, err := s.Campaigns.Store.List(ctx, "campaigns/"); err != nil {
		log.Println("⚠️ failed to list stored objects:", err)
	} else {
		var total int64
		for _, obj := range objects {
			total += obj.Size
		}
		report["bucket_objects"] = len(objects)
		report["bucket_bytes"] = total
	}

	if b, err := json.Marshal(report); err == nil {
		log.Println("📦 Storage report:", string(b))
	}
	return report
}

func dirUsage(dir string) (int, int64) {
	if dir == "" {
		return 0, 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}
	files := 0
	var size int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		size += info.Size()
	}
	return files, size
}

// DescribeRetention returns the windows in a human-readable form for the
// health endpoint.
func DescribeRetention() map[string]string {
	return map[string]string{
		"videos":  fmt.Sprintf("%dd", int(defaultVideoRetention.Hours()/24)),
		"temp":    strings.TrimSuffix(tempRetention.String(), "0m0s"),
		"archive": fmt.Sprintf("%dd", int(defaultArchiveAfter.Hours()/24)),
	}
}
