package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/viralforge/campaign-launcher/internal/model"
	"github.com/viralforge/campaign-launcher/internal/service"
)

func newSchedulerFixture(t *testing.T) (*service.Scheduler, *fixture) {
	t.Helper()
	f := newFixture()
	sched := service.NewScheduler(f.svc, t.TempDir(), t.TempDir())
	return sched, f
}

func TestProcessEngagement_ExecutesDueTasks(t *testing.T) {
	sched, f := newSchedulerFixture(t)

	res, _ := f.svc.CreateCampaign(validConfig())
	if err := f.svc.RunWorkflow(context.Background(), res.CampaignID, res.TaskID); err != nil {
		t.Fatalf("RunWorkflow returned error: %v", err)
	}

	// Nothing due yet.
	sched.ProcessEngagement(context.Background(), time.Now())
	if len(f.pub.engagement) != 0 {
		t.Fatalf("no engagement should run before its scheduled time, got %v", f.pub.engagement)
	}

	// Five hours later everything (2 platforms x 3 actions) is due, batch
	// capped at 10.
	sched.ProcessEngagement(context.Background(), time.Now().Add(5*time.Hour))
	if len(f.pub.engagement) != 6 {
		t.Fatalf("expected 6 engagement executions, got %d", len(f.pub.engagement))
	}

	pending, _ := f.eng.CountPending(res.CampaignID)
	if pending != 0 {
		t.Errorf("expected all tasks marked executed, %d still pending", pending)
	}

	// Executed tasks never run twice.
	f.pub.engagement = nil
	sched.ProcessEngagement(context.Background(), time.Now().Add(6*time.Hour))
	if len(f.pub.engagement) != 0 {
		t.Errorf("executed tasks must not fire again, got %v", f.pub.engagement)
	}
}

func TestProcessEngagement_SkipsPausedCampaign(t *testing.T) {
	sched, f := newSchedulerFixture(t)

	res, _ := f.svc.CreateCampaign(validConfig())
	if err := f.svc.RunWorkflow(context.Background(), res.CampaignID, res.TaskID); err != nil {
		t.Fatalf("RunWorkflow returned error: %v", err)
	}

	// Pause after publishing: pending engagement must not execute.
	if err := f.campaigns.UpdateStatus(res.CampaignID, model.StatusProcessing); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.StopCampaign(res.CampaignID); err != nil {
		t.Fatal(err)
	}

	sched.ProcessEngagement(context.Background(), time.Now().Add(5*time.Hour))
	if len(f.pub.engagement) != 0 {
		t.Fatalf("paused campaign engagement must not execute, got %v", f.pub.engagement)
	}
	pending, _ := f.eng.CountPending(res.CampaignID)
	if pending != 6 {
		t.Fatalf("deferred tasks must stay pending while paused, got %d", pending)
	}

	// After a resume the deferred tasks fire on the next sweep.
	if err := f.campaigns.UpdateStatus(res.CampaignID, model.StatusCompleted); err != nil {
		t.Fatal(err)
	}
	sched.ProcessEngagement(context.Background(), time.Now().Add(5*time.Hour))
	if len(f.pub.engagement) != 6 {
		t.Errorf("expected deferred engagement to run after resume, got %d", len(f.pub.engagement))
	}
	pending, _ = f.eng.CountPending(res.CampaignID)
	if pending != 0 {
		t.Errorf("expected all tasks executed after resume, %d pending", pending)
	}
}

func TestProcessEngagement_RetiresDeletedCampaignTasks(t *testing.T) {
	sched, f := newSchedulerFixture(t)

	res, _ := f.svc.CreateCampaign(validConfig())
	if err := f.svc.RunWorkflow(context.Background(), res.CampaignID, res.TaskID); err != nil {
		t.Fatalf("RunWorkflow returned error: %v", err)
	}
	if err := f.svc.DeleteCampaign(res.CampaignID); err != nil {
		t.Fatal(err)
	}

	sched.ProcessEngagement(context.Background(), time.Now().Add(5*time.Hour))
	if len(f.pub.engagement) != 0 {
		t.Fatalf("deleted campaign engagement must not execute, got %v", f.pub.engagement)
	}
	pending, _ := f.eng.CountPending(res.CampaignID)
	if pending != 0 {
		t.Errorf("tasks of a deleted campaign should be retired, %d pending", pending)
	}
}

func TestPromoteScheduled(t *testing.T) {
	sched, f := newSchedulerFixture(t)

	at := time.Now().Add(30 * time.Minute).Format(time.RFC3339)
	cfg := validConfig()
	cfg.Schedule = &at
	res, err := f.svc.CreateCampaign(cfg)
	if err != nil {
		t.Fatalf("CreateCampaign returned error: %v", err)
	}

	// Not due yet.
	sched.PromoteScheduled(time.Now())
	c, _ := f.campaigns.GetByID(res.CampaignID)
	if c.Status != model.StatusScheduled {
		t.Fatalf("premature promotion to %s", c.Status)
	}

	// Due: promoted once and queued.
	sched.PromoteScheduled(time.Now().Add(time.Hour))
	c, _ = f.campaigns.GetByID(res.CampaignID)
	if c.Status != model.StatusProcessing {
		t.Fatalf("expected processing after promotion, got %s", c.Status)
	}
	if len(f.queue.published) != 1 {
		t.Errorf("expected one queued workflow, got %v", f.queue.published)
	}

	// A second sweep sees no scheduled campaigns.
	sched.PromoteScheduled(time.Now().Add(2 * time.Hour))
	if len(f.queue.published) != 1 {
		t.Errorf("promotion must fire once, got %v", f.queue.published)
	}
}

func TestPromoteScheduled_IgnoresCron(t *testing.T) {
	sched, f := newSchedulerFixture(t)

	cron := "0 9 * * *"
	cfg := validConfig()
	cfg.Schedule = &cron
	res, _ := f.svc.CreateCampaign(cfg)

	sched.PromoteScheduled(time.Now().Add(24 * time.Hour))
	c, _ := f.campaigns.GetByID(res.CampaignID)
	if c.Status != model.StatusScheduled {
		t.Errorf("cron campaigns must not be promoted by the sweep, got %s", c.Status)
	}
}

func TestCleanupVideos(t *testing.T) {
	sched, _ := newSchedulerFixture(t)

	old := filepath.Join(sched.VideoDir, "stale.mp4")
	fresh := filepath.Join(sched.VideoDir, "fresh.mp4")
	if err := os.WriteFile(old, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fresh, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	oldTime := time.Now().Add(-8 * 24 * time.Hour)
	if err := os.Chtimes(old, oldTime, oldTime); err != nil {
		t.Fatal(err)
	}

	sched.CleanupVideos(time.Now())

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("file past retention should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file should survive cleanup")
	}
}

func TestArchiveOldCampaigns(t *testing.T) {
	sched, f := newSchedulerFixture(t)

	res, _ := f.svc.CreateCampaign(validConfig())
	if err := f.svc.RunWorkflow(context.Background(), res.CampaignID, res.TaskID); err != nil {
		t.Fatalf("RunWorkflow returned error: %v", err)
	}

	// Recent completion stays put.
	sched.ArchiveOldCampaigns(time.Now())
	c, _ := f.campaigns.GetByID(res.CampaignID)
	if c.Status != model.StatusCompleted {
		t.Fatalf("recent campaign archived too early: %s", c.Status)
	}

	// Past the window it is archived.
	sched.ArchiveOldCampaigns(time.Now().Add(31 * 24 * time.Hour))
	c, _ = f.campaigns.GetByID(res.CampaignID)
	if c.Status != model.StatusArchived {
		t.Errorf("expected archived, got %s", c.Status)
	}
}

func TestArchiveCoversFailedCampaigns(t *testing.T) {
	sched, f := newSchedulerFixture(t)

	res, _ := f.svc.CreateCampaign(validConfig())
	if err := f.campaigns.UpdateStatus(res.CampaignID, model.StatusFailed); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	sched.ArchiveOldCampaigns(time.Now().Add(31 * 24 * time.Hour))
	c, _ := f.campaigns.GetByID(res.CampaignID)
	if c.Status != model.StatusArchived {
		t.Errorf("failed campaign should be archived, got %s", c.Status)
	}
}

func TestReportStorage(t *testing.T) {
	sched, f := newSchedulerFixture(t)

	for _, name := range []string{"a.mp4", "b.mp4"} {
		if err := os.WriteFile(filepath.Join(sched.VideoDir, name), []byte("0123456789"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	res, _ := f.svc.CreateCampaign(validConfig())
	if err := f.svc.RunWorkflow(context.Background(), res.CampaignID, res.TaskID); err != nil {
		t.Fatalf("RunWorkflow returned error: %v", err)
	}

	report := sched.ReportStorage(context.Background())
	if report["local_files"] != 2 {
		t.Errorf("expected 2 local media files, got %v", report["local_files"])
	}
	// video.mp4 + audio.mp3 uploaded by the workflow
	if report["bucket_objects"] != 2 {
		t.Errorf("expected 2 bucket objects, got %v", report["bucket_objects"])
	}
}
