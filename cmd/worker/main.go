// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/viralforge/campaign-launcher/internal/analytics"
	"github.com/viralforge/campaign-launcher/internal/config"
	"github.com/viralforge/campaign-launcher/internal/content"
	"github.com/viralforge/campaign-launcher/internal/db"
	"github.com/viralforge/campaign-launcher/internal/queue"
	"github.com/viralforge/campaign-launcher/internal/repository"
	"github.com/viralforge/campaign-launcher/internal/service"
	"github.com/viralforge/campaign-launcher/internal/social"
	"github.com/viralforge/campaign-launcher/internal/storage"
	"github.com/viralforge/campaign-launcher/internal/templates"
	"github.com/viralforge/campaign-launcher/internal/video"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	settings := config.Load()
	ctx := context.Background()

	db.Init()

	store, err := storage.NewS3Store(ctx, settings)
	if err != nil {
		log.Fatal("❌ Failed to init object storage:", err)
	}

	amqpQueue, err := queue.NewAMQPQueue(settings.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer amqpQueue.Close()

	renderer := video.NewRenderer(settings)

	campaignService := &service.CampaignService{
		CampaignRepo:   &repository.CampaignRepository{DB: db.DB},
		TaskRepo:       &repository.TaskRepository{DB: db.DB},
		EngagementRepo: &repository.EngagementRepository{DB: db.DB},
		Catalog:        templates.NewCatalog(settings.TemplatesPath),
		Generator:      content.NewGenerator(settings.GeminiAPIKey, settings.GeminiModel),
		Renderer:       renderer,
		Store:          store,
		Publisher:      social.NewPublisher(settings),
		Analytics:      analytics.NewService(),
		Queue:          amqpQueue,
	}

	if err := campaignService.StartSubscribers(ctx, amqpQueue); err != nil {
		log.Fatal("Failed to register consumers:", err)
	}

	// Engagement, promotion, cleanup and archival run alongside the
	// consumers in this process.
	scheduler := service.NewScheduler(campaignService, settings.VideoOutputPath, renderer.TempDir)
	scheduler.VideoRetention = time.Duration(settings.VideoRetentionDays) * 24 * time.Hour
	scheduler.ArchiveAfter = time.Duration(settings.ArchiveAfterDays) * 24 * time.Hour

	log.Println("Worker running, waiting for messages...")
	scheduler.Start(ctx)
}
