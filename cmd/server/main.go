// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/viralforge/campaign-launcher/internal/analytics"
	"github.com/viralforge/campaign-launcher/internal/config"
	"github.com/viralforge/campaign-launcher/internal/content"
	"github.com/viralforge/campaign-launcher/internal/db"
	"github.com/viralforge/campaign-launcher/internal/handler"
	"github.com/viralforge/campaign-launcher/internal/queue"
	"github.com/viralforge/campaign-launcher/internal/repository"
	"github.com/viralforge/campaign-launcher/internal/service"
	"github.com/viralforge/campaign-launcher/internal/social"
	"github.com/viralforge/campaign-launcher/internal/storage"
	"github.com/viralforge/campaign-launcher/internal/templates"
	"github.com/viralforge/campaign-launcher/internal/video"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	settings := config.Load()
	ctx := context.Background()

	// Init DB
	db.Init()

	store, err := storage.NewS3Store(ctx, settings)
	if err != nil {
		log.Fatalf("❌ Failed to init object storage: %v", err)
	}

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	taskRepo := &repository.TaskRepository{DB: db.DB}
	engagementRepo := &repository.EngagementRepository{DB: db.DB}

	catalog := templates.NewCatalog(settings.TemplatesPath)

	campaignService := &service.CampaignService{
		CampaignRepo:   campaignRepo,
		TaskRepo:       taskRepo,
		EngagementRepo: engagementRepo,
		Catalog:        catalog,
		Generator:      content.NewGenerator(settings.GeminiAPIKey, settings.GeminiModel),
		Renderer:       video.NewRenderer(settings),
		Store:          store,
		Publisher:      social.NewPublisher(settings),
		Analytics:      analytics.NewService(),
	}

	// Broker first; in-process queue with local subscribers when RabbitMQ is
	// not reachable, so a bare dev checkout still works end to end.
	if amqpQueue, err := queue.NewAMQPQueue(settings.AMQPURL); err == nil {
		campaignService.Queue = amqpQueue
		defer amqpQueue.Close()
	} else {
		log.Println("⚠️ RabbitMQ unavailable, running jobs in-process:", err)
		memQueue := queue.NewInMemoryQueue()
		campaignService.Queue = memQueue
		if err := campaignService.StartSubscribers(ctx, memQueue); err != nil {
			log.Fatalf("❌ Failed to start in-process subscribers: %v", err)
		}
	}

	campaignHandler := handler.NewCampaignHandler(campaignService, catalog, settings)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	campaignHandler.Routes(r)

	log.Println("🚀 Server running on :" + settings.Port)
	log.Fatal(http.ListenAndServe(":"+settings.Port, r))
}
