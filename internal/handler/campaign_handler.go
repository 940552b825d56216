// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/viralforge/campaign-launcher/internal/config"
	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
	"github.com/viralforge/campaign-launcher/internal/model"
	"github.com/viralforge/campaign-launcher/internal/service"
	"github.com/viralforge/campaign-launcher/internal/templates"
)

// CampaignHandler holds the dependencies for campaign-related HTTP handlers
type CampaignHandler struct {
	Service  *service.CampaignService
	Catalog  *templates.Catalog
	Settings config.Settings
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(svc *service.CampaignService, catalog *templates.Catalog, settings config.Settings) *CampaignHandler {
	return &CampaignHandler{
		Service:  svc,
		Catalog:  catalog,
		Settings: settings,
	}
}

// Routes mounts every endpoint on the given router.
func (h *CampaignHandler) Routes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{key}", h.GetTemplate)

	r.Post("/campaigns", h.CreateCampaign)
	r.Get("/campaigns", h.ListCampaigns)
	r.Get("/campaigns/{id}", h.GetCampaign)
	r.Delete("/campaigns/{id}", h.DeleteCampaign)
	r.Post("/campaigns/{id}/start", h.StartCampaign)
	r.Post("/campaigns/{id}/stop", h.StopCampaign)
	r.Post("/campaigns/{id}/generate", h.StartCampaign)
	r.Get("/campaigns/{id}/analytics", h.CampaignAnalytics)

	r.Get("/tasks/{taskID}", h.GetTask)

	r.Post("/video/generate", h.GenerateVideo)
	r.Get("/video/status/{taskID}", h.VideoStatus)
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var campaignNotFound *appErrors.ErrCampaignNotFound
	var templateNotFound *appErrors.ErrTemplateNotFound
	var taskNotFound *appErrors.ErrTaskNotFound
	var validation *appErrors.ValidationError

	switch {
	case errors.As(err, &campaignNotFound), errors.As(err, &templateNotFound), errors.As(err, &taskNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Root describes the service.
func (h *CampaignHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "campaign-launcher",
		"version": "1.0.0",
		"endpoints": []string{
			"/health",
			"/templates",
			"/campaigns",
			"/tasks/{taskID}",
			"/video/generate",
		},
	})
}

// Health reports which integrations hold credentials.
func (h *CampaignHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "healthy",
		"gemini_configured": h.Settings.GeminiConfigured(),
		"s3_configured":     h.Settings.S3Endpoint != "",
		"amqp_configured":   h.Settings.AMQPURL != "",
		"platforms": map[string]bool{
			model.PlatformTikTok:    h.Settings.TikTokClientKey != "",
			model.PlatformInstagram: h.Settings.InstagramClientID != "",
			model.PlatformYouTube:   h.Settings.YouTubeClientID != "",
		},
		"retention": service.DescribeRetention(),
	})
}

// ListTemplates returns the template catalog.
func (h *CampaignHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list := h.Catalog.Load()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": list,
		"count":     len(list),
	})
}

// GetTemplate returns one template by key.
func (h *CampaignHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	template, err := h.Catalog.GetByKey(key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

// CreateCampaign accepts a campaign config and starts or schedules it.
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var cfg model.CampaignConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.CreateCampaign(cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListCampaigns returns a paginated list of campaigns
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	campaigns, pagination, err := h.Service.ListCampaigns(page, pageSize, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

// GetCampaign returns one campaign by ID
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	campaign, err := h.Service.GetCampaign(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.DeleteCampaign(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"campaign_id": id,
		"status":      "deleted",
	})
}

// StartCampaign re-runs the content workflow for an existing campaign.
func (h *CampaignHandler) StartCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, err := h.Service.StartCampaign(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"campaign_id": id,
		"task_id":     task.ID,
		"status":      model.StatusProcessing,
	})
}

func (h *CampaignHandler) StopCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.StopCampaign(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"campaign_id": id,
		"status":      model.StatusPaused,
	})
}

func (h *CampaignHandler) CampaignAnalytics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	metrics, err := h.Service.CampaignAnalytics(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// GetTask reports workflow progress for polling clients.
func (h *CampaignHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, err := h.Service.GetTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}

	response := map[string]interface{}{
		"task_id":     task.ID,
		"campaign_id": task.CampaignID,
		"status":      task.Status,
		"progress":    task.Progress,
		"step":        task.Step,
		"created_at":  task.CreatedAt,
		"updated_at":  task.UpdatedAt,
	}
	if task.Error != "" {
		response["error"] = task.Error
	}
	if task.Result != "" {
		var result map[string]interface{}
		if err := json.Unmarshal([]byte(task.Result), &result); err == nil {
			response["result"] = result
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// GenerateVideo queues a standalone video render.
func (h *CampaignHandler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt   string `json:"prompt"`
		Style    string `json:"style"`
		Duration int    `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.Service.GenerateVideo(body.Prompt, body.Style, body.Duration)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, task)
}

func (h *CampaignHandler) VideoStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, err := h.Service.GetVideoTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
