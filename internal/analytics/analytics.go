// internal/analytics/analytics.go
package analytics

import (
	"math/rand"
	"time"

	"github.com/viralforge/campaign-launcher/internal/model"
)

// Service produces campaign performance metrics. Numbers are simulated;
// swapping in platform analytics APIs only changes this package.
type Service struct{}

func NewService() *Service { return &Service{} }

// ForCampaign builds the analytics payload for one campaign: per-platform
// breakdown for every published post plus an aggregate block.
func (s *Service) ForCampaign(c *model.Campaign) map[string]any {
	platforms := map[string]any{}
	totalViews, totalLikes, totalShares, totalComments := 0, 0, 0, 0

	for platform := range c.PublishedURLs {
		views := 1000 + rand.Intn(49000)
		likes := 50 + rand.Intn(1950)
		shares := 10 + rand.Intn(490)
		comments := 5 + rand.Intn(195)

		totalViews += views
		totalLikes += likes
		totalShares += shares
		totalComments += comments

		platforms[platform] = map[string]any{
			"views":           views,
			"likes":           likes,
			"shares":          shares,
			"comments":        comments,
			"engagement_rate": engagementRate(views, likes, shares, comments),
			"last_updated":    time.Now().UTC().Format(time.RFC3339),
		}
	}

	return map[string]any{
		"campaign_id":   c.ID,
		"campaign_name": c.Config.Name,
		"status":        c.Status,
		"performance": map[string]any{
			"total_posts":     len(c.PublishedURLs),
			"total_views":     totalViews,
			"total_likes":     totalLikes,
			"total_shares":    totalShares,
			"total_comments":  totalComments,
			"engagement_rate": engagementRate(totalViews, totalLikes, totalShares, totalComments),
		},
		"platform_breakdown": platforms,
		"collected_at":       time.Now().UTC().Format(time.RFC3339),
	}
}

func engagementRate(views, likes, shares, comments int) float64 {
	if views == 0 {
		return 0
	}
	return float64(likes+shares+comments) / float64(views) * 100
}
