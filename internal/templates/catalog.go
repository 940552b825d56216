// internal/templates/catalog.go
package templates

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"

	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
	"github.com/viralforge/campaign-launcher/internal/model"
)

// Catalog loads campaign templates from a YAML "streams" file. The file is
// cheap to parse and read-only, so it is re-read on every Load; a missing or
// malformed file falls back to the built-in set so the service stays usable
// without any configuration.
type Catalog struct {
	Path string
}

func NewCatalog(path string) *Catalog {
	return &Catalog{Path: path}
}

type streamsFile struct {
	Streams []model.CampaignTemplate `yaml:"streams"`
}

func (c *Catalog) Load() []model.CampaignTemplate {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return defaultTemplates()
	}

	var file streamsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Println("⚠️ Failed to parse templates file:", err)
		return defaultTemplates()
	}
	if len(file.Streams) == 0 {
		return defaultTemplates()
	}
	return file.Streams
}

func (c *Catalog) GetByKey(key string) (*model.CampaignTemplate, error) {
	for _, t := range c.Load() {
		if t.Key == key {
			return &t, nil
		}
	}
	return nil, appErrors.NewTemplateNotFound(key)
}

// defaultTemplates is the built-in Japanese-optimized set used when no
// templates file is available.
func defaultTemplates() []model.CampaignTemplate {
	return []model.CampaignTemplate{
		{
			Key:             "mnp",
			Display:         "MNP/携帯乗換",
			StylePrimary:    "serious",
			StyleSecondary:  "kawaii",
			HasAffiliate:    true,
			Keywords:        []string{"mnp", "乗り換え", "スマホ", "端末割引", "ポイント還元"},
			SourcesRSS:      []string{"https://news.yahoo.co.jp/rss/topics/it.xml"},
			AffiliateURLEnv: "AFFILIATE_MNP_URL",
		},
		{
			Key:             "anime",
			Display:         "アニメ/エンタメ",
			StylePrimary:    "kawaii",
			StyleSecondary:  "fun",
			HasAffiliate:    true,
			Keywords:        []string{"アニメ", "声優", "映画化", "コラボ"},
			SourcesRSS:      []string{"https://news.yahoo.co.jp/rss/topics/entertainment.xml"},
			AffiliateURLEnv: "AFFILIATE_ANIME_URL",
		},
		{
			Key:            "tech",
			Display:        "テック/ガジェット",
			StylePrimary:   "tech",
			StyleSecondary: "serious",
			HasAffiliate:   false,
			Keywords:       []string{"発表", "発売", "比較", "性能", "レビュー", "新製品"},
			SourcesRSS:     []string{"https://news.yahoo.co.jp/rss/topics/it.xml"},
		},
	}
}
