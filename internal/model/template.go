// internal/model/template.go
package model

// CampaignTemplate is immutable after load. The catalog reads these from a
// YAML "streams" file or falls back to the built-in set.
type CampaignTemplate struct {
	Key             string   `yaml:"key" json:"key"`
	Display         string   `yaml:"display" json:"display"`
	StylePrimary    string   `yaml:"style_primary" json:"style_primary"`
	StyleSecondary  string   `yaml:"style_secondary" json:"style_secondary"`
	HasAffiliate    bool     `yaml:"has_affiliate" json:"has_affiliate"`
	Keywords        []string `yaml:"keywords" json:"keywords"`
	SourcesRSS      []string `yaml:"sources_rss" json:"sources_rss"`
	AffiliateURLEnv string   `yaml:"affiliate_url_env,omitempty" json:"affiliate_url_env,omitempty"`
}
