package video

import (
	"testing"

	"github.com/viralforge/campaign-launcher/internal/config"
	"github.com/viralforge/campaign-launcher/internal/model"
)

func TestVoiceForLanguage(t *testing.T) {
	cases := []struct {
		lang string
		want string
	}{
		{"ja", "ja-JP-NanamiNeural"},
		{"en", "en-US-JennyNeural"},
		{"EN-GB", "en-US-JennyNeural"},
		{"", "ja-JP-NanamiNeural"},
		{"fr", "ja-JP-NanamiNeural"},
		{"en-AU-NatashaNeural", "en-AU-NatashaNeural"},
	}
	for _, tc := range cases {
		if got := VoiceForLanguage(tc.lang); got != tc.want {
			t.Errorf("VoiceForLanguage(%q) = %q, want %q", tc.lang, got, tc.want)
		}
	}
}

func TestParseResolution(t *testing.T) {
	w, h, ok := ParseResolution("720x1280")
	if !ok || w != 720 || h != 1280 {
		t.Errorf("720x1280 parse failed: %d %d %v", w, h, ok)
	}
	for _, bad := range []string{"", "1080", "archx2", "-1x10", "0x0"} {
		if _, _, ok := ParseResolution(bad); ok {
			t.Errorf("%q should not parse", bad)
		}
	}
}

func TestNewRendererUsesSettings(t *testing.T) {
	r := NewRenderer(config.Settings{
		VideoOutputPath:      t.TempDir(),
		DefaultVoiceLanguage: "en",
		DefaultResolution:    "720x1280",
		VideoFPS:             24,
	})
	defer r.Cleanup()

	if r.Width != 720 || r.Height != 1280 {
		t.Errorf("resolution not applied: %dx%d", r.Width, r.Height)
	}
	if r.Voice != "en-US-JennyNeural" {
		t.Errorf("voice not applied: %s", r.Voice)
	}

	// Malformed resolution keeps the 9:16 default.
	r2 := NewRenderer(config.Settings{DefaultResolution: "vertical"})
	defer r2.Cleanup()
	if r2.Width != 1080 || r2.Height != 1920 {
		t.Errorf("expected 1080x1920 fallback, got %dx%d", r2.Width, r2.Height)
	}
}

func TestWithOverrides(t *testing.T) {
	r := NewRenderer(config.Settings{DefaultResolution: "1080x1920", DefaultVoiceLanguage: "ja"})
	defer r.Cleanup()

	rr := r.withOverrides(&model.VideoConfig{VoiceLanguage: "en", Resolution: "720x1280"})
	if rr.Width != 720 || rr.Height != 1280 || rr.Voice != "en-US-JennyNeural" {
		t.Errorf("overrides not applied: %dx%d %s", rr.Width, rr.Height, rr.Voice)
	}
	// The shared renderer is untouched.
	if r.Width != 1080 || r.Height != 1920 || r.Voice != "ja-JP-NanamiNeural" {
		t.Errorf("base renderer mutated: %dx%d %s", r.Width, r.Height, r.Voice)
	}

	if got := r.withOverrides(nil); got != r {
		t.Error("nil config should return the renderer unchanged")
	}
	partial := r.withOverrides(&model.VideoConfig{Resolution: "bogus"})
	if partial.Width != 1080 || partial.Voice != r.Voice {
		t.Errorf("invalid fields should keep defaults: %+v", partial)
	}
}
