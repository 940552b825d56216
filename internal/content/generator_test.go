package content

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/viralforge/campaign-launcher/internal/model"
)

func techTemplate() *model.CampaignTemplate {
	return &model.CampaignTemplate{
		Key:            "tech",
		Display:        "テック/ガジェット",
		StylePrimary:   "tech",
		StyleSecondary: "serious",
		Keywords:       []string{"発表", "発売", "比較", "性能"},
	}
}

func TestFallbackScriptAlwaysPopulated(t *testing.T) {
	for i := 0; i < 20; i++ {
		s := FallbackScript(techTemplate())

		if s.Hook == "" {
			t.Fatal("fallback hook must not be empty")
		}
		if len(s.Bullets) < 1 {
			t.Fatal("fallback must produce at least one bullet")
		}
		if s.Twist == "" || s.CTA == "" {
			t.Fatal("fallback twist and CTA must not be empty")
		}
		if len(s.Hashtags) < 1 {
			t.Fatal("fallback must produce at least one hashtag")
		}
		for _, tag := range s.Hashtags {
			if !strings.HasPrefix(tag, "#") {
				t.Errorf("hashtag %q missing marker", tag)
			}
		}
		if s.EstimatedDuration < 20 || s.EstimatedDuration > 35 {
			t.Errorf("estimated duration out of range: %d", s.EstimatedDuration)
		}
		if s.Style != "tech" {
			t.Errorf("style should be copied from template, got %s", s.Style)
		}
	}
}

func TestGenerateScriptWithoutBackend(t *testing.T) {
	g := NewGenerator("", "gemini-pro")

	s, err := g.GenerateScript(context.Background(), techTemplate(), model.ContentTypeProductReaction, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Bullets) < 1 || len(s.Hashtags) < 1 {
		t.Error("unconfigured backend must still yield bullets and hashtags")
	}
}

type failingBackend struct{}

func (failingBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("quota exceeded")
}

func TestBackendFailureFallsBack(t *testing.T) {
	g := &Generator{Backend: failingBackend{}}

	s, err := g.GenerateScript(context.Background(), techTemplate(), model.ContentTypeMysteryLaunch, "")
	if err != nil {
		t.Fatalf("backend failure must not propagate: %v", err)
	}
	if s.Hook == "" || len(s.Bullets) != 3 {
		t.Error("fallback script expected after backend failure")
	}
}

type cannedBackend struct{ response string }

func (b cannedBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	return b.response, nil
}

func TestParseScriptResponseSections(t *testing.T) {
	response := `
フック（最初の3秒）: えっ、この新製品すごくない？
メインコンテンツ（3つのポイント）:
1. 価格が予想の半分
2. バッテリーが2日持つ
・カメラがプロ級
ツイスト（意外な要素）: 実は日本限定モデルなんです
CTA（行動喚起）: コメントで感想を教えて！

ハッシュタグ: #発表 #新製品 #ガジェット
`
	s := ParseScriptResponse(response, techTemplate())

	if s.Hook != "えっ、この新製品すごくない？" {
		t.Errorf("hook parse failed: %q", s.Hook)
	}
	if len(s.Bullets) != 3 {
		t.Fatalf("expected 3 bullets, got %d: %v", len(s.Bullets), s.Bullets)
	}
	if s.Bullets[0] != "価格が予想の半分" {
		t.Errorf("numbered bullet parse failed: %q", s.Bullets[0])
	}
	if s.Bullets[2] != "カメラがプロ級" {
		t.Errorf("・ bullet parse failed: %q", s.Bullets[2])
	}
	if s.Twist != "実は日本限定モデルなんです" {
		t.Errorf("twist parse failed: %q", s.Twist)
	}
	if s.CTA != "コメントで感想を教えて！" {
		t.Errorf("cta parse failed: %q", s.CTA)
	}
	if len(s.Hashtags) != 3 {
		t.Errorf("expected 3 hashtags, got %v", s.Hashtags)
	}
}

func TestParseScriptResponseBestEffort(t *testing.T) {
	// Unrecognized input yields an empty-but-valid script, not an error.
	s := ParseScriptResponse("completely unrelated text\nno sections at all", techTemplate())

	if s.Hook != "" || len(s.Bullets) != 0 {
		t.Error("unrecognized lines should be ignored")
	}
	if s.Style != "tech" || s.EstimatedDuration == 0 {
		t.Error("style and duration defaults should still be set")
	}
}

func TestParseEnglishSectionHeaders(t *testing.T) {
	response := `Hook: Check out this gadget
Twist: it folds in half
CTA: follow for part two`
	s := ParseScriptResponse(response, techTemplate())

	if s.Hook != "Check out this gadget" {
		t.Errorf("case-insensitive hook match failed: %q", s.Hook)
	}
	if s.Twist != "it folds in half" {
		t.Errorf("twist: %q", s.Twist)
	}
	if s.CTA != "follow for part two" {
		t.Errorf("cta: %q", s.CTA)
	}
}

func TestBuildPromptIncludesArchetype(t *testing.T) {
	p := BuildPrompt(techTemplate(), model.ContentTypeAIVsHumanPoll, "新しいAIカメラ")

	for _, want := range []string{
		"テック/ガジェット",
		"AI vs 人間の投票動画",
		"トピック: 新しいAIカメラ",
		"フック（最初の3秒）",
		"ハッシュタグ",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateScriptParsesBackendResponse(t *testing.T) {
	g := &Generator{Backend: cannedBackend{response: "フック: テスト用フック\nハッシュタグ: #テスト"}}

	s, err := g.GenerateScript(context.Background(), techTemplate(), model.ContentTypeDayInLife, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Hook != "テスト用フック" {
		t.Errorf("backend response not parsed: %q", s.Hook)
	}
}
