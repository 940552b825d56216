// internal/content/generator.go
package content

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/viralforge/campaign-launcher/internal/model"
)

// TextBackend is the text-generation API behind the script composer. Nil
// backend means "not configured" and routes straight to the fallback pools.
type TextBackend interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiBackend calls Google Gemini through the official SDK.
type GeminiBackend struct {
	APIKey string
	Model  string
}

func (b *GeminiBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(b.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer c.Close()

	m := c.GenerativeModel(b.Model)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	part, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format")
	}

	return string(part), nil
}

// Generator turns a template + content type into a structured VideoScript.
type Generator struct {
	Backend TextBackend
}

// NewGenerator wires the Gemini backend when an API key is present.
func NewGenerator(apiKey, geminiModel string) *Generator {
	if apiKey == "" {
		return &Generator{}
	}
	return &Generator{Backend: &GeminiBackend{APIKey: apiKey, Model: geminiModel}}
}

// GenerateScript never returns an error for backend failures: any problem
// with the text backend degrades to the fallback pools so the workflow
// always receives a fully populated script.
func (g *Generator) GenerateScript(ctx context.Context, template *model.CampaignTemplate, contentType string, topic string) (*model.VideoScript, error) {
	if g.Backend == nil {
		return FallbackScript(template), nil
	}

	prompt := BuildPrompt(template, contentType, topic)
	response, err := g.Backend.GenerateText(ctx, prompt)
	if err != nil {
		log.Println("⚠️ Text backend failed, using fallback script:", err)
		return FallbackScript(template), nil
	}

	return ParseScriptResponse(response, template), nil
}

// contentTypePrompts are the five fixed archetype instruction blocks.
var contentTypePrompts = map[string]string{
	model.ContentTypeProductReaction: `
AI商品リアクション動画を作成してください：
- 新商品への驚きと興奮を表現
- 「えっ、これすごくない？」のような自然なリアクション
- 商品の特徴を3つのポイントで説明
- 視聴者への質問で終わる
`,
	model.ContentTypeMysteryLaunch: `
ミステリー商品発表動画を作成してください：
- 「実は...」で始まる謎めいた導入
- 段階的に情報を明かす構成
- 最後に大きな発表
- 続きが気になる終わり方
`,
	model.ContentTypeAIVsHumanPoll: `
AI vs 人間の投票動画を作成してください：
- 面白い比較テーマを設定
- AIと人間の違いを強調
- 視聴者に投票を促す
- コメント欄での議論を誘発
`,
	model.ContentTypeDayInLife: `
一日の生活動画を作成してください：
- 朝から夜までの流れ
- 商品/サービスの自然な使用場面
- リアルな日常感
- 共感できるエピソード
`,
	model.ContentTypeMemeable: `
ミーム性のあるコンテンツを作成してください：
- トレンドを意識した内容
- シェアしたくなる要素
- キャッチーなフレーズ
- 真似しやすい構成
`,
}

// BuildPrompt assembles the Japanese prompt for the text backend: template
// context, the archetype block for the content type, and a fixed output
// format the parser knows how to read back.
func BuildPrompt(template *model.CampaignTemplate, contentType string, topic string) string {
	var sb strings.Builder

	sb.WriteString("あなたは日本のソーシャルメディア向けの短尺動画コンテンツを作成するプロのライターです。\n\n")
	sb.WriteString(fmt.Sprintf("テンプレート: %s\n", template.Display))
	sb.WriteString(fmt.Sprintf("コンテンツタイプ: %s\n", contentType))
	sb.WriteString(fmt.Sprintf("スタイル: %s + %s\n", template.StylePrimary, template.StyleSecondary))
	sb.WriteString(fmt.Sprintf("キーワード: %s\n", strings.Join(template.Keywords, ", ")))

	if topic != "" {
		sb.WriteString(fmt.Sprintf("トピック: %s\n", topic))
	}

	sb.WriteString(contentTypePrompts[contentType])

	sb.WriteString(`
以下の形式で15-30秒の動画用スクリプトを作成してください：

フック（最初の3秒）: [視聴者の注意を引く一言]
メインコンテンツ（3つのポイント）:
1. [ポイント1]
2. [ポイント2]
3. [ポイント3]
ツイスト（意外な要素）: [驚きや新情報]
CTA（行動喚起）: [視聴者に求める行動]

ハッシュタグ: #関連タグ #日本語ハッシュタグ
`)

	return sb.String()
}

// ParseScriptResponse reads the free-text backend response into a
// VideoScript by section-header keyword matching. Best-effort: unrecognized
// lines are ignored and any field may come back empty.
func ParseScriptResponse(response string, template *model.CampaignTemplate) *model.VideoScript {
	script := &model.VideoScript{
		Style:             template.StylePrimary,
		EstimatedDuration: 25,
	}

	section := ""
	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(line, "フック") || strings.Contains(lower, "hook"):
			section = "hook"
			if v, ok := afterColon(line); ok {
				script.Hook = v
			}
		case strings.Contains(line, "メインコンテンツ") || strings.Contains(line, "ポイント"):
			section = "bullets"
		case strings.Contains(line, "ツイスト") || strings.Contains(lower, "twist"):
			section = "twist"
			if v, ok := afterColon(line); ok {
				script.Twist = v
			}
		case strings.Contains(line, "CTA") || strings.Contains(line, "行動喚起"):
			section = "cta"
			if v, ok := afterColon(line); ok {
				script.CTA = v
			}
		case strings.Contains(line, "ハッシュタグ") || strings.Contains(line, "#"):
			for _, tok := range strings.Fields(line) {
				if strings.HasPrefix(tok, "#") {
					script.Hashtags = append(script.Hashtags, tok)
				}
			}
		case section == "bullets" && isBulletLine(line):
			script.Bullets = append(script.Bullets, bulletText(line))
		case section == "hook" && script.Hook == "":
			script.Hook = line
		case section == "twist" && script.Twist == "":
			script.Twist = line
		case section == "cta" && script.CTA == "":
			script.CTA = line
		}
	}

	return script
}

func afterColon(line string) (string, bool) {
	for _, sep := range []string{":", "："} {
		if idx := strings.Index(line, sep); idx >= 0 {
			return strings.TrimSpace(line[idx+len(sep):]), true
		}
	}
	return "", false
}

func isBulletLine(line string) bool {
	for _, prefix := range []string{"1.", "2.", "3.", "-", "・"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func bulletText(line string) string {
	if idx := strings.Index(line, "."); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return strings.TrimSpace(line[1:])
}

// FallbackScript builds a script from fixed candidate pools keyed off the
// template. Always fully populated: one hook, three bullets, one twist, one
// CTA and hashtags derived from the template keywords.
func FallbackScript(template *model.CampaignTemplate) *model.VideoScript {
	hooks := []string{
		fmt.Sprintf("今話題の%sについて知ってる？", template.Display),
		fmt.Sprintf("これは知らないと損する%sの話", template.Display),
		fmt.Sprintf("みんな！%sで大変なことが起きてる！", template.Display),
	}

	keyword := "最新トレンド"
	if len(template.Keywords) > 0 {
		keyword = template.Keywords[0]
	}
	bullets := []string{
		fmt.Sprintf("%sの最新情報をチェック", keyword),
		"実はこんなメリットがあるんです",
		"みんなが知らない裏技を公開",
	}

	twists := []string{
		"でも実は、もっとすごいことがあるんです！",
		"実際に試してみたら、予想を超える結果が...",
		"最後にとっておきの情報を教えます",
	}

	ctas := []string{
		"あなたはどう思う？コメントで教えて！",
		"続きが気になる人はフォローしてね",
		"この情報、役に立った人はいいね！",
	}

	hashtags := []string{}
	for i, kw := range template.Keywords {
		if i >= 3 {
			break
		}
		hashtags = append(hashtags, "#"+kw)
	}
	if len(hashtags) == 0 {
		hashtags = append(hashtags, "#"+template.Key)
	}

	return &model.VideoScript{
		Hook:              hooks[rand.Intn(len(hooks))],
		Bullets:           bullets,
		Twist:             twists[rand.Intn(len(twists))],
		CTA:               ctas[rand.Intn(len(ctas))],
		Hashtags:          hashtags,
		Style:             template.StylePrimary,
		EstimatedDuration: 20 + rand.Intn(16),
	}
}
