package video

import (
	"math"
	"strings"
	"testing"

	"github.com/viralforge/campaign-launcher/internal/model"
)

func sampleScript() *model.VideoScript {
	return &model.VideoScript{
		Hook:    "今話題のガジェット知ってる？",
		Bullets: []string{"価格が半分", "バッテリー2日", "プロ級カメラ"},
		Twist:   "日本限定モデル",
		CTA:     "コメントで教えて！",
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 0.001 }

func TestCaptionPlanWindows(t *testing.T) {
	captions := CaptionPlan(sampleScript(), 40)

	// hook + 3 bullets + CTA
	if len(captions) != 5 {
		t.Fatalf("expected 5 captions, got %d", len(captions))
	}

	hook := captions[0]
	if !approx(hook.Start, 0) || !approx(hook.End, 10) {
		t.Errorf("hook window should cover first 25%%: %v-%v", hook.Start, hook.End)
	}
	if hook.Position != PositionCenter {
		t.Errorf("hook should be centered")
	}

	// bullets split 60% of 40s = 24s into 8s slots starting at 10s
	for i := 1; i <= 3; i++ {
		b := captions[i]
		wantStart := 10 + float64(i-1)*8
		if !approx(b.Start, wantStart) || !approx(b.End, wantStart+8) {
			t.Errorf("bullet %d window %v-%v, want %v-%v", i, b.Start, b.End, wantStart, wantStart+8)
		}
		if b.Position != PositionBottom {
			t.Errorf("bullets belong to the bottom third")
		}
	}

	cta := captions[4]
	if !approx(cta.Start, 34) || !approx(cta.End, 40) {
		t.Errorf("cta window should cover final 15%%: %v-%v", cta.Start, cta.End)
	}
}

func TestCaptionPlanSkipsEmptyFields(t *testing.T) {
	captions := CaptionPlan(&model.VideoScript{Bullets: []string{"only one"}}, 30)
	if len(captions) != 1 {
		t.Fatalf("expected only the bullet caption, got %d", len(captions))
	}
	if captions[0].Text != "1. only one" {
		t.Errorf("bullet should be numbered: %q", captions[0].Text)
	}
}

func TestDrawtextFilterStroke(t *testing.T) {
	f := drawtextFilter(Caption{Text: "hello", Start: 1.5, End: 3, Position: PositionCenter})

	for _, want := range []string{"borderw=2", "bordercolor=black", "between(t,1.500,3.000)", "text='hello'"} {
		if !strings.Contains(f, want) {
			t.Errorf("filter missing %q: %s", want, f)
		}
	}
}

func TestDrawtextEscaping(t *testing.T) {
	f := drawtextFilter(Caption{Text: "50%: 'yes', no", Start: 0, End: 1})

	if strings.Contains(f, "text='50%: 'yes', no'") {
		t.Error("special characters must be escaped inside the text value")
	}
	for _, want := range []string{`\%`, `\:`, `\'`, `\,`} {
		if !strings.Contains(f, want) {
			t.Errorf("expected escape %q in %s", want, f)
		}
	}
}

func TestNarrationText(t *testing.T) {
	text := NarrationText(sampleScript())

	for _, want := range []string{
		"今話題のガジェット知ってる？",
		"1つ目、価格が半分",
		"2つ目、バッテリー2日",
		"3つ目、プロ級カメラ",
		"日本限定モデル",
		"コメントで教えて！",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("narration missing %q", want)
		}
	}
	if !strings.HasSuffix(text, "。") {
		t.Error("narration should end with a sentence separator")
	}
}

func TestNarrationTextEmptyScript(t *testing.T) {
	if got := NarrationText(&model.VideoScript{}); got != "" {
		t.Errorf("empty script should produce empty narration, got %q", got)
	}
}
