// internal/video/captions.go
package video

import (
	"fmt"
	"strings"

	"github.com/viralforge/campaign-launcher/internal/model"
)

const (
	PositionCenter = "center"
	PositionBottom = "bottom"
)

// Caption is one timed text overlay.
type Caption struct {
	Text     string
	Start    float64
	End      float64
	Position string
}

// CaptionPlan lays out the overlay windows: hook centered during the first
// 25% of the video, bullets along the bottom third spread evenly across the
// middle 60%, CTA centered during the final 15%.
func CaptionPlan(script *model.VideoScript, duration float64) []Caption {
	var captions []Caption

	if script.Hook != "" {
		captions = append(captions, Caption{
			Text:     script.Hook,
			Start:    0,
			End:      duration * 0.25,
			Position: PositionCenter,
		})
	}

	if len(script.Bullets) > 0 {
		per := (duration * 0.60) / float64(len(script.Bullets))
		start := duration * 0.25
		for i, b := range script.Bullets {
			captions = append(captions, Caption{
				Text:     fmt.Sprintf("%d. %s", i+1, b),
				Start:    start + float64(i)*per,
				End:      start + float64(i+1)*per,
				Position: PositionBottom,
			})
		}
	}

	if script.CTA != "" {
		captions = append(captions, Caption{
			Text:     script.CTA,
			Start:    duration * 0.85,
			End:      duration,
			Position: PositionCenter,
		})
	}

	return captions
}

// drawtextFilter renders one caption as an ffmpeg drawtext expression with
// stroke-outlined lettering for legibility over arbitrary backgrounds.
func drawtextFilter(c Caption) string {
	y := "(h-text_h)/2"
	if c.Position == PositionBottom {
		y = "h-h/3"
	}
	return fmt.Sprintf(
		"drawtext=text='%s':fontsize=50:fontcolor=white:borderw=2:bordercolor=black:x=(w-text_w)/2:y=%s:enable='between(t,%s,%s)'",
		escapeDrawtext(c.Text), y, formatSeconds(c.Start), formatSeconds(c.End),
	)
}

// escapeDrawtext quotes the characters ffmpeg's filter parser treats
// specially inside a drawtext text value.
func escapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
		`,`, `\,`,
	)
	return r.Replace(s)
}
