// internal/video/renderer.go
package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/viralforge/campaign-launcher/internal/config"
	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
	"github.com/viralforge/campaign-launcher/internal/model"
)

// Renderer turns a VideoScript into an encoded 9:16 video via ffmpeg.
// Every stage degrades to a simpler path instead of aborting: supplied
// images -> gradient -> solid color, captioned -> uncaptioned -> a static
// hook-text clip. RenderError is returned only when the last fallback fails.
type Renderer struct {
	OutputDir  string
	TempDir    string
	TTSCommand string
	FPS        int
	Width      int
	Height     int
	Voice      string
}

func NewRenderer(settings config.Settings) *Renderer {
	temp, err := os.MkdirTemp("", "campaign-render-")
	if err != nil {
		temp = os.TempDir()
	}
	width, height := 1080, 1920
	if w, h, ok := ParseResolution(settings.DefaultResolution); ok {
		width, height = w, h
	}
	return &Renderer{
		OutputDir:  settings.VideoOutputPath,
		TempDir:    temp,
		TTSCommand: settings.TTSCommand,
		FPS:        settings.VideoFPS,
		Width:      width,
		Height:     height,
		Voice:      VoiceForLanguage(settings.DefaultVoiceLanguage),
	}
}

// VoiceForLanguage maps a locale-ish language tag onto an edge-tts voice.
// A value that already names a full voice passes through unchanged.
func VoiceForLanguage(lang string) string {
	if strings.Count(lang, "-") >= 2 {
		return lang
	}
	switch strings.ToLower(strings.SplitN(lang, "-", 2)[0]) {
	case "en":
		return "en-US-JennyNeural"
	default:
		return "ja-JP-NanamiNeural"
	}
}

// ParseResolution parses a "WIDTHxHEIGHT" string such as 1080x1920.
func ParseResolution(s string) (width, height int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(parts[0])
	h, errH := strconv.Atoi(parts[1])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// withOverrides applies a campaign's per-video settings on a copy so
// concurrent renders with different configs do not interfere.
func (r *Renderer) withOverrides(opts *model.VideoConfig) *Renderer {
	if opts == nil {
		return r
	}
	rr := *r
	if opts.VoiceLanguage != "" {
		rr.Voice = VoiceForLanguage(opts.VoiceLanguage)
	}
	if w, h, ok := ParseResolution(opts.Resolution); ok {
		rr.Width, rr.Height = w, h
	}
	return &rr
}

func (r *Renderer) Render(ctx context.Context, script *model.VideoScript, opts *model.VideoConfig, backgroundImages []string) (*model.MediaArtifact, error) {
	return r.withOverrides(opts).render(ctx, script, backgroundImages)
}

func (r *Renderer) render(ctx context.Context, script *model.VideoScript, backgroundImages []string) (*model.MediaArtifact, error) {
	if err := os.MkdirAll(r.OutputDir, 0755); err != nil {
		return nil, appErrors.NewRenderError("setup", err)
	}

	audioFile, err := r.synthesizeNarration(ctx, script)
	if err != nil {
		log.Println("⚠️ Narration synthesis failed, using silent track:", err)
		audioFile, err = r.silentTrack(ctx, float64(script.EstimatedDuration))
		if err != nil {
			return nil, appErrors.NewRenderError("narration", err)
		}
	}

	duration := r.probeDuration(ctx, audioFile)
	if duration <= 0 {
		duration = float64(script.EstimatedDuration)
	}

	background, err := r.renderBackground(ctx, duration, backgroundImages)
	if err != nil {
		log.Println("⚠️ Background render failed, trying gradient:", err)
		background, err = r.gradientBackground(ctx, duration)
	}
	if err != nil {
		log.Println("⚠️ Gradient failed, using solid color:", err)
		background, err = r.solidBackground(ctx, duration)
	}
	if err != nil {
		return r.staticFallback(ctx, script, audioFile, duration)
	}

	captioned, err := r.applyCaptions(ctx, background, script, duration)
	if err != nil {
		log.Println("⚠️ Captioning failed, keeping uncaptioned video:", err)
		captioned = background
	}

	final := filepath.Join(r.OutputDir, fmt.Sprintf("video_%d.mp4", time.Now().UnixNano()))
	if err := r.mux(ctx, captioned, audioFile, final); err != nil {
		return r.staticFallback(ctx, script, audioFile, duration)
	}

	return &model.MediaArtifact{
		VideoPath: final,
		AudioPath: audioFile,
		Duration:  duration,
	}, nil
}

// NarrationText concatenates hook, numbered bullets, twist and CTA with
// Japanese sentence separators for the TTS engine.
func NarrationText(script *model.VideoScript) string {
	parts := []string{}
	if script.Hook != "" {
		parts = append(parts, script.Hook)
	}
	for i, b := range script.Bullets {
		parts = append(parts, fmt.Sprintf("%dつ目、%s", i+1, b))
	}
	if script.Twist != "" {
		parts = append(parts, script.Twist)
	}
	if script.CTA != "" {
		parts = append(parts, script.CTA)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "。 ") + "。"
}

func (r *Renderer) synthesizeNarration(ctx context.Context, script *model.VideoScript) (string, error) {
	text := NarrationText(script)
	if text == "" {
		return "", fmt.Errorf("script has no narratable text")
	}

	outFile := filepath.Join(r.TempDir, "narration.mp3")

	ttsCmd := strings.TrimSpace(r.TTSCommand)
	if ttsCmd == "" {
		if _, err := exec.LookPath("edge-tts"); err == nil {
			ttsCmd = "edge-tts"
		} else {
			return "", fmt.Errorf("no TTS engine available")
		}
	}

	voice := r.Voice
	if voice == "" {
		voice = "ja-JP-NanamiNeural"
	}

	var cmd *exec.Cmd
	switch {
	case ttsCmd == "edge-tts":
		cmd = exec.CommandContext(ctx, "edge-tts",
			"--voice", voice,
			"--text", text,
			"--write-media", outFile,
		)
	default:
		cmd = exec.CommandContext(ctx, ttsCmd, "--text", text, "--output", outFile)
	}

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tts command: %w", err)
	}
	return outFile, nil
}

func (r *Renderer) silentTrack(ctx context.Context, duration float64) (string, error) {
	outFile := filepath.Join(r.TempDir, "silence.mp3")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=mono",
		"-t", formatSeconds(duration),
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg anullsrc: %w", err)
	}
	return outFile, nil
}

func (r *Renderer) probeDuration(ctx context.Context, file string) float64 {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		file,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0
	}
	return dur
}

// renderBackground splits the duration evenly across the supplied images as
// full-screen stills. Falls through to the gradient path when no images are
// given.
func (r *Renderer) renderBackground(ctx context.Context, duration float64, images []string) (string, error) {
	if len(images) == 0 {
		return r.gradientBackground(ctx, duration)
	}

	per := duration / float64(len(images))
	listFile := filepath.Join(r.TempDir, "stills_concat.txt")
	var lines []string
	for _, img := range images {
		lines = append(lines, fmt.Sprintf("file '%s'", img))
		lines = append(lines, fmt.Sprintf("duration %s", formatSeconds(per)))
	}
	// concat demuxer needs the last file repeated without a duration
	lines = append(lines, fmt.Sprintf("file '%s'", images[len(images)-1]))

	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return "", err
	}

	outFile := filepath.Join(r.TempDir, "background.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1", r.Width, r.Height, r.Width, r.Height),
		"-r", strconv.Itoa(r.FPS),
		"-pix_fmt", "yuv420p",
		"-t", formatSeconds(duration),
		"-an",
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg concat stills: %w", err)
	}
	return outFile, nil
}

func (r *Renderer) gradientBackground(ctx context.Context, duration float64) (string, error) {
	outFile := filepath.Join(r.TempDir, "gradient.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("gradients=s=%dx%d:speed=0.05,format=yuv420p", r.Width, r.Height),
		"-r", strconv.Itoa(r.FPS),
		"-t", formatSeconds(duration),
		"-an",
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg gradients: %w", err)
	}
	return outFile, nil
}

func (r *Renderer) solidBackground(ctx context.Context, duration float64) (string, error) {
	outFile := filepath.Join(r.TempDir, "solid.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x6496C8:s=%dx%d", r.Width, r.Height),
		"-r", strconv.Itoa(r.FPS),
		"-t", formatSeconds(duration),
		"-an",
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg color: %w", err)
	}
	return outFile, nil
}

func (r *Renderer) applyCaptions(ctx context.Context, videoFile string, script *model.VideoScript, duration float64) (string, error) {
	captions := CaptionPlan(script, duration)
	if len(captions) == 0 {
		return videoFile, nil
	}

	filters := make([]string, 0, len(captions))
	for _, c := range captions {
		filters = append(filters, drawtextFilter(c))
	}

	outFile := filepath.Join(r.TempDir, "captioned.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoFile,
		"-vf", strings.Join(filters, ","),
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg drawtext: %w", err)
	}
	return outFile, nil
}

func (r *Renderer) mux(ctx context.Context, videoFile, audioFile, outFile string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoFile,
		"-i", audioFile,
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "aac",
		"-r", strconv.Itoa(r.FPS),
		"-shortest",
		outFile,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux: %w", err)
	}
	return nil
}

// staticFallback is the last resort: a solid background with the hook text
// for the whole duration, muxed with whatever audio we have.
func (r *Renderer) staticFallback(ctx context.Context, script *model.VideoScript, audioFile string, duration float64) (*model.MediaArtifact, error) {
	text := script.Hook
	if text == "" {
		text = "Campaign Video"
	}

	outFile := filepath.Join(r.OutputDir, fmt.Sprintf("fallback_%d.mp4", time.Now().UnixNano()))
	args := []string{"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=0x6496C8:s=%dx%d", r.Width, r.Height),
	}
	if audioFile != "" {
		args = append(args, "-i", audioFile)
	}
	args = append(args,
		"-vf", drawtextFilter(Caption{Text: text, Start: 0, End: duration, Position: PositionCenter}),
		"-t", formatSeconds(duration),
		"-r", strconv.Itoa(r.FPS),
		"-pix_fmt", "yuv420p",
		outFile,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if err := cmd.Run(); err != nil {
		return nil, appErrors.NewRenderError("fallback", err)
	}

	return &model.MediaArtifact{VideoPath: outFile, AudioPath: audioFile, Duration: duration}, nil
}

// Cleanup removes the renderer's scratch directory.
func (r *Renderer) Cleanup() {
	_ = os.RemoveAll(r.TempDir)
}

func formatSeconds(d float64) string {
	return strconv.FormatFloat(d, 'f', 3, 64)
}
