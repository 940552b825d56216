package templates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	appErrors "github.com/viralforge/campaign-launcher/internal/errors"
)

func TestFallbackSetWhenFileMissing(t *testing.T) {
	c := NewCatalog("does/not/exist.yaml")

	loaded := c.Load()
	if len(loaded) < 3 {
		t.Fatalf("expected at least 3 fallback templates, got %d", len(loaded))
	}

	tech, err := c.GetByKey("tech")
	if err != nil {
		t.Fatalf("expected tech template in fallback set, got error: %v", err)
	}
	if tech.Display != "テック/ガジェット" {
		t.Errorf("expected display テック/ガジェット, got %s", tech.Display)
	}
	if tech.StylePrimary != "tech" {
		t.Errorf("expected style_primary tech, got %s", tech.StylePrimary)
	}
}

func TestGetByKeyNotFound(t *testing.T) {
	c := NewCatalog("does/not/exist.yaml")

	_, err := c.GetByKey("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}

	var notFound *appErrors.ErrTemplateNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %T", err)
	}
	if notFound.Key != "nonexistent" {
		t.Errorf("error should carry the missing key, got %s", notFound.Key)
	}
}

func TestLoadFromYamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streams.yaml")

	content := `streams:
  - key: cooking
    display: 料理/グルメ
    style_primary: fun
    style_secondary: kawaii
    has_affiliate: false
    keywords: ["レシピ", "時短"]
    sources_rss: ["https://example.com/rss.xml"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCatalog(path)
	got, err := c.GetByKey("cooking")
	if err != nil {
		t.Fatalf("expected cooking template, got error: %v", err)
	}
	if got.Display != "料理/グルメ" {
		t.Errorf("unexpected display: %s", got.Display)
	}
	if len(got.Keywords) != 2 {
		t.Errorf("expected 2 keywords, got %d", len(got.Keywords))
	}

	// Keys from the fallback set are not present once a file is loaded
	if _, err := c.GetByKey("tech"); err == nil {
		t.Error("tech should not resolve when the file defines its own streams")
	}
}

func TestMalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streams.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewCatalog(path)
	if _, err := c.GetByKey("mnp"); err != nil {
		t.Errorf("expected fallback set on malformed file, got %v", err)
	}
}
