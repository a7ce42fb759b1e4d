package config

import (
	"fmt"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY0", "k0")
	t.Setenv("STORAGE_URL", "https://storage.example.com")
	t.Setenv("STORAGE_SERVICE_KEY", "service-key")
	t.Setenv("RENDER_API_URL", "https://render.example.com")
	t.Setenv("RENDER_API_KEY", "render-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.APIPort != "8080" {
		t.Errorf("APIPort = %q", cfg.APIPort)
	}
	if cfg.SegmentCount != 10 {
		t.Errorf("SegmentCount = %d", cfg.SegmentCount)
	}
	if cfg.DefaultSegmentSeconds != 4 {
		t.Errorf("DefaultSegmentSeconds = %v", cfg.DefaultSegmentSeconds)
	}
	if cfg.ImageAspectRatio != "9:16" {
		t.Errorf("ImageAspectRatio = %q", cfg.ImageAspectRatio)
	}
	if cfg.RunTTLHours != 24 {
		t.Errorf("RunTTLHours = %d", cfg.RunTTLHours)
	}
	if cfg.RenderPollIntervalMs != 500 || cfg.RenderMaxPollAttempts != 120 {
		t.Errorf("poll config = %d/%d", cfg.RenderPollIntervalMs, cfg.RenderMaxPollAttempts)
	}
}

func TestLoadKeyPool(t *testing.T) {
	setRequired(t)
	for i := 0; i < 5; i++ {
		t.Setenv(fmt.Sprintf("GEMINI_API_KEY%d", i), fmt.Sprintf("key-%d", i))
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.GeminiKeys) != 5 {
		t.Fatalf("pool size = %d, want 5", len(cfg.GeminiKeys))
	}
	for i, k := range cfg.GeminiKeys {
		if k != fmt.Sprintf("key-%d", i) {
			t.Errorf("key %d = %q", i, k)
		}
	}
}

func TestLoadKeyPoolToleratesGaps(t *testing.T) {
	setRequired(t)
	t.Setenv("GEMINI_API_KEY3", "k3")
	t.Setenv("GEMINI_API_KEY7", "k7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Slots 0, 3, 7 set; the pool compacts to a dense slice
	if len(cfg.GeminiKeys) != 3 {
		t.Fatalf("pool size = %d, want 3", len(cfg.GeminiKeys))
	}
	if cfg.GeminiKeys[1] != "k3" || cfg.GeminiKeys[2] != "k7" {
		t.Errorf("pool = %v", cfg.GeminiKeys)
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("STORAGE_URL", "https://storage.example.com")
	t.Setenv("STORAGE_SERVICE_KEY", "service-key")
	t.Setenv("RENDER_API_URL", "https://render.example.com")
	t.Setenv("RENDER_API_KEY", "render-key")
	t.Setenv("GEMINI_API_KEY0", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error with empty credential pool")
	}
}

func TestLoadRequiresStorage(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_SERVICE_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without storage credentials")
	}
}

func TestLoadRejectsNonPositiveSegmentCount(t *testing.T) {
	setRequired(t)
	t.Setenv("SEGMENT_COUNT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for SEGMENT_COUNT=0")
	}
}
