package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddr == "" {
		t.Error("expected a default HTTP address")
	}
	if cfg.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("expected default upload ceiling %d, got %d", DefaultMaxUploadBytes, cfg.MaxUploadBytes)
	}
	if cfg.SessionSecret == "" {
		t.Error("expected a development fallback secret")
	}
	if len(cfg.AllowedExts) == 0 {
		t.Error("expected default allowed extensions")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("SESSION_TTL_HOURS", "12")
	t.Setenv("MUSICBOX_SECRET", "prod-secret")

	cfg := Load()

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected :9090, got %q", cfg.HTTPAddr)
	}
	if cfg.MaxUploadBytes != 1048576 {
		t.Errorf("expected 1048576, got %d", cfg.MaxUploadBytes)
	}
	if cfg.SessionTTLHours != 12 {
		t.Errorf("expected 12, got %d", cfg.SessionTTLHours)
	}
	if cfg.SessionSecret != "prod-secret" {
		t.Errorf("expected the configured secret, got %q", cfg.SessionSecret)
	}
}

func TestLoadNormalizesAllowedExts(t *testing.T) {
	t.Setenv("ALLOWED_EXTS", " MP3, Ogg ,wav")

	cfg := Load()

	want := []string{"mp3", "ogg", "wav"}
	if len(cfg.AllowedExts) != len(want) {
		t.Fatalf("expected %d extensions, got %v", len(want), cfg.AllowedExts)
	}
	for i, ext := range want {
		if cfg.AllowedExts[i] != ext {
			t.Errorf("expected %q at %d, got %q", ext, i, cfg.AllowedExts[i])
		}
	}
}
