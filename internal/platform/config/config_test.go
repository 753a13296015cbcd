package config

import (
	"os"
	"testing"
	"time"
)

const (
	testEnvBotToken = "BOT_TOKEN"
	testBotToken    = "123456:ABC-DEF"
	testErrLoad     = "Load() error = %v"
)

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvBotToken)

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for missing BOT_TOKEN, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.WebhookPort != 3000 {
		t.Errorf("WebhookPort = %d, want 3000", cfg.WebhookPort)
	}

	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort = %d, want 8080", cfg.HealthPort)
	}

	if cfg.TikTokTimeout != 20*time.Second {
		t.Errorf("TikTokTimeout = %v, want 20s", cfg.TikTokTimeout)
	}

	if cfg.InstagramTimeout != 30*time.Second {
		t.Errorf("InstagramTimeout = %v, want 30s", cfg.InstagramTimeout)
	}

	if !cfg.RehostEnabled {
		t.Error("RehostEnabled = false, want true by default")
	}

	if cfg.RehostMaxBytes != 128*1024*1024 {
		t.Errorf("RehostMaxBytes = %d, want 128MiB", cfg.RehostMaxBytes)
	}

	if cfg.ButtonColumns != 2 {
		t.Errorf("ButtonColumns = %d, want 2", cfg.ButtonColumns)
	}

	if cfg.MaxAlbumButtons != 5 {
		t.Errorf("MaxAlbumButtons = %d, want 5", cfg.MaxAlbumButtons)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(testEnvBotToken, testBotToken)
	t.Setenv("OWNER_ID", "987654321")
	t.Setenv("TIKTOK_TIMEOUT", "5s")
	t.Setenv("REHOST_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.OwnerID != 987654321 {
		t.Errorf("OwnerID = %d, want 987654321", cfg.OwnerID)
	}

	if cfg.TikTokTimeout != 5*time.Second {
		t.Errorf("TikTokTimeout = %v, want 5s", cfg.TikTokTimeout)
	}

	if cfg.RehostEnabled {
		t.Error("RehostEnabled = true, want false")
	}
}
