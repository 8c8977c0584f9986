package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUOTADECK_CACHE_PATH", filepath.Join(t.TempDir(), "snapshot.db"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BaseURL != "https://cloudcode-pa.googleapis.com" {
		t.Errorf("baseURL = %s", cfg.BaseURL)
	}
	if cfg.RefreshInterval != 60*time.Second {
		t.Errorf("refreshInterval = %v", cfg.RefreshInterval)
	}
	if cfg.CountdownInterval != time.Second {
		t.Errorf("countdownInterval = %v", cfg.CountdownInterval)
	}
	if cfg.SearchDebounce != 300*time.Millisecond {
		t.Errorf("searchDebounce = %v", cfg.SearchDebounce)
	}
	if cfg.MaxConcurrent != 5 {
		t.Errorf("maxConcurrent = %d", cfg.MaxConcurrent)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QUOTADECK_CACHE_PATH", filepath.Join(t.TempDir(), "snapshot.db"))
	t.Setenv("QUOTADECK_REFRESH_INTERVAL", "2m")
	t.Setenv("QUOTADECK_MAX_CONCURRENT", "10")
	t.Setenv("QUOTADECK_BASE_URL", "http://localhost:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != 2*time.Minute {
		t.Errorf("refreshInterval = %v, want 2m", cfg.RefreshInterval)
	}
	if cfg.MaxConcurrent != 10 {
		t.Errorf("maxConcurrent = %d, want 10", cfg.MaxConcurrent)
	}
	if cfg.BaseURL != "http://localhost:9999" {
		t.Errorf("baseURL = %s", cfg.BaseURL)
	}
}

func TestLoad_BareSecondsDuration(t *testing.T) {
	t.Setenv("QUOTADECK_CACHE_PATH", filepath.Join(t.TempDir(), "snapshot.db"))
	t.Setenv("QUOTADECK_REFRESH_INTERVAL", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != 90*time.Second {
		t.Errorf("refreshInterval = %v, want 90s", cfg.RefreshInterval)
	}
}

func TestLoad_RejectsSubSecondRefresh(t *testing.T) {
	t.Setenv("QUOTADECK_CACHE_PATH", filepath.Join(t.TempDir(), "snapshot.db"))
	t.Setenv("QUOTADECK_REFRESH_INTERVAL", "500ms")

	if _, err := Load(); err == nil {
		t.Fatal("refresh intervals below 1s should be rejected")
	}
}

func TestLoad_MinimumConcurrency(t *testing.T) {
	t.Setenv("QUOTADECK_CACHE_PATH", filepath.Join(t.TempDir(), "snapshot.db"))
	t.Setenv("QUOTADECK_MAX_CONCURRENT", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxConcurrent != 1 {
		t.Errorf("maxConcurrent = %d, want floor of 1", cfg.MaxConcurrent)
	}
}
