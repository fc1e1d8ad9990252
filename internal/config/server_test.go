package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.PostgresDSN != "" {
		t.Fatalf("PostgresDSN should default empty, got %q", cfg.PostgresDSN)
	}
	if cfg.NotifyWorkers != 4 {
		t.Fatalf("NotifyWorkers = %d, want 4", cfg.NotifyWorkers)
	}
	if cfg.ShutdownTimeoutSeconds != 10 {
		t.Fatalf("ShutdownTimeoutSeconds = %d, want 10", cfg.ShutdownTimeoutSeconds)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("NOTIFY_ENABLED", "true")
	t.Setenv("NOTIFY_RETRY_BASE_MS", "250")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
	if !cfg.NotifyEnabled {
		t.Fatalf("NotifyEnabled not parsed")
	}
	if cfg.NotifyRetryBaseMS != 250 {
		t.Fatalf("NotifyRetryBaseMS = %d, want 250", cfg.NotifyRetryBaseMS)
	}
}

func TestLoadAIDefaults(t *testing.T) {
	cfg, err := LoadAI()
	if err != nil {
		t.Fatalf("LoadAI() error = %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Fatalf("Model = %q", cfg.Model)
	}
	if cfg.TimeoutSeconds != 30 {
		t.Fatalf("TimeoutSeconds = %d, want 30", cfg.TimeoutSeconds)
	}
}

func TestLoadSchedulerParse(t *testing.T) {
	t.Setenv("SCHEDULER_INTERVAL_SECONDS", "60")
	t.Setenv("START_GRACE_MINUTES", "120")

	cfg, err := LoadScheduler()
	if err != nil {
		t.Fatalf("LoadScheduler() error = %v", err)
	}
	if cfg.IntervalSeconds != 60 || cfg.StartGraceMinutes != 120 {
		t.Fatalf("unexpected scheduler config: %+v", cfg)
	}
}
