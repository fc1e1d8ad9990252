package config

import "testing"

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" {
		t.Fatalf("Level = %q, want info", cfg.Level)
	}
	if cfg.SampleEvery != 0 || cfg.MaxMB != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_SAMPLE_EVERY", "100")
	t.Setenv("LOG_FILE", "/tmp/gauntlet.log")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || cfg.SampleEvery != 100 || cfg.File != "/tmp/gauntlet.log" {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}

func TestLoadLogRejectsBadNumber(t *testing.T) {
	t.Setenv("LOG_SAMPLE_EVERY", "every-so-often")

	if _, err := LoadLog(); err == nil {
		t.Fatal("expected parse error for non-numeric LOG_SAMPLE_EVERY")
	}
}
