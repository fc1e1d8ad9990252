package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stake-gauntlet/internal/config"
)

// FromServer maps the flat server environment onto a notifier config and
// loads the initial target list from NOTIFY_CONFIG_PATH.
func FromServer(cfg config.ServerConfig) (Config, error) {
	out := Config{
		Enabled:             cfg.NotifyEnabled,
		ConfigPath:          strings.TrimSpace(cfg.NotifyConfigPath),
		ConfigReload:        time.Duration(cfg.NotifyConfigReloadMS) * time.Millisecond,
		Workers:             cfg.NotifyWorkers,
		RetryMax:            cfg.NotifyRetryMax,
		RetryBase:           time.Duration(cfg.NotifyRetryBaseMS) * time.Millisecond,
		FailureThreshold:    3,
		CircuitOpenDuration: 30 * time.Second,
		RequestTimeout:      5 * time.Second,
		DispatchBuffer:      2048,
	}
	if !out.Enabled {
		return out, nil
	}
	if out.Workers <= 0 {
		out.Workers = 4
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}
	if out.RetryBase <= 0 {
		out.RetryBase = 500 * time.Millisecond
	}
	if out.ConfigReload <= 0 {
		out.ConfigReload = time.Second
	}
	if out.ConfigPath == "" {
		return out, nil
	}

	raw, err := os.ReadFile(out.ConfigPath)
	if err != nil {
		return Config{}, fmt.Errorf("read notify config %q: %w", out.ConfigPath, err)
	}
	targets, err := ParseTargets(raw)
	if err != nil {
		return Config{}, err
	}
	out.Targets = targets
	return out, nil
}

// ParseTargets accepts either a JSON or a YAML list of targets. Disabled
// entries, unknown scopes, and targets without an endpoint are filtered out.
func ParseTargets(raw []byte) ([]Target, error) {
	var targets []Target
	if err := json.Unmarshal(raw, &targets); err != nil {
		targets = nil
		if yamlErr := yaml.Unmarshal(raw, &targets); yamlErr != nil {
			return nil, fmt.Errorf("parse notify targets: %w", yamlErr)
		}
	}
	filtered := make([]Target, 0, len(targets))
	for _, target := range targets {
		target.Platform = strings.ToLower(strings.TrimSpace(target.Platform))
		target.ScopeType = strings.ToLower(strings.TrimSpace(target.ScopeType))
		if target.ScopeType == "" {
			target.ScopeType = "all"
		}
		if target.ScopeType != "all" && target.ScopeType != "game" && target.ScopeType != "master" {
			continue
		}
		target.Endpoint = strings.TrimSpace(target.Endpoint)
		if target.Endpoint == "" {
			continue
		}
		if !target.Enabled {
			continue
		}
		for i := range target.EventAllowlist {
			target.EventAllowlist[i] = strings.TrimSpace(strings.ToLower(target.EventAllowlist[i]))
		}
		filtered = append(filtered, target)
	}
	return filtered, nil
}
