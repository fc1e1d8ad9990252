package notify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/notify/platforms"
	"stake-gauntlet/internal/store"
)

type fakeAdapter struct {
	mu        sync.Mutex
	calls     int
	failFirst int
	forceFail bool
	messages  []platforms.Message
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) Send(_ context.Context, _ string, _ string, msg platforms.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, msg)
	if f.forceFail || f.calls <= f.failFirst {
		return errors.New("fail")
	}
	return nil
}

func (f *fakeAdapter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAdapter) Messages() []platforms.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platforms.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

type fakeDirectory struct {
	games map[string]*store.Game
}

func (d *fakeDirectory) GetGame(id string) (*store.Game, error) {
	g, ok := d.games[id]
	if !ok {
		return nil, errors.New("game not found")
	}
	return g, nil
}

func joinEvent(gameID string) lifecycle.GameEvent {
	return lifecycle.GameEvent{
		Kind:     lifecycle.EventPlayerJoined,
		GameID:   gameID,
		PlayerID: "p1",
		At:       time.Now(),
		Data:     map[string]any{"stake": int64(400), "multiplier": 4},
	}
}

func TestManagerRetryThenSuccess(t *testing.T) {
	cfg := Config{
		Enabled:   true,
		Targets:   []Target{{Platform: "fake", Endpoint: "https://example.com", ScopeType: "all", Enabled: true}},
		Workers:   1,
		RetryMax:  2,
		RetryBase: 5 * time.Millisecond,
	}
	m := NewManager(cfg, &fakeDirectory{})
	fake := &fakeAdapter{failFirst: 1}
	m.adapters = map[string]platforms.Adapter{"fake": fake}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start manager: %v", err)
	}
	ok := m.enqueue(pushJob{
		Target:    cfg.Targets[0],
		Event:     joinEvent("g1"),
		Formatted: Message{Title: "title", Description: "summary"},
	})
	if !ok {
		t.Fatal("expected enqueue success")
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if fake.Calls() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected at least 2 calls, got %d", fake.Calls())
}

func TestOnGameEventScopeRouting(t *testing.T) {
	dir := &fakeDirectory{games: map[string]*store.Game{
		"g1": {ID: "g1", Title: "morning runs", GameMasterID: "gm-1"},
	}}
	cfg := Config{
		Enabled: true,
		Targets: []Target{
			{Platform: "fake", Endpoint: "https://example.com/a", ScopeType: "master", ScopeValue: "gm-1", Enabled: true},
			{Platform: "fake", Endpoint: "https://example.com/b", ScopeType: "game", ScopeValue: "other", Enabled: true},
		},
		Workers:   1,
		RetryMax:  0,
		RetryBase: 5 * time.Millisecond,
	}
	m := NewManager(cfg, dir)
	fake := &fakeAdapter{}
	m.adapters = map[string]platforms.Adapter{"fake": fake}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start manager: %v", err)
	}

	m.OnGameEvent(joinEvent("g1"))

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if fake.Calls() >= 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(30 * time.Millisecond)
	if fake.Calls() != 1 {
		t.Fatalf("expected exactly 1 call for the master-scoped target, got %d", fake.Calls())
	}
	msgs := fake.Messages()
	if len(msgs) != 1 || msgs[0].Title != "Player Joined · morning runs" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestCircuitBreakerSuppressesSends(t *testing.T) {
	cfg := Config{
		Enabled:             true,
		Targets:             []Target{{Platform: "fake", Endpoint: "https://example.com", ScopeType: "all", Enabled: true}},
		Workers:             1,
		RetryMax:            0,
		RetryBase:           5 * time.Millisecond,
		FailureThreshold:    2,
		CircuitOpenDuration: time.Hour,
	}
	m := NewManager(cfg, &fakeDirectory{})
	fake := &fakeAdapter{forceFail: true}
	m.adapters = map[string]platforms.Adapter{"fake": fake}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start manager: %v", err)
	}

	for i := 0; i < 3; i++ {
		m.OnGameEvent(joinEvent("g1"))
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if fake.Calls() >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	if fake.Calls() != 2 {
		t.Fatalf("expected breaker to open after 2 failures, got %d calls", fake.Calls())
	}
}

func TestConfigFileAutoReloadAppliesWithoutRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.json")
	if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
		t.Fatalf("write initial targets: %v", err)
	}

	cfg := Config{
		Enabled:      true,
		ConfigPath:   path,
		ConfigReload: 20 * time.Millisecond,
		Targets:      nil,
		Workers:      1,
		RetryMax:     0,
		RetryBase:    5 * time.Millisecond,
	}
	m := NewManager(cfg, &fakeDirectory{})
	fake := &fakeAdapter{}
	m.adapters = map[string]platforms.Adapter{"fake": fake}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start manager: %v", err)
	}

	m.OnGameEvent(joinEvent("g1"))
	time.Sleep(40 * time.Millisecond)
	if fake.Calls() != 0 {
		t.Fatalf("expected no calls before config reload, got %d", fake.Calls())
	}

	updated := `[{"platform":"fake","endpoint":"https://example.com","scope_type":"all","enabled":true}]`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("write updated targets: %v", err)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if len(m.currentTargets()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(m.currentTargets()) != 1 {
		t.Fatal("expected reloaded targets in manager")
	}

	m.OnGameEvent(joinEvent("g1"))
	deadline = time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if fake.Calls() >= 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected at least 1 call after reload, got %d", fake.Calls())
}

func TestDisabledManagerIgnoresEvents(t *testing.T) {
	m := NewManager(Config{Enabled: false, Targets: []Target{{Platform: "fake", Endpoint: "https://example.com", ScopeType: "all", Enabled: true}}}, &fakeDirectory{})
	fake := &fakeAdapter{}
	m.adapters = map[string]platforms.Adapter{"fake": fake}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start manager: %v", err)
	}
	m.OnGameEvent(joinEvent("g1"))
	time.Sleep(20 * time.Millisecond)
	if fake.Calls() != 0 {
		t.Fatalf("expected no sends when disabled, got %d", fake.Calls())
	}
}
