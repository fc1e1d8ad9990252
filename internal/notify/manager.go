// Package notify fans game events out to configured webhooks (Discord,
// Feishu, plain JSON). Delivery is asynchronous over a worker pool with
// retries and a per-target circuit breaker; a slow or dead webhook can only
// ever cost notifications, never game progress.
package notify

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/notify/platforms"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

type gameHeader struct {
	title    string
	masterID string
}

type Manager struct {
	cfg      Config
	router   router
	games    GameDirectory
	adapters map[string]platforms.Adapter

	dispatchCh chan pushJob
	retryQ     *retryQueue
	done       chan struct{}

	mu           sync.Mutex
	started      bool
	targets      []Target
	headerByGame map[string]gameHeader
	breakerByKey map[string]breakerState
}

func NewManager(cfg Config, games GameDirectory) *Manager {
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	adapters := map[string]platforms.Adapter{
		"discord": platforms.NewDiscordAdapter(client),
		"feishu":  platforms.NewFeishuAdapter(client),
		"json":    platforms.NewJSONAdapter(client),
	}
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 2048
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}

	m := &Manager{
		cfg:          cfg,
		games:        games,
		adapters:     adapters,
		dispatchCh:   make(chan pushJob, cfg.DispatchBuffer),
		done:         make(chan struct{}),
		targets:      cfg.Targets,
		headerByGame: map[string]gameHeader{},
		breakerByKey: map[string]breakerState{},
	}
	m.retryQ = newRetryQueue(m.dispatchCh, m.done)
	return m
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		go m.worker(ctx)
	}
	if m.cfg.ConfigPath != "" {
		go m.watchConfigLoop(ctx)
	}
	go func() {
		<-ctx.Done()
		close(m.done)
	}()
	log.Info().Int("workers", m.cfg.Workers).Int("targets", len(m.targets)).
		Msg("notify manager running")
	return nil
}

// OnGameEvent implements the lifecycle observer. It runs on the game command
// path, so it only routes, formats, and enqueues; a full dispatch queue
// drops the notification.
func (m *Manager) OnGameEvent(ev lifecycle.GameEvent) {
	if !m.cfg.Enabled {
		return
	}
	header := m.header(ev.GameID)
	targets := m.router.matchTargets(m.currentTargets(), ev, header.masterID)
	if len(targets) == 0 {
		m.forgetTerminal(ev)
		return
	}
	formatted, ok := Format(ev, header.title)
	if !ok {
		m.forgetTerminal(ev)
		return
	}
	for _, target := range targets {
		job := pushJob{Target: target, Event: ev, Formatted: formatted}
		if !m.enqueue(job) {
			metricNotifyDroppedTotal.Add(1)
		}
	}
	m.forgetTerminal(ev)
}

func (m *Manager) enqueue(job pushJob) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- job:
		metricNotifyQueuedTotal.Add(1)
		metricNotifyQueueLen.Set(int64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}

// header returns the game's immutable title and master id, cached after the
// first lookup.
func (m *Manager) header(gameID string) gameHeader {
	m.mu.Lock()
	if h, ok := m.headerByGame[gameID]; ok {
		m.mu.Unlock()
		return h
	}
	m.mu.Unlock()

	h := gameHeader{}
	if g, err := m.games.GetGame(gameID); err == nil {
		h = gameHeader{title: g.Title, masterID: g.GameMasterID}
	}
	m.mu.Lock()
	m.headerByGame[gameID] = h
	m.mu.Unlock()
	return h
}

func (m *Manager) forgetTerminal(ev lifecycle.GameEvent) {
	if ev.Kind != lifecycle.EventGameEnded && ev.Kind != lifecycle.EventGameAborted {
		return
	}
	m.mu.Lock()
	delete(m.headerByGame, ev.GameID)
	m.mu.Unlock()
}

func (m *Manager) currentTargets() []Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Target, len(m.targets))
	copy(out, m.targets)
	return out
}

func (m *Manager) watchConfigLoop(ctx context.Context) {
	interval := m.cfg.ConfigReload
	if interval <= 0 {
		interval = time.Second
	}
	lastRaw := ""
	if raw, err := os.ReadFile(m.cfg.ConfigPath); err == nil {
		lastRaw = strings.TrimSpace(string(raw))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			raw, err := os.ReadFile(m.cfg.ConfigPath)
			if err != nil {
				metricNotifyConfigReloadError.Add(1)
				continue
			}
			nextRaw := strings.TrimSpace(string(raw))
			if nextRaw == lastRaw {
				continue
			}
			targets, err := ParseTargets([]byte(nextRaw))
			if err != nil {
				metricNotifyConfigReloadError.Add(1)
				log.Warn().Err(err).Str("path", m.cfg.ConfigPath).Msg("notify target reload failed")
				continue
			}
			m.mu.Lock()
			m.targets = targets
			m.mu.Unlock()
			lastRaw = nextRaw
			metricNotifyConfigReloadTotal.Add(1)
			log.Info().Int("targets", len(targets)).Msg("notify targets reloaded")
		}
	}
}
