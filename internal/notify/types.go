package notify

import (
	"time"

	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/store"
)

// Target is one configured webhook destination. Scope narrows which games it
// hears about: a single game, every game run by one game master, or all.
type Target struct {
	Platform       string   `json:"platform" yaml:"platform"`
	Endpoint       string   `json:"endpoint" yaml:"endpoint"`
	Secret         string   `json:"secret" yaml:"secret"`
	ScopeType      string   `json:"scope_type" yaml:"scope_type"`
	ScopeValue     string   `json:"scope_value" yaml:"scope_value"`
	EventAllowlist []string `json:"event_allowlist" yaml:"event_allowlist"`
	Enabled        bool     `json:"enabled" yaml:"enabled"`
}

type Config struct {
	Enabled             bool
	ConfigPath          string
	ConfigReload        time.Duration
	Targets             []Target
	Workers             int
	RetryMax            int
	RetryBase           time.Duration
	FailureThreshold    int
	CircuitOpenDuration time.Duration
	RequestTimeout      time.Duration
	DispatchBuffer      int
}

// GameDirectory resolves games for routing and message context. Satisfied by
// the lifecycle service.
type GameDirectory interface {
	GetGame(id string) (*store.Game, error)
}

type MessageField struct {
	Name   string
	Value  string
	Inline bool
}

// Message is the platform-independent rendering of a game event.
type Message struct {
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	Fields      []MessageField
}

type pushJob struct {
	Target    Target
	Event     lifecycle.GameEvent
	Formatted Message
	Attempt   int
}

func (j pushJob) key() string {
	return targetKey(j.Target)
}

func targetKey(t Target) string {
	return t.Platform + "|" + t.Endpoint + "|" + t.ScopeType + "|" + t.ScopeValue
}
