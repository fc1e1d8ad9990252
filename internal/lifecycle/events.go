package lifecycle

import (
	"time"

	"stake-gauntlet/internal/store"
)

type EventKind string

const (
	EventGameCreated        EventKind = "game_created"
	EventPlayerJoined       EventKind = "player_joined"
	EventGameStarted        EventKind = "game_started"
	EventCheckInSubmitted   EventKind = "checkin_submitted"
	EventCheckInApproved    EventKind = "checkin_approved"
	EventCheckInRejected    EventKind = "checkin_rejected"
	EventCheckInNeedsReview EventKind = "checkin_needs_review"
	EventPlayerCashedOut    EventKind = "player_cashed_out"
	EventGameEnded          EventKind = "game_ended"
	EventGameAborted        EventKind = "game_aborted"
)

// GameEvent is the unit of the per-game feed. Seq is assigned by the feed,
// monotonic within a game.
type GameEvent struct {
	Seq      int64          `json:"seq"`
	Kind     EventKind      `json:"kind"`
	GameID   string         `json:"game_id"`
	PlayerID string         `json:"player_id,omitempty"`
	At       time.Time      `json:"at"`
	Data     map[string]any `json:"data,omitempty"`
}

// Observer receives every published event, synchronously and in order.
// Implementations must not block; hand off to a queue for slow work.
type Observer interface {
	OnGameEvent(ev GameEvent)
}

// TxRecorder receives every ledger transaction as it is appended. The store
// stays authoritative; recorders are write-behind sinks.
type TxRecorder interface {
	Record(gameID string, tx store.Transaction)
}
