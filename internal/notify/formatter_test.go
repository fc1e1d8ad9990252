package notify

import (
	"strings"
	"testing"
	"time"

	"stake-gauntlet/internal/lifecycle"
)

func TestFormatPlayerJoined(t *testing.T) {
	ev := lifecycle.GameEvent{
		Kind:     lifecycle.EventPlayerJoined,
		GameID:   "01JX0000000000000000000000",
		PlayerID: "ann",
		At:       time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		Data:     map[string]any{"stake": int64(400), "multiplier": 4},
	}
	msg, ok := Format(ev, "morning runs")
	if !ok {
		t.Fatal("expected formatter to handle player_joined")
	}
	if msg.Title != "Player Joined · morning runs" {
		t.Fatalf("unexpected title: %s", msg.Title)
	}
	if msg.Color != colorGood {
		t.Fatalf("unexpected color: %d", msg.Color)
	}
	if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
		t.Fatalf("invalid timestamp: %v", err)
	}
	foundStake := false
	for _, f := range msg.Fields {
		if f.Name == "Stake" {
			foundStake = true
			if f.Value != "400" {
				t.Fatalf("unexpected stake field: %s", f.Value)
			}
		}
	}
	if !foundStake {
		t.Fatal("expected stake field")
	}
}

func TestFormatFallsBackToShortID(t *testing.T) {
	ev := lifecycle.GameEvent{
		Kind:   lifecycle.EventGameCreated,
		GameID: "01JX0000000000000000000000",
		At:     time.Now(),
		Data:   map[string]any{"title": "morning runs"},
	}
	msg, ok := Format(ev, "")
	if !ok {
		t.Fatal("expected formatter to handle game_created")
	}
	if !strings.Contains(msg.Title, "01JX000000") {
		t.Fatalf("expected shortened game id in title, got %s", msg.Title)
	}
	if len(ev.GameID) <= shortIDLimit {
		t.Fatalf("test id must be longer than the short limit")
	}
}

func TestFormatCashOutIncludesReason(t *testing.T) {
	ev := lifecycle.GameEvent{
		Kind:     lifecycle.EventPlayerCashedOut,
		GameID:   "g1",
		PlayerID: "ben",
		At:       time.Now(),
		Data: map[string]any{
			"cashout": int64(1200),
			"forfeit": int64(800),
			"reason":  "missed checkpoint 3",
		},
	}
	msg, ok := Format(ev, "morning runs")
	if !ok {
		t.Fatal("expected formatter to handle player_cashed_out")
	}
	if msg.Color != colorWarn {
		t.Fatalf("unexpected color: %d", msg.Color)
	}
	foundReason := false
	for _, f := range msg.Fields {
		if f.Name == "Reason" {
			foundReason = true
			if f.Value != "missed checkpoint 3" {
				t.Fatalf("unexpected reason: %s", f.Value)
			}
			if f.Inline {
				t.Fatal("expected reason field to be non-inline")
			}
		}
	}
	if !foundReason {
		t.Fatal("expected reason field")
	}
	if !strings.Contains(msg.Description, "800") {
		t.Fatalf("expected forfeit in description, got %s", msg.Description)
	}
}

func TestFormatNeedsReviewConfidence(t *testing.T) {
	ev := lifecycle.GameEvent{
		Kind:     lifecycle.EventCheckInNeedsReview,
		GameID:   "g1",
		PlayerID: "cara",
		At:       time.Now(),
		Data:     map[string]any{"checkpoint": 2, "confidence": 0.55},
	}
	msg, ok := Format(ev, "morning runs")
	if !ok {
		t.Fatal("expected formatter to handle checkin_needs_review")
	}
	if msg.Color != colorWarn {
		t.Fatalf("unexpected color: %d", msg.Color)
	}
	for _, f := range msg.Fields {
		if f.Name == "Confidence" && f.Value != "0.55" {
			t.Fatalf("unexpected confidence: %s", f.Value)
		}
	}
}

func TestFormatUnknownKind(t *testing.T) {
	if _, ok := Format(lifecycle.GameEvent{Kind: "something_else"}, "x"); ok {
		t.Fatal("unknown kinds must not produce a message")
	}
}
