package store

import (
	"strings"
	"testing"
	"time"
)

func testGame(id string) *Game {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &Game{
		ID:            id,
		Title:         "morning runs",
		GameMasterID:  "gm-1",
		StakeUnit:     1000,
		MaxMultiplier: 5,
		MinPlayers:    1,
		MaxPlayers:    8,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 14),
		Checkpoints: []Checkpoint{
			{Number: 1, Description: "week one", ExpiresAt: start.AddDate(0, 0, 7)},
			{Number: 2, Description: "week two", ExpiresAt: start.AddDate(0, 0, 14)},
		},
		VerificationMethod: VerifyManual,
		State:              GameWaitingForPlayers,
		CreatedAt:          start,
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	s := New()
	s.CreateGame(testGame("g1"))
	s.AddPlayer("g1", Player{ID: "p1", DisplayName: "ann", Multiplier: 2, Stake: 2000})

	first, ok := s.GetGame("g1")
	if !ok {
		t.Fatalf("expected game g1")
	}
	first.Title = "tampered"
	first.Players[0].Stake = 0
	first.Checkpoints[0].Description = "tampered"

	second, _ := s.GetGame("g1")
	if second.Title != "morning runs" {
		t.Fatalf("title mutated through copy: %q", second.Title)
	}
	if second.Players[0].Stake != 2000 {
		t.Fatalf("player stake mutated through copy: %d", second.Players[0].Stake)
	}
	if second.Checkpoints[0].Description != "week one" {
		t.Fatalf("checkpoint mutated through copy")
	}
}

func TestCreateKeepsOwnCopy(t *testing.T) {
	s := New()
	g := testGame("g1")
	s.CreateGame(g)
	g.TotalPool = 9999

	stored, _ := s.GetGame("g1")
	if stored.TotalPool != 0 {
		t.Fatalf("caller mutation leaked into store: %d", stored.TotalPool)
	}
}

func TestMutatorPanicsOnMissingGame(t *testing.T) {
	s := New()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic for missing game")
		}
		if !strings.Contains(r.(string), "not found") {
			t.Fatalf("unexpected panic message: %v", r)
		}
	}()
	s.SetGameState("missing", GameInProgress, time.Now())
}

func TestMutatorPanicsOnMissingPlayer(t *testing.T) {
	s := New()
	s.CreateGame(testGame("g1"))
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing player")
		}
	}()
	s.FoldPlayer("g1", "ghost", 0)
}

func TestAdjustPoolsPanicsWhenNegative(t *testing.T) {
	s := New()
	s.CreateGame(testGame("g1"))
	s.AdjustPools("g1", 500, 0, 0)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for negative pool")
		}
	}()
	s.AdjustPools("g1", -600, 0, 0)
}

func TestProgressCannotExceedCheckpoints(t *testing.T) {
	s := New()
	s.CreateGame(testGame("g1"))
	s.AddPlayer("g1", Player{ID: "p1", Multiplier: 1, Stake: 1000})
	s.IncrementPlayerProgress("g1", "p1")
	s.IncrementPlayerProgress("g1", "p1")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic past final checkpoint")
		}
	}()
	s.IncrementPlayerProgress("g1", "p1")
}

func TestFoldFreezesCount(t *testing.T) {
	s := New()
	s.CreateGame(testGame("g1"))
	s.AddPlayer("g1", Player{ID: "p1", Multiplier: 2, Stake: 2000})
	s.IncrementPlayerProgress("g1", "p1")
	s.FoldPlayer("g1", "p1", 1000)

	g, _ := s.GetGame("g1")
	p := g.FindPlayer("p1")
	if !p.Folded() {
		t.Fatalf("expected folded player")
	}
	if *p.FoldedAtCheckpoint != 1 {
		t.Fatalf("folded at %d, want 1", *p.FoldedAtCheckpoint)
	}
	if p.CashoutAmount != 1000 {
		t.Fatalf("cashout %d, want 1000", p.CashoutAmount)
	}
}

func TestListGamesFilterAndOrder(t *testing.T) {
	s := New()
	s.CreateGame(testGame("g1"))
	s.CreateGame(testGame("g2"))
	s.CreateGame(testGame("g3"))
	s.SetGameState("g2", GameInProgress, time.Now())

	all, total := s.ListGames("", 10, 0)
	if total != 3 || len(all) != 3 {
		t.Fatalf("want 3 games, got total=%d len=%d", total, len(all))
	}
	if all[0].ID != "g1" || all[2].ID != "g3" {
		t.Fatalf("expected creation order, got %s..%s", all[0].ID, all[2].ID)
	}

	waiting, total := s.ListGames(GameWaitingForPlayers, 10, 0)
	if total != 2 || len(waiting) != 2 {
		t.Fatalf("want 2 waiting games, got total=%d len=%d", total, len(waiting))
	}

	page, total := s.ListGames("", 1, 1)
	if total != 3 || len(page) != 1 || page[0].ID != "g2" {
		t.Fatalf("pagination wrong: total=%d len=%d", total, len(page))
	}

	none, total := s.ListGames("", 10, 5)
	if total != 3 || len(none) != 0 {
		t.Fatalf("offset past end should return empty, got %d", len(none))
	}
}

func TestLatestCheckInPicksMostRecent(t *testing.T) {
	s := New()
	s.CreateGame(testGame("g1"))
	s.AddPlayer("g1", Player{ID: "p1", Multiplier: 1, Stake: 1000})
	s.AddCheckIn("g1", CheckIn{ID: "c1", PlayerID: "p1", CheckpointNumber: 1, Status: CheckInRejected})
	s.AddCheckIn("g1", CheckIn{ID: "c2", PlayerID: "p1", CheckpointNumber: 1, Status: CheckInPending})

	g, _ := s.GetGame("g1")
	latest := g.LatestCheckIn("p1", 1)
	if latest == nil || latest.ID != "c2" {
		t.Fatalf("expected c2 as latest, got %+v", latest)
	}
	if g.LatestCheckIn("p1", 2) != nil {
		t.Fatalf("expected nil for unattempted checkpoint")
	}
}

func TestClearBonusPool(t *testing.T) {
	s := New()
	s.CreateGame(testGame("g1"))
	s.AdjustPools("g1", 800, 0, 800)
	cleared := s.ClearBonusPool("g1")
	if cleared != 800 {
		t.Fatalf("cleared %d, want 800", cleared)
	}
	g, _ := s.GetGame("g1")
	if g.BonusPool != 0 {
		t.Fatalf("bonus pool not cleared: %d", g.BonusPool)
	}
	if g.TotalPool != 800 {
		t.Fatalf("total pool should keep residual: %d", g.TotalPool)
	}
}

func TestNewIDMonotonicWithinProcess(t *testing.T) {
	a := NewID()
	b := NewID()
	if a == b {
		t.Fatalf("ids must be unique: %s", a)
	}
	if !(a < b) {
		t.Fatalf("ids should sort by issue order: %s then %s", a, b)
	}
}
