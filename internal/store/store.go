package store

import (
	"fmt"
	"sync"
	"time"
)

// Store is the single authoritative owner of all game state. Reads hand out
// deep copies; mutators operate on the stored instance and assume the caller
// (the lifecycle service, under its per-game lock) has already validated
// preconditions. A mutator aimed at a missing entity panics: that is a
// programming error, not a recoverable condition.
type Store struct {
	mu    sync.RWMutex
	games map[string]*Game
	order []string
}

func New() *Store {
	return &Store{games: make(map[string]*Game)}
}

// CreateGame inserts the game under its id. The store keeps its own copy so
// later caller-side mutation of the argument cannot leak in.
func (s *Store) CreateGame(g *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		panic("store: game without id")
	}
	if _, exists := s.games[g.ID]; exists {
		panic(fmt.Sprintf("store: game %s already exists", g.ID))
	}
	s.games[g.ID] = g.Clone()
	s.order = append(s.order, g.ID)
}

// GetGame returns a deep copy of the game, or ok=false when absent.
func (s *Store) GetGame(id string) (*Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// ListGames returns copies in creation order, optionally filtered by state,
// plus the total count of matches before pagination.
func (s *Store) ListGames(state GameState, limit, offset int) ([]*Game, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*Game, 0, len(s.order))
	for _, id := range s.order {
		g := s.games[id]
		if state != "" && g.State != state {
			continue
		}
		matched = append(matched, g)
	}
	total := len(matched)
	if offset >= total {
		return []*Game{}, total
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]*Game, len(matched))
	for i, g := range matched {
		out[i] = g.Clone()
	}
	return out, total
}

// SetGameState transitions the stored game and stamps started/ended times.
func (s *Store) SetGameState(id string, state GameState, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	g.State = state
	switch state {
	case GameInProgress:
		t := at
		g.StartedAt = &t
	case GameEnded, GameAborted:
		t := at
		g.EndedAt = &t
	}
}

func (s *Store) SetAbortReason(id, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustGame(id).AbortReason = reason
}

func (s *Store) AddPlayer(id string, p Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	if g.FindPlayer(p.ID) != nil {
		panic(fmt.Sprintf("store: game %s already has player %s", id, p.ID))
	}
	g.Players = append(g.Players, p)
}

func (s *Store) AddCheckIn(id string, c CheckIn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	if g.FindCheckIn(c.ID) != nil {
		panic(fmt.Sprintf("store: game %s already has check-in %s", id, c.ID))
	}
	g.CheckIns = append(g.CheckIns, c)
}

// RemoveCheckIn deletes a check-in record outright. Used only to roll back
// a submission the AI judged invalid.
func (s *Store) RemoveCheckIn(id, checkInID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	for i := range g.CheckIns {
		if g.CheckIns[i].ID == checkInID {
			g.CheckIns = append(g.CheckIns[:i], g.CheckIns[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("store: game %s has no check-in %s", id, checkInID))
}

// SetCheckInDecision moves a check-in to a terminal status and records who
// decided, when, and with what confidence.
func (s *Store) SetCheckInDecision(id, checkInID string, status CheckInStatus, by VerifierKind, confidence float64, notes string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	c := s.mustCheckIn(g, checkInID)
	c.Status = status
	c.VerifiedBy = by
	c.Confidence = confidence
	c.Notes = notes
	t := at
	c.VerifiedAt = &t
}

// SetCheckInAIReview attaches AI metadata to a check-in that stays PENDING
// for a human decision.
func (s *Store) SetCheckInAIReview(id, checkInID string, confidence float64, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	c := s.mustCheckIn(g, checkInID)
	c.VerifiedBy = VerifiedByAI
	c.Confidence = confidence
	c.Notes = notes
}

// IncrementPlayerProgress bumps the completed-checkpoint counter and returns
// the new value. Progress above the configured checkpoint count means the
// engine and store disagree about approvals, so it panics.
func (s *Store) IncrementPlayerProgress(id, playerID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	p := s.mustPlayer(g, playerID)
	p.CheckpointsCompleted++
	if p.CheckpointsCompleted > len(g.Checkpoints) {
		panic(fmt.Sprintf("store: game %s player %s progress %d exceeds %d checkpoints",
			id, playerID, p.CheckpointsCompleted, len(g.Checkpoints)))
	}
	return p.CheckpointsCompleted
}

// FoldPlayer freezes the player at their current completed count and records
// the cashout paid to them.
func (s *Store) FoldPlayer(id, playerID string, cashout int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	p := s.mustPlayer(g, playerID)
	if p.Folded() {
		panic(fmt.Sprintf("store: game %s player %s already folded", id, playerID))
	}
	at := p.CheckpointsCompleted
	p.FoldedAtCheckpoint = &at
	p.CashoutAmount = cashout
}

func (s *Store) SetPlayerBonus(id, playerID string, bonus int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	p := s.mustPlayer(g, playerID)
	b := bonus
	p.BonusWon = &b
}

func (s *Store) AppendTransaction(id string, tx Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	g.Transactions = append(g.Transactions, tx)
}

// AdjustPools applies deltas to the three money counters. Any counter going
// negative means money was created or destroyed somewhere, which is fatal.
func (s *Store) AdjustPools(id string, pool, cashouts, bonus int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	g.TotalPool += pool
	g.TotalCashouts += cashouts
	g.BonusPool += bonus
	if g.TotalPool < 0 || g.TotalCashouts < 0 || g.BonusPool < 0 {
		panic(fmt.Sprintf("store: game %s pools negative after adjust (pool=%d cashouts=%d bonus=%d)",
			id, g.TotalPool, g.TotalCashouts, g.BonusPool))
	}
}

// ClearBonusPool zeroes the bonus pool and returns the residual it held.
func (s *Store) ClearBonusPool(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.mustGame(id)
	residual := g.BonusPool
	g.BonusPool = 0
	return residual
}

func (s *Store) mustGame(id string) *Game {
	g, ok := s.games[id]
	if !ok {
		panic(fmt.Sprintf("store: game %s not found", id))
	}
	return g
}

func (s *Store) mustPlayer(g *Game, playerID string) *Player {
	p := g.FindPlayer(playerID)
	if p == nil {
		panic(fmt.Sprintf("store: game %s has no player %s", g.ID, playerID))
	}
	return p
}

func (s *Store) mustCheckIn(g *Game, checkInID string) *CheckIn {
	c := g.FindCheckIn(checkInID)
	if c == nil {
		panic(fmt.Sprintf("store: game %s has no check-in %s", g.ID, checkInID))
	}
	return c
}
