// Package scheduler drives time-based game transitions: starting games whose
// window has opened, ending games past their end date, and processing expired
// checkpoints. All mutations go through the lifecycle service and its
// per-game lock; the scheduler keeps only its own bookkeeping.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/store"
)

type Scheduler struct {
	svc      *lifecycle.Service
	interval time.Duration
	now      func() time.Time

	busy atomic.Bool

	mu        sync.Mutex
	processed map[string]int // game id -> highest checkpoint already handled
	endTimers map[string]*time.Timer
}

func New(svc *lifecycle.Service, interval time.Duration, now func() time.Time) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		svc:       svc,
		interval:  interval,
		now:       now,
		processed: make(map[string]int),
		endTimers: make(map[string]*time.Timer),
	}
}

// Run ticks until the context is cancelled. A pass that outruns the interval
// makes the next tick a no-op rather than piling up.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Info().Dur("interval", s.interval).Msg("scheduler running")
	for {
		select {
		case <-ctx.Done():
			s.stopTimers()
			log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			if !s.busy.CompareAndSwap(false, true) {
				log.Warn().Msg("previous scheduler pass still running, skipping tick")
				continue
			}
			s.RunPass()
			s.busy.Store(false)
		}
	}
}

// RunPass scans every game once and applies whatever is due.
func (s *Scheduler) RunPass() {
	games, _ := s.svc.ListGames("", 0, 0)
	now := s.now()
	for _, g := range games {
		switch g.State {
		case store.GameWaitingForPlayers:
			s.tryStart(g, now)
		case store.GameInProgress:
			if !now.Before(g.EndDate) {
				s.tryEnd(g)
				continue
			}
			s.processExpiries(g, now)
		default:
			s.forget(g.ID)
		}
	}
}

// tryStart starts a due game on the master's behalf. A game that cannot
// start yet (too few players, window already closed) just stays waiting.
func (s *Scheduler) tryStart(g *store.Game, now time.Time) {
	if now.Before(g.StartDate) {
		return
	}
	if _, err := s.svc.StartGame(g.ID, g.GameMasterID); err != nil {
		log.Debug().Err(err).Str("game_id", g.ID).Msg("game not started")
		return
	}
	log.Info().Str("game_id", g.ID).Msg("scheduler started game")
}

func (s *Scheduler) tryEnd(g *store.Game) {
	if _, err := s.svc.EndGame(g.ID, g.GameMasterID); err != nil {
		log.Error().Err(err).Str("game_id", g.ID).Msg("scheduler could not end game")
		return
	}
	log.Info().Str("game_id", g.ID).Msg("scheduler ended game past end date")
	s.forget(g.ID)
}

// processExpiries handles checkpoints whose deadline passed since the last
// pass, in order. Processing is idempotent on the service side, so restarts
// that lose this bookkeeping at worst repeat a no-op.
func (s *Scheduler) processExpiries(g *store.Game, now time.Time) {
	s.mu.Lock()
	from := s.processed[g.ID]
	s.mu.Unlock()

	last := g.TotalCheckpoints()
	for n := from + 1; n <= last; n++ {
		if now.Before(g.Checkpoints[n-1].ExpiresAt) {
			break
		}
		res, err := s.svc.ExpireCheckpoint(g.ID, n)
		if err != nil {
			log.Error().Err(err).Str("game_id", g.ID).Int("checkpoint", n).
				Msg("checkpoint expiry pass failed")
			return
		}
		s.mu.Lock()
		s.processed[g.ID] = n
		s.mu.Unlock()
		if res.TimeoutApproved > 0 || res.ForcedCashouts > 0 {
			log.Info().Str("game_id", g.ID).Int("checkpoint", n).
				Int("timeout_approved", res.TimeoutApproved).
				Int("forced_cashouts", res.ForcedCashouts).
				Msg("expired checkpoint processed")
		}
		if n == last {
			s.armEndTimer(g)
		}
	}
}

// armEndTimer schedules the final settlement for the moment the game's end
// date arrives. Armed once per game; the periodic pass is the fallback if
// the process restarts before it fires.
func (s *Scheduler) armEndTimer(g *store.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.endTimers[g.ID]; ok {
		return
	}
	d := g.EndDate.Sub(s.now())
	if d < 0 {
		d = 0
	}
	gameID, masterID := g.ID, g.GameMasterID
	s.endTimers[gameID] = time.AfterFunc(d, func() {
		if _, err := s.svc.EndGame(gameID, masterID); err != nil {
			log.Debug().Err(err).Str("game_id", gameID).Msg("end timer found game already settled")
			return
		}
		log.Info().Str("game_id", gameID).Msg("game ended at end date")
	})
	log.Debug().Str("game_id", gameID).Dur("in", d).Msg("end timer armed")
}

// forget drops bookkeeping for a game that reached a terminal state.
func (s *Scheduler) forget(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processed, gameID)
	if t, ok := s.endTimers[gameID]; ok {
		t.Stop()
		delete(s.endTimers, gameID)
	}
}

func (s *Scheduler) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.endTimers {
		t.Stop()
		delete(s.endTimers, id)
	}
}
