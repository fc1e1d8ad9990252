package lifecycle

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/settle"
	"stake-gauntlet/internal/store"
)

// CashOut lets an active player leave an in-progress game early, taking the
// completed fraction of their stake. The forfeited remainder feeds the bonus
// pool for players who finish everything.
func (s *Service) CashOut(gameID, playerID string) (*store.Game, error) {
	unlock := s.lockGame(gameID)
	defer unlock()
	g, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	if g.State != store.GameInProgress {
		return nil, fmt.Errorf("%w: cash out requires %s", ErrWrongState, store.GameInProgress)
	}
	p := g.FindPlayer(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if p.Folded() {
		return nil, ErrPlayerFolded
	}
	s.cashOutLocked(g, p, "voluntary cash out")
	return s.game(gameID)
}

// cashOutLocked settles an active player out of the game at their current
// progress. Caller holds the game lock and has verified the player is active.
func (s *Service) cashOutLocked(g *store.Game, p *store.Player, reason string) {
	cashout := settle.CashoutAmount(p.Stake, p.CheckpointsCompleted, g.TotalCheckpoints())
	forfeit := settle.Forfeit(p.Stake, cashout)

	s.store.FoldPlayer(g.ID, p.ID, cashout)
	s.appendTx(g.ID, s.newTx(p.ID, store.TxCashout, cashout,
		fmt.Sprintf("%s at %d/%d checkpoints", reason, p.CheckpointsCompleted, g.TotalCheckpoints())))
	s.store.AdjustPools(g.ID, -cashout, cashout, forfeit)

	s.emit(EventPlayerCashedOut, g.ID, p.ID, map[string]any{
		"cashout": cashout,
		"forfeit": forfeit,
		"reason":  reason,
	})
	log.Info().Str("game_id", g.ID).Str("player_id", p.ID).
		Int64("cashout", cashout).Int64("forfeit", forfeit).Str("reason", reason).
		Msg("player cashed out")
}

// EndGame settles an in-progress game: players who did not finish are cashed
// out at their progress, full completers split the bonus pool weighted by
// stake and receive stake plus share. Flooring residue stays in the pool.
func (s *Service) EndGame(gameID, callerID string) (*store.Game, error) {
	unlock := s.lockGame(gameID)
	defer unlock()
	g, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	if callerID != g.GameMasterID {
		return nil, ErrNotGameMaster
	}
	if g.State != store.GameInProgress {
		return nil, fmt.Errorf("%w: end requires %s", ErrWrongState, store.GameInProgress)
	}

	total := g.TotalCheckpoints()
	for i := range g.Players {
		p := &g.Players[i]
		if !p.Folded() && p.CheckpointsCompleted < total {
			s.cashOutLocked(g, p, "game ended before completion")
		}
	}

	var winners []*store.Player
	var winnerStakes []int64
	for i := range g.Players {
		p := &g.Players[i]
		if !p.Folded() && p.CheckpointsCompleted == total {
			winners = append(winners, p)
			winnerStakes = append(winnerStakes, p.Stake)
		}
	}

	// Re-read pools: the pre-settlement cashouts above moved money.
	settled, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	shares := settle.BonusShares(winnerStakes, settled.BonusPool)
	var distributed int64
	for i, p := range winners {
		share := shares[i]
		payout := p.Stake + share
		s.store.SetPlayerBonus(g.ID, p.ID, share)
		s.appendTx(g.ID, s.newTx(p.ID, store.TxPayout, payout,
			fmt.Sprintf("completed all %d checkpoints: stake %d + bonus %d", total, p.Stake, share)))
		s.store.AdjustPools(g.ID, -payout, payout, -share)
		distributed += share
	}

	s.store.SetGameState(gameID, store.GameEnded, s.now())
	s.emit(EventGameEnded, gameID, "", map[string]any{
		"winners":           len(winners),
		"bonus_distributed": distributed,
	})
	log.Info().Str("game_id", gameID).Int("winners", len(winners)).
		Int64("bonus_distributed", distributed).Msg("game ended")
	return s.game(gameID)
}

// AbortGame cancels an in-progress game. Active players get their full stake
// back; money already cashed out stays cashed out, and the bonus pool is
// cleared rather than returned to the players who forfeited it.
func (s *Service) AbortGame(gameID, callerID, reason string) (*store.Game, error) {
	unlock := s.lockGame(gameID)
	defer unlock()
	g, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	if callerID != g.GameMasterID {
		return nil, ErrNotGameMaster
	}
	if g.State != store.GameInProgress {
		return nil, fmt.Errorf("%w: abort requires %s", ErrWrongState, store.GameInProgress)
	}

	for i := range g.Players {
		p := &g.Players[i]
		if p.Folded() {
			continue
		}
		s.appendTx(gameID, s.newTx(p.ID, store.TxRefund, p.Stake, "game aborted, stake refunded"))
		s.store.AdjustPools(gameID, -p.Stake, p.Stake, 0)
	}

	residual := s.store.ClearBonusPool(gameID)
	s.appendTx(gameID, s.newTx("", store.TxBonusPoolCleared, residual, "bonus pool cleared on abort"))

	s.store.SetAbortReason(gameID, reason)
	s.store.SetGameState(gameID, store.GameAborted, s.now())
	s.emit(EventGameAborted, gameID, "", map[string]any{"reason": reason, "bonus_cleared": residual})
	log.Warn().Str("game_id", gameID).Str("reason", reason).Int64("bonus_cleared", residual).
		Msg("game aborted")
	return s.game(gameID)
}

// ExpiryResult summarises what a checkpoint expiry pass did.
type ExpiryResult struct {
	Checkpoint      int `json:"checkpoint"`
	TimeoutApproved int `json:"timeout_approved"`
	ForcedCashouts  int `json:"forced_cashouts"`
}

// ExpireCheckpoint processes a checkpoint whose deadline has passed. Pending
// check-ins for it resolve in the player's favor first; then, on games
// configured to force a miss out, every active player left without an
// approved check-in for the checkpoint is cashed out at their progress.
// The operation is idempotent: a second pass finds nothing pending and
// nobody uncovered who is still active.
func (s *Service) ExpireCheckpoint(gameID string, number int) (ExpiryResult, error) {
	unlock := s.lockGame(gameID)
	defer unlock()
	g, err := s.game(gameID)
	if err != nil {
		return ExpiryResult{}, err
	}
	if number < 1 || number > g.TotalCheckpoints() {
		return ExpiryResult{}, fmt.Errorf("%w: checkpoint %d out of range", ErrValidation, number)
	}
	res := ExpiryResult{Checkpoint: number}
	if g.State != store.GameInProgress {
		return res, nil
	}
	cp := g.Checkpoints[number-1]
	if s.now().Before(cp.ExpiresAt) {
		return ExpiryResult{}, fmt.Errorf("%w: checkpoint %d has not expired yet", ErrValidation, number)
	}

	for _, c := range g.CheckIns {
		if c.CheckpointNumber != number || c.Status != store.CheckInPending {
			continue
		}
		approved := s.wf.ApproveOnTimeout(gameID, c)
		res.TimeoutApproved++
		s.emit(EventCheckInApproved, gameID, c.PlayerID, map[string]any{
			"checkin_id":  approved.ID,
			"checkpoint":  number,
			"verified_by": string(approved.VerifiedBy),
		})
	}

	if g.ForceCashoutOnMiss {
		settled, err := s.game(gameID)
		if err != nil {
			return res, err
		}
		for i := range settled.Players {
			p := &settled.Players[i]
			if p.Folded() || approvedFor(settled, p.ID, number) {
				continue
			}
			s.cashOutLocked(settled, p, fmt.Sprintf("missed checkpoint %d", number))
			res.ForcedCashouts++
		}
	}

	log.Info().Str("game_id", gameID).Int("checkpoint", number).
		Int("timeout_approved", res.TimeoutApproved).Int("forced_cashouts", res.ForcedCashouts).
		Msg("checkpoint expired")
	return res, nil
}

func approvedFor(g *store.Game, playerID string, checkpoint int) bool {
	for _, c := range g.CheckIns {
		if c.PlayerID == playerID && c.CheckpointNumber == checkpoint && c.Status == store.CheckInApproved {
			return true
		}
	}
	return false
}
