package lifecycle

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/store"
)

// SubmitCheckIn records a proof submission for a checkpoint. On AI-verified
// games the verdict is applied before this returns, so the returned check-in
// may already be APPROVED or REJECTED.
func (s *Service) SubmitCheckIn(ctx context.Context, gameID, playerID string, checkpoint int, proof string) (store.CheckIn, error) {
	unlock := s.lockGame(gameID)
	defer unlock()
	g, err := s.game(gameID)
	if err != nil {
		return store.CheckIn{}, err
	}
	if g.State != store.GameInProgress {
		return store.CheckIn{}, fmt.Errorf("%w: check-ins require %s", ErrWrongState, store.GameInProgress)
	}
	p := g.FindPlayer(playerID)
	if p == nil {
		return store.CheckIn{}, ErrPlayerNotFound
	}
	if p.Folded() {
		return store.CheckIn{}, ErrPlayerFolded
	}

	checkIn, err := s.wf.Submit(ctx, g, playerID, checkpoint, proof)
	if err != nil {
		return store.CheckIn{}, err
	}

	s.emit(EventCheckInSubmitted, gameID, playerID, map[string]any{
		"checkin_id": checkIn.ID,
		"checkpoint": checkpoint,
	})
	switch {
	case checkIn.Status == store.CheckInApproved:
		s.emit(EventCheckInApproved, gameID, playerID, map[string]any{
			"checkin_id":  checkIn.ID,
			"checkpoint":  checkpoint,
			"verified_by": string(checkIn.VerifiedBy),
		})
	case checkIn.Status == store.CheckInRejected:
		s.emit(EventCheckInRejected, gameID, playerID, map[string]any{
			"checkin_id":  checkIn.ID,
			"checkpoint":  checkpoint,
			"verified_by": string(checkIn.VerifiedBy),
		})
	case checkIn.VerifiedBy == store.VerifiedByAI:
		// AI looked but would not decide; a human has to.
		s.emit(EventCheckInNeedsReview, gameID, playerID, map[string]any{
			"checkin_id": checkIn.ID,
			"checkpoint": checkpoint,
			"confidence": checkIn.Confidence,
		})
	}
	log.Info().Str("game_id", gameID).Str("player_id", playerID).
		Int("checkpoint", checkpoint).Str("status", string(checkIn.Status)).
		Msg("check-in submitted")
	return checkIn, nil
}

// VerifyCheckIn applies the game master's verdict to a pending check-in.
func (s *Service) VerifyCheckIn(gameID, callerID, checkInID string, approve bool, notes string) (store.CheckIn, error) {
	unlock := s.lockGame(gameID)
	defer unlock()
	g, err := s.game(gameID)
	if err != nil {
		return store.CheckIn{}, err
	}
	if callerID != g.GameMasterID {
		return store.CheckIn{}, ErrNotGameMaster
	}
	if g.State != store.GameInProgress {
		return store.CheckIn{}, fmt.Errorf("%w: verification requires %s", ErrWrongState, store.GameInProgress)
	}

	checkIn, err := s.wf.Decide(g, checkInID, approve, notes)
	if err != nil {
		return store.CheckIn{}, err
	}

	kind := EventCheckInRejected
	if approve {
		kind = EventCheckInApproved
	}
	s.emit(kind, gameID, checkIn.PlayerID, map[string]any{
		"checkin_id":  checkIn.ID,
		"checkpoint":  checkIn.CheckpointNumber,
		"verified_by": string(checkIn.VerifiedBy),
	})
	log.Info().Str("game_id", gameID).Str("checkin_id", checkInID).
		Bool("approved", approve).Msg("check-in verified")
	return checkIn, nil
}
