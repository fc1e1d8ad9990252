package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/store"
)

// Workflow owns every check-in status transition: submission, manual and AI
// verification, and timeout approval. Callers (the lifecycle service) hold
// the per-game lock and have already validated game-level preconditions:
// the game is in progress and the player exists and has not folded.
type Workflow struct {
	store    *store.Store
	provider Provider
	timeout  time.Duration
	now      func() time.Time
}

func NewWorkflow(st *store.Store, provider Provider, timeout time.Duration, now func() time.Time) *Workflow {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Workflow{store: st, provider: provider, timeout: timeout, now: now}
}

// Submit persists a new PENDING check-in and, for AI-verified games, judges
// it synchronously. The returned check-in reflects the final stored state.
// An INVALID_SUBMISSION outcome rolls the record back entirely and surfaces
// ErrInvalidSubmission; no attempt is persisted.
func (w *Workflow) Submit(ctx context.Context, g *store.Game, playerID string, checkpoint int, proof string) (store.CheckIn, error) {
	if checkpoint < 1 || checkpoint > g.TotalCheckpoints() {
		return store.CheckIn{}, ErrCheckpointOutOfRange
	}
	cp := g.Checkpoints[checkpoint-1]
	now := w.now()
	if !now.Before(cp.ExpiresAt) {
		return store.CheckIn{}, ErrCheckpointExpired
	}
	if prev := g.LatestCheckIn(playerID, checkpoint); prev != nil && prev.Status != store.CheckInRejected {
		return store.CheckIn{}, ErrCheckInBlocked
	}

	checkIn := store.CheckIn{
		ID:               store.NewID(),
		PlayerID:         playerID,
		CheckpointNumber: checkpoint,
		Proof:            proof,
		SubmittedAt:      now,
		Status:           store.CheckInPending,
	}
	w.store.AddCheckIn(g.ID, checkIn)

	if g.VerificationMethod == store.VerifyAI {
		if err := w.judge(ctx, g, cp, checkIn); err != nil {
			return store.CheckIn{}, err
		}
	}
	return w.readBack(g.ID, checkIn.ID), nil
}

// judge runs the AI decision for a freshly stored check-in. Provider
// failures of any kind leave the check-in pending for a human, with the
// failure recorded on it; they never fail the submission.
func (w *Workflow) judge(ctx context.Context, g *store.Game, cp store.Checkpoint, checkIn store.CheckIn) error {
	req := DecisionRequest{
		Objective:             g.Objective,
		Action:                g.Action,
		Reward:                g.Reward,
		Failure:               g.Failure,
		CheckpointDescription: cp.Description,
		Proof:                 checkIn.Proof,
		SampleApproved:        cp.SampleApproved,
		SampleRejected:        cp.SampleRejected,
	}
	if g.AIVerification != nil {
		req.MasterPrompt = g.AIVerification.Prompt
		req.Model = g.AIVerification.Model
	}

	judgeCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	dec, err := w.provider.Decide(judgeCtx, req)
	if err != nil {
		log.Warn().Err(err).Str("game_id", g.ID).Str("checkin_id", checkIn.ID).
			Msg("ai judge unavailable, leaving check-in for manual review")
		w.store.SetCheckInAIReview(g.ID, checkIn.ID, 0, "ai review failed: "+err.Error())
		return nil
	}

	switch dec.Outcome {
	case OutcomeApproved:
		w.store.SetCheckInDecision(g.ID, checkIn.ID, store.CheckInApproved, store.VerifiedByAI, dec.Confidence, dec.Reasoning, w.now())
		w.store.IncrementPlayerProgress(g.ID, checkIn.PlayerID)
	case OutcomeRejected:
		w.store.SetCheckInDecision(g.ID, checkIn.ID, store.CheckInRejected, store.VerifiedByAI, dec.Confidence, dec.Reasoning, w.now())
	case OutcomeNeedsReview:
		w.store.SetCheckInAIReview(g.ID, checkIn.ID, dec.Confidence, dec.Reasoning)
	case OutcomeInvalidSubmission:
		w.store.RemoveCheckIn(g.ID, checkIn.ID)
		return fmt.Errorf("%w: %s", ErrInvalidSubmission, dec.Reasoning)
	default:
		w.store.SetCheckInAIReview(g.ID, checkIn.ID, 0, fmt.Sprintf("ai returned unknown outcome %q", dec.Outcome))
	}
	return nil
}

// Decide applies the game master's manual verdict to a pending check-in.
// Approval is what advances player progress.
func (w *Workflow) Decide(g *store.Game, checkInID string, approve bool, notes string) (store.CheckIn, error) {
	checkIn := g.FindCheckIn(checkInID)
	if checkIn == nil {
		return store.CheckIn{}, ErrCheckInNotFound
	}
	if checkIn.Status != store.CheckInPending {
		return store.CheckIn{}, ErrCheckInAlreadyVerified
	}
	status := store.CheckInRejected
	if approve {
		status = store.CheckInApproved
	}
	w.store.SetCheckInDecision(g.ID, checkInID, status, store.VerifiedByGameMaster, 0, notes, w.now())
	if approve {
		w.store.IncrementPlayerProgress(g.ID, checkIn.PlayerID)
	}
	return w.readBack(g.ID, checkInID), nil
}

// ApproveOnTimeout resolves a check-in left pending past its checkpoint
// expiry in the player's favor.
func (w *Workflow) ApproveOnTimeout(gameID string, checkIn store.CheckIn) store.CheckIn {
	w.store.SetCheckInDecision(gameID, checkIn.ID, store.CheckInApproved, store.VerifiedByTimeout, 0,
		"approved automatically: checkpoint expired while awaiting verification", w.now())
	w.store.IncrementPlayerProgress(gameID, checkIn.PlayerID)
	return w.readBack(gameID, checkIn.ID)
}

func (w *Workflow) readBack(gameID, checkInID string) store.CheckIn {
	g, ok := w.store.GetGame(gameID)
	if !ok {
		panic(fmt.Sprintf("verify: game %s vanished mid-command", gameID))
	}
	c := g.FindCheckIn(checkInID)
	if c == nil {
		panic(fmt.Sprintf("verify: check-in %s vanished mid-command", checkInID))
	}
	return *c
}
