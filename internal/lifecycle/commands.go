package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/settle"
	"stake-gauntlet/internal/store"
)

type CheckpointParams struct {
	Description    string
	ExpiresAt      time.Time
	SampleApproved []string
	SampleRejected []string
}

type CreateGameParams struct {
	GameMasterID string
	Title        string

	Objective string
	Action    string
	Reward    string
	Failure   string

	StakeUnit     int64
	MaxMultiplier int
	MinPlayers    int
	MaxPlayers    int

	StartDate time.Time
	EndDate   time.Time

	Checkpoints        []CheckpointParams
	VerificationMethod store.VerificationMethod
	AIVerification     *store.AIVerification
	ForceCashoutOnMiss bool
}

func (p CreateGameParams) validate() error {
	if strings.TrimSpace(p.GameMasterID) == "" {
		return fmt.Errorf("%w: game_master_id required", ErrValidation)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if p.StakeUnit <= 0 {
		return fmt.Errorf("%w: stake_unit must be positive", ErrValidation)
	}
	if p.MaxMultiplier < 1 {
		return fmt.Errorf("%w: max_multiplier must be at least 1", ErrValidation)
	}
	if p.MinPlayers < 1 {
		return fmt.Errorf("%w: min_players must be at least 1", ErrValidation)
	}
	if p.MaxPlayers < p.MinPlayers {
		return fmt.Errorf("%w: max_players must be at least min_players", ErrValidation)
	}
	if !p.EndDate.After(p.StartDate) {
		return fmt.Errorf("%w: end_date must be after start_date", ErrValidation)
	}
	if len(p.Checkpoints) == 0 {
		return fmt.Errorf("%w: at least one checkpoint required", ErrValidation)
	}
	prev := p.StartDate
	for i, cp := range p.Checkpoints {
		if cp.ExpiresAt.Before(p.StartDate) || cp.ExpiresAt.After(p.EndDate) {
			return fmt.Errorf("%w: checkpoint %d expiry outside game dates", ErrValidation, i+1)
		}
		if cp.ExpiresAt.Before(prev) {
			return fmt.Errorf("%w: checkpoint %d expiry decreases", ErrValidation, i+1)
		}
		prev = cp.ExpiresAt
	}
	switch p.VerificationMethod {
	case store.VerifyManual:
		if p.AIVerification != nil {
			return fmt.Errorf("%w: ai_verification set on MANUAL game", ErrValidation)
		}
	case store.VerifyAI:
		if p.AIVerification == nil {
			return fmt.Errorf("%w: ai_verification required for AI games", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: verification_method must be MANUAL or AI", ErrValidation)
	}
	return nil
}

// CreateGame validates the configuration and persists a new game waiting
// for players.
func (s *Service) CreateGame(p CreateGameParams) (*store.Game, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	g := &store.Game{
		ID:                 store.NewID(),
		Title:              strings.TrimSpace(p.Title),
		GameMasterID:       p.GameMasterID,
		Objective:          p.Objective,
		Action:             p.Action,
		Reward:             p.Reward,
		Failure:            p.Failure,
		StakeUnit:          p.StakeUnit,
		MaxMultiplier:      p.MaxMultiplier,
		MinPlayers:         p.MinPlayers,
		MaxPlayers:         p.MaxPlayers,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		VerificationMethod: p.VerificationMethod,
		AIVerification:     p.AIVerification,
		ForceCashoutOnMiss: p.ForceCashoutOnMiss,
		State:              store.GameWaitingForPlayers,
		CreatedAt:          now,
	}
	g.Checkpoints = make([]store.Checkpoint, len(p.Checkpoints))
	for i, cp := range p.Checkpoints {
		g.Checkpoints[i] = store.Checkpoint{
			Number:         i + 1,
			Description:    cp.Description,
			ExpiresAt:      cp.ExpiresAt,
			SampleApproved: cp.SampleApproved,
			SampleRejected: cp.SampleRejected,
		}
	}
	s.store.CreateGame(g)

	unlock := s.lockGame(g.ID)
	defer unlock()
	s.emit(EventGameCreated, g.ID, "", map[string]any{"title": g.Title})
	log.Info().Str("game_id", g.ID).Str("game_master_id", g.GameMasterID).
		Int("checkpoints", len(g.Checkpoints)).Msg("game created")
	return s.game(g.ID)
}

// JoinGame stakes a player into a waiting game.
func (s *Service) JoinGame(gameID, playerID, displayName string, multiplier int) (*store.Game, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, fmt.Errorf("%w: player_id required", ErrValidation)
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, fmt.Errorf("%w: display_name required", ErrValidation)
	}
	if multiplier < 1 {
		return nil, fmt.Errorf("%w: multiplier must be at least 1", ErrValidation)
	}

	unlock := s.lockGame(gameID)
	defer unlock()
	g, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	if g.State != store.GameWaitingForPlayers {
		return nil, fmt.Errorf("%w: join requires %s", ErrWrongState, store.GameWaitingForPlayers)
	}
	if multiplier > g.MaxMultiplier {
		return nil, ErrMultiplierTooHigh
	}
	if len(g.Players) >= g.MaxPlayers {
		return nil, ErrGameFull
	}
	if g.FindPlayer(playerID) != nil {
		return nil, ErrAlreadyJoined
	}

	stake := settle.Stake(g.StakeUnit, multiplier)
	s.store.AddPlayer(gameID, store.Player{
		ID:          playerID,
		DisplayName: strings.TrimSpace(displayName),
		Multiplier:  multiplier,
		Stake:       stake,
		JoinedAt:    s.now(),
	})
	s.appendTx(gameID, s.newTx(playerID, store.TxInitialStake, stake,
		fmt.Sprintf("initial stake: %d x %d", g.StakeUnit, multiplier)))
	s.store.AdjustPools(gameID, stake, 0, 0)

	s.emit(EventPlayerJoined, gameID, playerID, map[string]any{"stake": stake, "multiplier": multiplier})
	log.Info().Str("game_id", gameID).Str("player_id", playerID).Int64("stake", stake).Msg("player joined")
	return s.game(gameID)
}

// StartGame moves a waiting game into progress. Only the game master, only
// inside the start window, only with enough players.
func (s *Service) StartGame(gameID, callerID string) (*store.Game, error) {
	unlock := s.lockGame(gameID)
	defer unlock()
	g, err := s.game(gameID)
	if err != nil {
		return nil, err
	}
	if callerID != g.GameMasterID {
		return nil, ErrNotGameMaster
	}
	if g.State != store.GameWaitingForPlayers {
		return nil, fmt.Errorf("%w: start requires %s", ErrWrongState, store.GameWaitingForPlayers)
	}
	now := s.now()
	if now.Before(g.StartDate) {
		return nil, ErrStartTooEarly
	}
	if now.After(g.StartDate.Add(s.startGrace)) {
		return nil, ErrStartWindowClosed
	}
	if len(g.Players) < g.MinPlayers {
		return nil, ErrTooFewPlayers
	}

	s.store.SetGameState(gameID, store.GameInProgress, now)
	s.emit(EventGameStarted, gameID, "", map[string]any{"players": len(g.Players)})
	log.Info().Str("game_id", gameID).Int("players", len(g.Players)).Msg("game started")
	return s.game(gameID)
}
