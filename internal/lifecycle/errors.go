package lifecycle

import "errors"

var (
	// ErrValidation wraps malformed input; the wrapping message names the
	// offending field.
	ErrValidation = errors.New("invalid_request")

	ErrGameNotFound      = errors.New("game_not_found")
	ErrNotGameMaster     = errors.New("not_game_master")
	ErrWrongState        = errors.New("wrong_game_state")
	ErrGameFull          = errors.New("game_full")
	ErrAlreadyJoined     = errors.New("player_already_joined")
	ErrMultiplierTooHigh = errors.New("multiplier_too_high")
	ErrPlayerNotFound    = errors.New("player_not_found")
	ErrPlayerFolded      = errors.New("player_already_folded")
	ErrTooFewPlayers     = errors.New("not_enough_players")
	ErrStartTooEarly     = errors.New("start_window_not_open")
	ErrStartWindowClosed = errors.New("start_window_closed")
)
