package httptransport

import (
	"errors"
	"net/http"

	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/verify"
)

// domainStatus maps a service error to an HTTP status and a stable error
// code. Authorization outranks state checks in the service, so a 403 here
// means the caller never got as far as the state machine.
func domainStatus(err error) (int, string) {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, lifecycle.ErrGameNotFound):
		return http.StatusNotFound, "game_not_found"
	case errors.Is(err, lifecycle.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, verify.ErrCheckInNotFound):
		return http.StatusNotFound, "checkin_not_found"
	case errors.Is(err, lifecycle.ErrNotGameMaster):
		return http.StatusForbidden, "not_game_master"
	case errors.Is(err, lifecycle.ErrWrongState):
		return http.StatusConflict, "wrong_game_state"
	case errors.Is(err, lifecycle.ErrGameFull):
		return http.StatusConflict, "game_full"
	case errors.Is(err, lifecycle.ErrAlreadyJoined):
		return http.StatusConflict, "player_already_joined"
	case errors.Is(err, lifecycle.ErrMultiplierTooHigh):
		return http.StatusConflict, "multiplier_too_high"
	case errors.Is(err, lifecycle.ErrPlayerFolded):
		return http.StatusConflict, "player_already_folded"
	case errors.Is(err, lifecycle.ErrTooFewPlayers):
		return http.StatusConflict, "not_enough_players"
	case errors.Is(err, lifecycle.ErrStartTooEarly):
		return http.StatusConflict, "start_window_not_open"
	case errors.Is(err, lifecycle.ErrStartWindowClosed):
		return http.StatusConflict, "start_window_closed"
	case errors.Is(err, verify.ErrCheckpointExpired):
		return http.StatusConflict, "checkpoint_expired"
	case errors.Is(err, verify.ErrCheckInBlocked):
		return http.StatusConflict, "checkin_blocked"
	case errors.Is(err, verify.ErrCheckInAlreadyVerified):
		return http.StatusConflict, "checkin_already_verified"
	case errors.Is(err, verify.ErrCheckpointOutOfRange):
		return http.StatusBadRequest, "checkpoint_out_of_range"
	case errors.Is(err, verify.ErrInvalidSubmission):
		return http.StatusUnprocessableEntity, "invalid_submission"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func WriteDomainError(w http.ResponseWriter, err error) {
	status, code := domainStatus(err)
	WriteHTTPError(w, status, code)
}
