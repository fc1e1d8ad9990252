package mcpserver

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/verify"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, lifecycle.ErrValidation):
		return toolError("invalid_request", err.Error())
	case errors.Is(err, lifecycle.ErrGameNotFound):
		return toolError("game_not_found", err.Error())
	case errors.Is(err, lifecycle.ErrNotGameMaster):
		return toolError("not_game_master", err.Error())
	case errors.Is(err, lifecycle.ErrWrongState):
		return toolError("wrong_game_state", err.Error())
	case errors.Is(err, lifecycle.ErrGameFull):
		return toolError("game_full", err.Error())
	case errors.Is(err, lifecycle.ErrAlreadyJoined):
		return toolError("player_already_joined", err.Error())
	case errors.Is(err, lifecycle.ErrMultiplierTooHigh):
		return toolError("multiplier_too_high", err.Error())
	case errors.Is(err, lifecycle.ErrPlayerNotFound):
		return toolError("player_not_found", err.Error())
	case errors.Is(err, lifecycle.ErrPlayerFolded):
		return toolError("player_already_folded", err.Error())
	case errors.Is(err, lifecycle.ErrTooFewPlayers):
		return toolError("not_enough_players", err.Error())
	case errors.Is(err, lifecycle.ErrStartTooEarly):
		return toolError("start_window_not_open", err.Error())
	case errors.Is(err, lifecycle.ErrStartWindowClosed):
		return toolError("start_window_closed", err.Error())
	case errors.Is(err, verify.ErrCheckpointOutOfRange):
		return toolError("checkpoint_out_of_range", err.Error())
	case errors.Is(err, verify.ErrCheckpointExpired):
		return toolError("checkpoint_expired", err.Error())
	case errors.Is(err, verify.ErrCheckInBlocked):
		return toolError("checkin_blocked", err.Error())
	case errors.Is(err, verify.ErrCheckInNotFound):
		return toolError("checkin_not_found", err.Error())
	case errors.Is(err, verify.ErrCheckInAlreadyVerified):
		return toolError("checkin_already_verified", err.Error())
	case errors.Is(err, verify.ErrInvalidSubmission):
		return toolError("invalid_submission", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
