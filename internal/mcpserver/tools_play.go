package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPlayTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"join_game",
			mcp.WithDescription("Join a waiting game, staking stake_unit x multiplier"),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("display_name", mcp.Description("Display name, defaults to player_id")),
			mcp.WithNumber("multiplier", mcp.Required(), mcp.Description("Stake multiplier, 1..max_multiplier")),
		),
		s.handleJoinGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"submit_check_in",
			mcp.WithDescription("Submit proof for the player's next checkpoint"),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithNumber("checkpoint", mcp.Required(), mcp.Description("Checkpoint number, 1-based")),
			mcp.WithString("proof", mcp.Required(), mcp.Description("Proof text for verification")),
		),
		s.handleSubmitCheckIn,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"cash_out",
			mcp.WithDescription("Cash out early for the completed share of the stake; the rest feeds the bonus pool"),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
		),
		s.handleCashOut,
	)
}

func (s *Server) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	playerID, err := request.RequireString("player_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	displayName := request.GetString("display_name", playerID)
	multiplier := request.GetInt("multiplier", 0)

	g, svcErr := s.svc.JoinGame(gameID, playerID, displayName, multiplier)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	p := g.FindPlayer(playerID)
	return toolResult(map[string]any{
		"game":   gameSummaryView(g),
		"player": playerView(p),
	}), nil
}

func (s *Server) handleSubmitCheckIn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	playerID, err := request.RequireString("player_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	proof, err := request.RequireString("proof")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	checkpoint := request.GetInt("checkpoint", 0)

	checkIn, svcErr := s.svc.SubmitCheckIn(ctx, gameID, playerID, checkpoint, proof)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(map[string]any{
		"check_in": checkIn,
		"status":   checkIn.Status,
	}), nil
}

func (s *Server) handleCashOut(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	playerID, err := request.RequireString("player_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}

	g, svcErr := s.svc.CashOut(gameID, playerID)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	p := g.FindPlayer(playerID)
	return toolResult(map[string]any{
		"player":  playerView(p),
		"cashout": p.CashoutAmount,
		"forfeit": p.Stake - p.CashoutAmount,
	}), nil
}
