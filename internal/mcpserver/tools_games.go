package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"stake-gauntlet/internal/lifecycle"
)

func (s *Server) registerGameTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_games",
			mcp.WithDescription("List games with optional state filter and pagination"),
			mcp.WithString("state", mcp.Description("WAITING_FOR_PLAYERS|IN_PROGRESS|ENDED|ABORTED, default all")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 200")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListGames,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_game",
			mcp.WithDescription("Get full game detail including checkpoints and players"),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
		),
		s.handleGetGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_player_status",
			mcp.WithDescription("Get one player's progress, check-ins, and next checkpoint"),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
		),
		s.handleGetPlayerStatus,
	)
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, ok := normalizeStateFilter(request.GetString("state", ""))
	if !ok {
		return toolError("invalid_request", "state must be WAITING_FOR_PLAYERS|IN_PROGRESS|ENDED|ABORTED"), nil
	}
	limit := request.GetInt("limit", defaultPageLimit)
	offset := request.GetInt("offset", 0)
	limit, offset = clampPagination(limit, offset, maxPageLimit)

	games, total := s.svc.ListGames(state, limit, offset)
	views := make([]map[string]any, 0, len(games))
	for _, g := range games {
		views = append(views, gameSummaryView(g))
	}
	return toolResult(map[string]any{
		"games":  views,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}), nil
}

func (s *Server) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	g, svcErr := s.svc.GetGame(gameID)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(map[string]any{"game": gameDetailView(g)}), nil
}

func (s *Server) handleGetPlayerStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	playerID, err := request.RequireString("player_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	g, svcErr := s.svc.GetGame(gameID)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	p := g.FindPlayer(playerID)
	if p == nil {
		return mapDomainError(lifecycle.ErrPlayerNotFound), nil
	}
	return toolResult(playerStatusView(g, p, g.PlayerCheckIns(playerID))), nil
}
