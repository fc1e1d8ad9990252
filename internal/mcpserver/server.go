// Package mcpserver exposes the player-facing command surface over MCP so
// agent clients can browse, join, and play gauntlets with the same rules as
// HTTP callers.
package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"stake-gauntlet/internal/lifecycle"
)

type Server struct {
	svc *lifecycle.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(svc *lifecycle.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"stake-gauntlet",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		svc:        svc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerGameTools()
	s.registerPlayTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"game://{game_id}/summary",
			"game_summary",
			mcp.WithTemplateDescription("Public game summary by game id"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := string(request.Params.URI)
			if !strings.HasPrefix(raw, "game://") || !strings.HasSuffix(raw, "/summary") {
				return nil, nil
			}
			gameID := strings.TrimPrefix(raw, "game://")
			gameID = strings.TrimSuffix(gameID, "/summary")
			if gameID == "" {
				return nil, nil
			}
			g, err := s.svc.GetGame(gameID)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(gameSummaryView(g))
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
