package mcpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/store"
	"stake-gauntlet/internal/verify"
)

func newTestService(t *testing.T) *lifecycle.Service {
	t.Helper()
	st := store.New()
	wf := verify.NewWorkflow(st, nil, time.Second, time.Now)
	return lifecycle.NewService(st, wf, lifecycle.NewFeed(64), 48*time.Hour, time.Now)
}

// runningGameParams builds a two-checkpoint manual game whose start window
// is already open.
func runningGameParams() lifecycle.CreateGameParams {
	now := time.Now()
	return lifecycle.CreateGameParams{
		GameMasterID:       "gm-1",
		Title:              "push-up gauntlet",
		Objective:          "100 push-ups a day",
		Action:             "send a short video",
		Reward:             "stake back plus bonus",
		Failure:            "forfeit to the pool",
		StakeUnit:          100,
		MaxMultiplier:      5,
		MinPlayers:         1,
		MaxPlayers:         4,
		StartDate:          now.Add(-time.Minute),
		EndDate:            now.Add(3 * time.Hour),
		VerificationMethod: store.VerifyManual,
		Checkpoints: []lifecycle.CheckpointParams{
			{Description: "day 1", ExpiresAt: now.Add(time.Hour)},
			{Description: "day 2", ExpiresAt: now.Add(2 * time.Hour)},
		},
	}
}

func TestMCPServerToolsAndFlows(t *testing.T) {
	svc := newTestService(t)
	srv := New(svc)
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	tools := mustListTools(t, mcpClient)
	assertToolNames(t, tools,
		"list_games",
		"get_game",
		"get_player_status",
		"join_game",
		"submit_check_in",
		"cash_out",
	)

	g, err := svc.CreateGame(runningGameParams())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	joinRes := mustCallTool(t, mcpClient, "join_game", map[string]any{
		"game_id":    g.ID,
		"player_id":  "ann",
		"multiplier": 2,
	})
	if joinRes.IsError {
		t.Fatalf("join_game expected success, got: %v", joinRes.StructuredContent)
	}
	joinPayload := mapFromStructured(t, joinRes)
	player, _ := joinPayload["player"].(map[string]any)
	if asFloat64(player["stake"]) != 200 {
		t.Fatalf("expected stake 200, got %v", player["stake"])
	}
	if asString(player["display_name"]) != "ann" {
		t.Fatalf("expected display name to default to player id, got %v", player["display_name"])
	}

	second := mustCallTool(t, mcpClient, "join_game", map[string]any{
		"game_id":      g.ID,
		"player_id":    "ben",
		"display_name": "Big Ben",
		"multiplier":   1,
	})
	if second.IsError {
		t.Fatalf("second join failed: %v", second.StructuredContent)
	}

	listRes := mustCallTool(t, mcpClient, "list_games", map[string]any{"state": "WAITING_FOR_PLAYERS"})
	listPayload := mapFromStructured(t, listRes)
	if asFloat64(listPayload["total"]) != 1 {
		t.Fatalf("expected 1 waiting game, got %v", listPayload["total"])
	}

	if _, err := svc.StartGame(g.ID, "gm-1"); err != nil {
		t.Fatalf("start game: %v", err)
	}

	submitRes := mustCallTool(t, mcpClient, "submit_check_in", map[string]any{
		"game_id":    g.ID,
		"player_id":  "ann",
		"checkpoint": 1,
		"proof":      "video link",
	})
	if submitRes.IsError {
		t.Fatalf("submit_check_in failed: %v", submitRes.StructuredContent)
	}
	submitPayload := mapFromStructured(t, submitRes)
	if asString(submitPayload["status"]) != string(store.CheckInPending) {
		t.Fatalf("manual submission should be pending, got %v", submitPayload["status"])
	}
	checkIn, _ := submitPayload["check_in"].(map[string]any)
	checkInID := asString(checkIn["id"])
	if checkInID == "" {
		t.Fatalf("missing check-in id: %v", submitPayload)
	}

	if _, err := svc.VerifyCheckIn(g.ID, "gm-1", checkInID, true, "looks real"); err != nil {
		t.Fatalf("verify check-in: %v", err)
	}

	statusRes := mustCallTool(t, mcpClient, "get_player_status", map[string]any{
		"game_id":   g.ID,
		"player_id": "ann",
	})
	statusPayload := mapFromStructured(t, statusRes)
	statusPlayer, _ := statusPayload["player"].(map[string]any)
	if asFloat64(statusPlayer["checkpoints_completed"]) != 1 {
		t.Fatalf("expected 1 completed checkpoint, got %v", statusPlayer["checkpoints_completed"])
	}
	if asFloat64(statusPayload["next_checkpoint"]) != 2 {
		t.Fatalf("expected next checkpoint 2, got %v", statusPayload["next_checkpoint"])
	}

	cashRes := mustCallTool(t, mcpClient, "cash_out", map[string]any{
		"game_id":   g.ID,
		"player_id": "ann",
	})
	if cashRes.IsError {
		t.Fatalf("cash_out failed: %v", cashRes.StructuredContent)
	}
	cashPayload := mapFromStructured(t, cashRes)
	if asFloat64(cashPayload["cashout"]) != 100 {
		t.Fatalf("expected cashout 100 for 1/2 checkpoints on 200, got %v", cashPayload["cashout"])
	}
	if asFloat64(cashPayload["forfeit"]) != 100 {
		t.Fatalf("expected forfeit 100, got %v", cashPayload["forfeit"])
	}

	detailRes := mustCallTool(t, mcpClient, "get_game", map[string]any{"game_id": g.ID})
	detailPayload := mapFromStructured(t, detailRes)
	game, _ := detailPayload["game"].(map[string]any)
	if asFloat64(game["bonus_pool"]) != 100 {
		t.Fatalf("expected bonus pool 100 after forfeit, got %v", game["bonus_pool"])
	}
	if _, present := game["ai_verification"]; present {
		t.Fatal("game detail must not expose verification config")
	}
}

func TestMCPServerToolErrors(t *testing.T) {
	svc := newTestService(t)
	srv := New(svc)
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	missing := mustCallTool(t, mcpClient, "join_game", map[string]any{"game_id": "g_x"})
	assertToolErrorCode(t, missing, "invalid_request")

	unknown := mustCallTool(t, mcpClient, "get_game", map[string]any{"game_id": "does-not-exist"})
	assertToolErrorCode(t, unknown, "game_not_found")

	badState := mustCallTool(t, mcpClient, "list_games", map[string]any{"state": "PAUSED"})
	assertToolErrorCode(t, badState, "invalid_request")

	g, err := svc.CreateGame(runningGameParams())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	joined := mustCallTool(t, mcpClient, "join_game", map[string]any{
		"game_id": g.ID, "player_id": "ann", "multiplier": 1,
	})
	if joined.IsError {
		t.Fatalf("join failed: %v", joined.StructuredContent)
	}

	again := mustCallTool(t, mcpClient, "join_game", map[string]any{
		"game_id": g.ID, "player_id": "ann", "multiplier": 1,
	})
	assertToolErrorCode(t, again, "player_already_joined")

	tooHigh := mustCallTool(t, mcpClient, "join_game", map[string]any{
		"game_id": g.ID, "player_id": "ben", "multiplier": 9,
	})
	assertToolErrorCode(t, tooHigh, "multiplier_too_high")

	earlyCash := mustCallTool(t, mcpClient, "cash_out", map[string]any{
		"game_id": g.ID, "player_id": "ann",
	})
	assertToolErrorCode(t, earlyCash, "wrong_game_state")

	stranger := mustCallTool(t, mcpClient, "get_player_status", map[string]any{
		"game_id": g.ID, "player_id": "nobody",
	})
	assertToolErrorCode(t, stranger, "player_not_found")
}

func newMCPClient(t *testing.T, endpoint string) (*client.Client, func()) {
	t.Helper()
	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(endpoint)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := trans.Start(ctx); err != nil {
		t.Fatalf("transport start: %v", err)
	}
	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, func() { _ = trans.Close() }
}

func mustListTools(t *testing.T, c *client.Client) []mcp.Tool {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	return res.Tools
}

func assertToolNames(t *testing.T, tools []mcp.Tool, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(tools))
	for _, tool := range tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) != len(expected) {
		t.Fatalf("tool count mismatch got=%v expected=%v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("tool list mismatch got=%v expected=%v", got, expected)
		}
	}
}

func mustCallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func assertToolErrorCode(t *testing.T, res *mcp.CallToolResult, want string) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected tool error %q, got success: %v", want, res.StructuredContent)
	}
	payload := mapFromStructured(t, res)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("error payload missing 'error': %v", payload)
	}
	got := asString(errObj["code"])
	if got != want {
		t.Fatalf("error code=%q want=%q payload=%v", got, want, payload)
	}
}

func mapFromStructured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat64(v any) float64 {
	f, _ := v.(float64)
	return f
}
