package mcpserver

import "stake-gauntlet/internal/store"

// Views trim the aggregate for clients: the AI judging prompt never leaves
// the server, and players see sample proofs instead.

func gameSummaryView(g *store.Game) map[string]any {
	return map[string]any{
		"id":                  g.ID,
		"title":               g.Title,
		"state":               g.State,
		"game_master_id":      g.GameMasterID,
		"stake_unit":          g.StakeUnit,
		"max_multiplier":      g.MaxMultiplier,
		"min_players":         g.MinPlayers,
		"max_players":         g.MaxPlayers,
		"player_count":        len(g.Players),
		"checkpoint_count":    g.TotalCheckpoints(),
		"verification_method": g.VerificationMethod,
		"start_date":          g.StartDate,
		"end_date":            g.EndDate,
		"total_pool":          g.TotalPool,
		"bonus_pool":          g.BonusPool,
	}
}

func gameDetailView(g *store.Game) map[string]any {
	out := gameSummaryView(g)
	out["objective"] = g.Objective
	out["action"] = g.Action
	out["reward"] = g.Reward
	out["failure"] = g.Failure
	out["force_cashout_on_miss"] = g.ForceCashoutOnMiss
	out["total_cashouts"] = g.TotalCashouts
	out["created_at"] = g.CreatedAt
	if g.StartedAt != nil {
		out["started_at"] = g.StartedAt
	}
	if g.EndedAt != nil {
		out["ended_at"] = g.EndedAt
	}
	if g.AbortReason != "" {
		out["abort_reason"] = g.AbortReason
	}

	checkpoints := make([]map[string]any, 0, len(g.Checkpoints))
	for _, cp := range g.Checkpoints {
		checkpoints = append(checkpoints, map[string]any{
			"number":          cp.Number,
			"description":     cp.Description,
			"expires_at":      cp.ExpiresAt,
			"sample_approved": cp.SampleApproved,
			"sample_rejected": cp.SampleRejected,
		})
	}
	out["checkpoints"] = checkpoints

	players := make([]map[string]any, 0, len(g.Players))
	for i := range g.Players {
		players = append(players, playerView(&g.Players[i]))
	}
	out["players"] = players
	return out
}

func playerView(p *store.Player) map[string]any {
	out := map[string]any{
		"id":                    p.ID,
		"display_name":          p.DisplayName,
		"multiplier":            p.Multiplier,
		"stake":                 p.Stake,
		"joined_at":             p.JoinedAt,
		"checkpoints_completed": p.CheckpointsCompleted,
		"folded":                p.Folded(),
		"cashout_amount":        p.CashoutAmount,
	}
	if p.FoldedAtCheckpoint != nil {
		out["folded_at_checkpoint"] = *p.FoldedAtCheckpoint
	}
	if p.BonusWon != nil {
		out["bonus_won"] = *p.BonusWon
	}
	return out
}

func playerStatusView(g *store.Game, p *store.Player, checkIns []store.CheckIn) map[string]any {
	out := map[string]any{
		"game_id":           g.ID,
		"game_state":        g.State,
		"total_checkpoints": g.TotalCheckpoints(),
		"player":            playerView(p),
		"check_ins":         checkIns,
	}
	if !p.Folded() && p.CheckpointsCompleted < g.TotalCheckpoints() {
		out["next_checkpoint"] = p.CheckpointsCompleted + 1
	}
	return out
}
