package httptransport

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/store"
)

type GameHandlers struct {
	svc *lifecycle.Service
}

func NewGameHandlers(svc *lifecycle.Service) *GameHandlers {
	return &GameHandlers{svc: svc}
}

type checkpointRequest struct {
	Description    string    `json:"description"`
	ExpiresAt      time.Time `json:"expires_at"`
	SampleApproved []string  `json:"sample_approved"`
	SampleRejected []string  `json:"sample_rejected"`
}

type createGameRequest struct {
	GameMasterID       string                `json:"game_master_id"`
	Title              string                `json:"title"`
	Objective          string                `json:"objective"`
	Action             string                `json:"action"`
	Reward             string                `json:"reward"`
	Failure            string                `json:"failure"`
	StakeUnit          int64                 `json:"stake_unit"`
	MaxMultiplier      int                   `json:"max_multiplier"`
	MinPlayers         int                   `json:"min_players"`
	MaxPlayers         int                   `json:"max_players"`
	StartDate          time.Time             `json:"start_date"`
	EndDate            time.Time             `json:"end_date"`
	VerificationMethod string                `json:"verification_method"`
	AIVerification     *store.AIVerification `json:"ai_verification"`
	ForceCashoutOnMiss bool                  `json:"force_cashout_on_miss"`
	Checkpoints        []checkpointRequest   `json:"checkpoints"`
}

func (h *GameHandlers) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		params := lifecycle.CreateGameParams{
			GameMasterID:       body.GameMasterID,
			Title:              body.Title,
			Objective:          body.Objective,
			Action:             body.Action,
			Reward:             body.Reward,
			Failure:            body.Failure,
			StakeUnit:          body.StakeUnit,
			MaxMultiplier:      body.MaxMultiplier,
			MinPlayers:         body.MinPlayers,
			MaxPlayers:         body.MaxPlayers,
			StartDate:          body.StartDate,
			EndDate:            body.EndDate,
			VerificationMethod: store.VerificationMethod(strings.ToUpper(strings.TrimSpace(body.VerificationMethod))),
			AIVerification:     body.AIVerification,
			ForceCashoutOnMiss: body.ForceCashoutOnMiss,
		}
		for _, cp := range body.Checkpoints {
			params.Checkpoints = append(params.Checkpoints, lifecycle.CheckpointParams{
				Description:    cp.Description,
				ExpiresAt:      cp.ExpiresAt,
				SampleApproved: cp.SampleApproved,
				SampleRejected: cp.SampleRejected,
			})
		}
		g, err := h.svc.CreateGame(params)
		if err != nil {
			metricCommandErrorsTotal.Add(1)
			WriteDomainError(w, err)
			return
		}
		metricGameCreateTotal.Add(1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"game": g})
	}
}

func (h *GameHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := store.GameState(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("state"))))
		switch state {
		case "", store.GameWaitingForPlayers, store.GameInProgress, store.GameEnded, store.GameAborted:
		default:
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		limit, offset := ParsePagination(r)
		games, total := h.svc.ListGames(state, limit, offset)
		items := make([]map[string]any, 0, len(games))
		for _, g := range games {
			items = append(items, gameSummary(g))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":  items,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}
}

func (h *GameHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := h.svc.GetGame(chi.URLParam(r, "game_id"))
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"game": g})
	}
}

func (h *GameHandlers) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, total, err := h.svc.GetTransactions(chi.URLParam(r, "game_id"), limit, offset)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":  items,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}
}

func (h *GameHandlers) PlayerCheckIns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.svc.GetPlayerCheckIns(chi.URLParam(r, "game_id"), chi.URLParam(r, "player_id"))
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}
}

func (h *GameHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PlayerID    string `json:"player_id"`
			DisplayName string `json:"display_name"`
			Multiplier  int    `json:"multiplier"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.DisplayName == "" {
			body.DisplayName = body.PlayerID
		}
		g, err := h.svc.JoinGame(chi.URLParam(r, "game_id"), body.PlayerID, body.DisplayName, body.Multiplier)
		if err != nil {
			metricCommandErrorsTotal.Add(1)
			WriteDomainError(w, err)
			return
		}
		metricJoinTotal.Add(1)
		p := g.FindPlayer(body.PlayerID)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"game_id":    g.ID,
			"player":     p,
			"total_pool": g.TotalPool,
		})
	}
}

func (h *GameHandlers) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GameMasterID string `json:"game_master_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		g, err := h.svc.StartGame(chi.URLParam(r, "game_id"), body.GameMasterID)
		if err != nil {
			metricCommandErrorsTotal.Add(1)
			WriteDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"game_id":    g.ID,
			"state":      g.State,
			"started_at": g.StartedAt,
		})
	}
}

func (h *GameHandlers) CashOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PlayerID string `json:"player_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		g, err := h.svc.CashOut(chi.URLParam(r, "game_id"), body.PlayerID)
		if err != nil {
			metricCommandErrorsTotal.Add(1)
			WriteDomainError(w, err)
			return
		}
		p := g.FindPlayer(body.PlayerID)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"game_id":    g.ID,
			"player":     p,
			"cashout":    p.CashoutAmount,
			"forfeit":    p.Stake - p.CashoutAmount,
			"bonus_pool": g.BonusPool,
		})
	}
}

func (h *GameHandlers) End() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GameMasterID string `json:"game_master_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		g, err := h.svc.EndGame(chi.URLParam(r, "game_id"), body.GameMasterID)
		if err != nil {
			metricCommandErrorsTotal.Add(1)
			WriteDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"game_id":  g.ID,
			"state":    g.State,
			"ended_at": g.EndedAt,
			"players":  g.Players,
		})
	}
}

func (h *GameHandlers) Abort() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GameMasterID string `json:"game_master_id"`
			Reason       string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		g, err := h.svc.AbortGame(chi.URLParam(r, "game_id"), body.GameMasterID, body.Reason)
		if err != nil {
			metricCommandErrorsTotal.Add(1)
			WriteDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"game_id":      g.ID,
			"state":        g.State,
			"abort_reason": g.AbortReason,
		})
	}
}

func gameSummary(g *store.Game) map[string]any {
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
