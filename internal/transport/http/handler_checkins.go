package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stake-gauntlet/internal/lifecycle"
)

type CheckInHandlers struct {
	svc *lifecycle.Service
}

func NewCheckInHandlers(svc *lifecycle.Service) *CheckInHandlers {
	return &CheckInHandlers{svc: svc}
}

func (h *CheckInHandlers) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PlayerID         string `json:"player_id"`
			CheckpointNumber int    `json:"checkpoint_number"`
			Proof            string `json:"proof"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		c, err := h.svc.SubmitCheckIn(r.Context(), chi.URLParam(r, "game_id"), body.PlayerID, body.CheckpointNumber, body.Proof)
		if err != nil {
			metricCommandErrorsTotal.Add(1)
			WriteDomainError(w, err)
			return
		}
		metricCheckInSubmitTotal.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"check_in": c,
			"status":   c.Status,
		})
	}
}

func (h *CheckInHandlers) Verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			GameMasterID string `json:"game_master_id"`
			Approve      bool   `json:"approve"`
			Notes        string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		c, err := h.svc.VerifyCheckIn(chi.URLParam(r, "game_id"), body.GameMasterID, chi.URLParam(r, "checkin_id"), body.Approve, body.Notes)
		if err != nil {
			metricCommandErrorsTotal.Add(1)
			WriteDomainError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"check_in": c,
			"status":   c.Status,
		})
	}
}
