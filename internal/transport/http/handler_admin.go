package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"stake-gauntlet/internal/lifecycle"
)

// Pinger is the health probe for the optional transaction journal.
type Pinger interface {
	Ping(ctx context.Context) error
}

type AdminHandlers struct {
	svc     *lifecycle.Service
	journal Pinger
}

// NewAdminHandlers wires the admin surface. journal may be nil when the
// server runs without Postgres.
func NewAdminHandlers(svc *lifecycle.Service, journal Pinger) *AdminHandlers {
	return &AdminHandlers{svc: svc, journal: journal}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.journal == nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "journal": "off"})
			return
		}
		if err := h.journal.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "journal": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "journal": "up"})
	}
}

func (h *AdminHandlers) Ledger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, total := h.svc.Ledger(r.URL.Query().Get("game_id"), limit, offset)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":  items,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}
}
