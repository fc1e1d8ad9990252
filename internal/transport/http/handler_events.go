package httptransport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stake-gauntlet/internal/lifecycle"
)

// ssePingInterval keeps idle connections alive through proxies. Tests shorten it.
var ssePingInterval = 15 * time.Second

type EventHandlers struct {
	svc  *lifecycle.Service
	feed *lifecycle.Feed
}

func NewEventHandlers(svc *lifecycle.Service, feed *lifecycle.Feed) *EventHandlers {
	return &EventHandlers{svc: svc, feed: feed}
}

func (h *EventHandlers) Stream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "game_id")
		if _, err := h.svc.GetGame(gameID); err != nil {
			WriteDomainError(w, err)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		after := parseAfter(r)

		metricSSEConnectionsTotal.Add(1)
		metricSSEConnectionsActive.Add(1)
		defer metricSSEConnectionsActive.Add(-1)

		ch, unsubscribe := h.feed.Subscribe(gameID)
		defer unsubscribe()

		// lastSeq guards against double-writing events that land in both
		// the replay window and the live channel.
		lastSeq := after
		for _, ev := range h.feed.ReplayAfter(gameID, after) {
			if err := writeSSEEvent(w, ev); err != nil {
				return
			}
			lastSeq = ev.Seq
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev, open := <-ch:
				if !open {
					return
				}
				if ev.Seq <= lastSeq {
					continue
				}
				if err := writeSSEEvent(w, ev); err != nil {
					return
				}
				lastSeq = ev.Seq
				flusher.Flush()
			case <-ticker.C:
				if _, err := fmt.Fprintf(w, "event: ping\ndata: {\"ts\":%d}\n\n", time.Now().UnixMilli()); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// parseAfter reads the replay cursor: the from_id query parameter wins,
// otherwise the Last-Event-ID header a reconnecting client sends.
func parseAfter(r *http.Request) int64 {
	raw := r.URL.Query().Get("from_id")
	if raw == "" {
		raw = r.Header.Get("Last-Event-ID")
	}
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func writeSSEEvent(w http.ResponseWriter, ev lifecycle.GameEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\n", ev.Seq); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", ev.Kind); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
