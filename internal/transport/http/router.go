package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/config"
	"stake-gauntlet/internal/lifecycle"
	"stake-gauntlet/internal/mcpserver"
)

// NewRouter assembles the full HTTP surface: player and game master commands,
// public read models, the per-game event stream, the MCP endpoint, and the
// key-protected admin group. journal may be nil.
func NewRouter(svc *lifecycle.Service, feed *lifecycle.Feed, cfg config.ServerConfig, journal Pinger) *chi.Mux {
	mcpSrv := mcpserver.New(svc)

	gameHandlers := NewGameHandlers(svc)
	checkInHandlers := NewCheckInHandlers(svc)
	eventHandlers := NewEventHandlers(svc, feed)
	adminHandlers := NewAdminHandlers(svc, journal)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())
	r.With(APILogMiddleware()).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
	r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Get("/public/games", gameHandlers.List())
		r.Get("/public/games/{game_id}", gameHandlers.Get())
		r.Get("/public/games/{game_id}/transactions", gameHandlers.Transactions())
		r.Get("/public/games/{game_id}/players/{player_id}/checkins", gameHandlers.PlayerCheckIns())
		r.Get("/public/games/{game_id}/events", eventHandlers.Stream())

		r.Post("/games", gameHandlers.Create())
		r.Post("/games/{game_id}/join", gameHandlers.Join())
		r.Post("/games/{game_id}/start", gameHandlers.Start())
		r.Post("/games/{game_id}/cashout", gameHandlers.CashOut())
		r.Post("/games/{game_id}/end", gameHandlers.End())
		r.Post("/games/{game_id}/abort", gameHandlers.Abort())
		r.Post("/games/{game_id}/checkins", checkInHandlers.Submit())
		r.Post("/games/{game_id}/checkins/{checkin_id}/verify", checkInHandlers.Verify())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/ledger", adminHandlers.Ledger())

			r.Route("/debug", func(r chi.Router) {
				r.Use(BodyCaptureMiddleware(4096))
				r.Get("/vars", expvar.Handler().ServeHTTP)
			})
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
