package mcpserver

import (
	"strings"

	"stake-gauntlet/internal/store"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func clampPagination(limit, offset, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// normalizeStateFilter maps the optional state argument onto a store state.
// Empty means no filter.
func normalizeStateFilter(v string) (store.GameState, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	switch store.GameState(v) {
	case "", store.GameWaitingForPlayers, store.GameInProgress, store.GameEnded, store.GameAborted:
		return store.GameState(v), true
	default:
		return "", false
	}
}
