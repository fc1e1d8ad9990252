package notify

import (
	"strings"

	"stake-gauntlet/internal/lifecycle"
)

type router struct{}

// matchTargets returns the targets whose scope and allowlist accept the
// event. masterID is the game's game master, resolved by the manager.
func (router) matchTargets(targets []Target, ev lifecycle.GameEvent, masterID string) []Target {
	if len(targets) == 0 {
		return nil
	}
	out := make([]Target, 0, len(targets))
	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		if !scopeMatches(target, ev, masterID) {
			continue
		}
		if !eventAllowed(target.EventAllowlist, string(ev.Kind)) {
			continue
		}
		out = append(out, target)
	}
	return out
}

func scopeMatches(target Target, ev lifecycle.GameEvent, masterID string) bool {
	switch target.ScopeType {
	case "all":
		return true
	case "game":
		return target.ScopeValue != "" && target.ScopeValue == ev.GameID
	case "master":
		return target.ScopeValue != "" && target.ScopeValue == masterID
	default:
		return false
	}
}

func eventAllowed(allowlist []string, kind string) bool {
	if len(allowlist) == 0 {
		return true
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	for _, v := range allowlist {
		if v == "" {
			continue
		}
		if strings.ToLower(strings.TrimSpace(v)) == kind {
			return true
		}
	}
	return false
}
