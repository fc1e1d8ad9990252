package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stake-gauntlet/internal/lifecycle"
)

const (
	colorGood     = 0x3BA55D
	colorInfo     = 0x5865F2
	colorWarn     = 0xFEE75C
	colorCritical = 0xED4245

	shortIDLimit  = 10
	defaultFooter = "stake-gauntlet notify"
)

// Format renders a game event into a platform-independent message.
// gameTitle may be empty when the game is unknown; the short id stands in.
func Format(ev lifecycle.GameEvent, gameTitle string) (Message, bool) {
	label := fallback(gameTitle, shortID(ev.GameID, shortIDLimit))
	msg := Message{
		Timestamp: ev.At.UTC().Format(time.RFC3339),
		Footer:    defaultFooter,
	}
	fields := make([]MessageField, 0, 6)

	switch ev.Kind {
	case lifecycle.EventGameCreated:
		msg.Title = fmt.Sprintf("New Gauntlet · %s", label)
		msg.Content = "game created, waiting for players"
		msg.Description = "A new gauntlet is open for joining."
		msg.Color = colorInfo
		fields = append(fields, MessageField{Name: "Game", Value: shortID(ev.GameID, shortIDLimit), Inline: true})
	case lifecycle.EventPlayerJoined:
		msg.Title = fmt.Sprintf("Player Joined · %s", label)
		msg.Content = fmt.Sprintf("%s staked %s", ev.PlayerID, amountText(dataInt64(ev.Data, "stake")))
		msg.Description = fmt.Sprintf("%s joined with a stake of %s.", ev.PlayerID, amountText(dataInt64(ev.Data, "stake")))
		msg.Color = colorGood
		fields = append(fields,
			MessageField{Name: "Player", Value: ev.PlayerID, Inline: true},
			MessageField{Name: "Stake", Value: amountText(dataInt64(ev.Data, "stake")), Inline: true},
			MessageField{Name: "Multiplier", Value: intText(dataInt(ev.Data, "multiplier")), Inline: true},
		)
	case lifecycle.EventGameStarted:
		msg.Title = fmt.Sprintf("Game On · %s", label)
		msg.Content = "the gauntlet has started"
		msg.Description = "The gauntlet is underway."
		msg.Color = colorInfo
		fields = append(fields, MessageField{Name: "Players", Value: intText(dataInt(ev.Data, "players")), Inline: true})
	case lifecycle.EventCheckInSubmitted:
		msg.Title = fmt.Sprintf("Check-In · %s", label)
		msg.Content = fmt.Sprintf("%s submitted checkpoint %s", ev.PlayerID, intText(dataInt(ev.Data, "checkpoint")))
		msg.Description = "Proof submitted, awaiting verification."
		msg.Color = colorInfo
		fields = append(fields,
			MessageField{Name: "Player", Value: ev.PlayerID, Inline: true},
			MessageField{Name: "Checkpoint", Value: intText(dataInt(ev.Data, "checkpoint")), Inline: true},
		)
	case lifecycle.EventCheckInApproved:
		msg.Title = fmt.Sprintf("Checkpoint Cleared · %s", label)
		msg.Content = fmt.Sprintf("%s cleared checkpoint %s", ev.PlayerID, intText(dataInt(ev.Data, "checkpoint")))
		msg.Description = "Check-in approved."
		msg.Color = colorGood
		fields = append(fields,
			MessageField{Name: "Player", Value: ev.PlayerID, Inline: true},
			MessageField{Name: "Checkpoint", Value: intText(dataInt(ev.Data, "checkpoint")), Inline: true},
			MessageField{Name: "Verified By", Value: fallback(dataString(ev.Data, "verified_by"), "-"), Inline: true},
		)
	case lifecycle.EventCheckInRejected:
		msg.Title = fmt.Sprintf("Check-In Rejected · %s", label)
		msg.Content = fmt.Sprintf("%s failed checkpoint %s", ev.PlayerID, intText(dataInt(ev.Data, "checkpoint")))
		msg.Description = "Check-in rejected; the player may resubmit before the deadline."
		msg.Color = colorCritical
		fields = append(fields,
			MessageField{Name: "Player", Value: ev.PlayerID, Inline: true},
			MessageField{Name: "Checkpoint", Value: intText(dataInt(ev.Data, "checkpoint")), Inline: true},
		)
	case lifecycle.EventCheckInNeedsReview:
		msg.Title = fmt.Sprintf("Needs Review · %s", label)
		msg.Content = fmt.Sprintf("checkpoint %s submission needs a human look", intText(dataInt(ev.Data, "checkpoint")))
		msg.Description = "The judge could not decide; the game master has to."
		msg.Color = colorWarn
		fields = append(fields,
			MessageField{Name: "Player", Value: ev.PlayerID, Inline: true},
			MessageField{Name: "Checkpoint", Value: intText(dataInt(ev.Data, "checkpoint")), Inline: true},
			MessageField{Name: "Confidence", Value: confidenceText(dataFloat(ev.Data, "confidence")), Inline: true},
		)
	case lifecycle.EventPlayerCashedOut:
		msg.Title = fmt.Sprintf("Cash Out · %s", label)
		msg.Content = fmt.Sprintf("%s left with %s", ev.PlayerID, amountText(dataInt64(ev.Data, "cashout")))
		msg.Description = fmt.Sprintf("%s cashed out; %s stays in the bonus pool.",
			ev.PlayerID, amountText(dataInt64(ev.Data, "forfeit")))
		msg.Color = colorWarn
		fields = append(fields,
			MessageField{Name: "Player", Value: ev.PlayerID, Inline: true},
			MessageField{Name: "Cashout", Value: amountText(dataInt64(ev.Data, "cashout")), Inline: true},
			MessageField{Name: "Forfeit", Value: amountText(dataInt64(ev.Data, "forfeit")), Inline: true},
		)
		if reason := dataString(ev.Data, "reason"); reason != "" {
			fields = append(fields, MessageField{Name: "Reason", Value: reason, Inline: false})
		}
	case lifecycle.EventGameEnded:
		msg.Title = fmt.Sprintf("Game Over · %s", label)
		msg.Content = "the gauntlet has ended"
		msg.Description = "Final settlement complete."
		msg.Color = colorGood
		fields = append(fields,
			MessageField{Name: "Winners", Value: intText(dataInt(ev.Data, "winners")), Inline: true},
			MessageField{Name: "Bonus Paid", Value: amountText(dataInt64(ev.Data, "bonus_distributed")), Inline: true},
		)
	case lifecycle.EventGameAborted:
		msg.Title = fmt.Sprintf("Game Aborted · %s", label)
		msg.Content = "the gauntlet was aborted"
		msg.Description = "Active players were refunded in full."
		msg.Color = colorCritical
		if reason := dataString(ev.Data, "reason"); reason != "" {
			fields = append(fields, MessageField{Name: "Reason", Value: reason, Inline: false})
		}
		fields = append(fields, MessageField{Name: "Bonus Cleared", Value: amountText(dataInt64(ev.Data, "bonus_cleared")), Inline: true})
	default:
		return Message{}, false
	}

	msg.Fields = fields
	return msg, true
}

func shortID(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	return v[:max]
}

func fallback(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}

func amountText(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func intText(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func confidenceText(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func dataString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func dataInt64(m map[string]any, key string) *int64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch vv := v.(type) {
	case int64:
		return &vv
	case int:
		x := int64(vv)
		return &x
	case float64:
		x := int64(vv)
		return &x
	}
	return nil
}

func dataInt(m map[string]any, key string) *int {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch vv := v.(type) {
	case int:
		return &vv
	case int64:
		x := int(vv)
		return &x
	case float64:
		x := int(vv)
		return &x
	}
	return nil
}

func dataFloat(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch vv := v.(type) {
	case float64:
		return &vv
	case int:
		x := float64(vv)
		return &x
	case int64:
		x := float64(vv)
		return &x
	}
	return nil
}
