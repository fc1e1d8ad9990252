package platforms

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestDiscordAdapterPayload(t *testing.T) {
	var got map[string]any
	client := newTestHTTPClient(func(r *http.Request) (*http.Response, error) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return cannedResponse(http.StatusNoContent), nil
	})

	adapter := NewDiscordAdapter(client)
	err := adapter.Send(context.Background(), "https://discord.example/webhook", "", Message{
		Title:       "Game Over · morning runs",
		Content:     "the gauntlet has ended",
		Description: "Final settlement complete.",
		Color:       0x3BA55D,
		Timestamp:   "2025-06-02T09:00:00Z",
		Footer:      "footer-text",
		Fields: []Field{
			{Name: "Winners", Value: "2", Inline: true},
			{Name: "Reason", Value: "all checkpoints cleared", Inline: false},
		},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if got["content"] != "the gauntlet has ended" {
		t.Fatalf("unexpected content: %v", got["content"])
	}
	embeds, ok := got["embeds"].([]any)
	if !ok || len(embeds) != 1 {
		t.Fatalf("unexpected embeds: %#v", got["embeds"])
	}
	embed, ok := embeds[0].(map[string]any)
	if !ok {
		t.Fatalf("unexpected embed type: %#v", embeds[0])
	}
	if embed["description"] != "Final settlement complete." {
		t.Fatalf("unexpected description: %v", embed["description"])
	}
	if embed["color"] != float64(0x3BA55D) {
		t.Fatalf("unexpected color: %v", embed["color"])
	}
	if embed["timestamp"] != "2025-06-02T09:00:00Z" {
		t.Fatalf("unexpected timestamp: %v", embed["timestamp"])
	}
	footer, ok := embed["footer"].(map[string]any)
	if !ok || footer["text"] != "footer-text" {
		t.Fatalf("unexpected footer: %#v", embed["footer"])
	}
	fields, ok := embed["fields"].([]any)
	if !ok || len(fields) != 2 {
		t.Fatalf("unexpected fields: %#v", embed["fields"])
	}
	second, ok := fields[1].(map[string]any)
	if !ok || second["inline"] != false {
		t.Fatalf("expected second field inline=false, got %#v", fields[1])
	}
}

func TestDiscordAdapterOmitsEmptyTimestampAndFooter(t *testing.T) {
	var got map[string]any
	client := newTestHTTPClient(func(r *http.Request) (*http.Response, error) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return cannedResponse(http.StatusNoContent), nil
	})

	adapter := NewDiscordAdapter(client)
	if err := adapter.Send(context.Background(), "https://discord.example/webhook", "", Message{Title: "t"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	embed := got["embeds"].([]any)[0].(map[string]any)
	if _, present := embed["timestamp"]; present {
		t.Fatal("did not expect timestamp key")
	}
	if _, present := embed["footer"]; present {
		t.Fatal("did not expect footer key")
	}
}

func TestPostJSONErrorStatus(t *testing.T) {
	client := newTestHTTPClient(func(r *http.Request) (*http.Response, error) {
		return cannedResponse(http.StatusTooManyRequests), nil
	})
	adapter := NewDiscordAdapter(client)
	err := adapter.Send(context.Background(), "https://discord.example/webhook", "", Message{Title: "t"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
}
