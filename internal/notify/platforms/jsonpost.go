package platforms

import (
	"context"
	"strings"
)

// JSONAdapter posts the rendered message as plain JSON, for consumers that
// do their own templating. The secret becomes a bearer token when set.
type JSONAdapter struct {
	client *HTTPClient
}

func NewJSONAdapter(client *HTTPClient) *JSONAdapter {
	return &JSONAdapter{client: client}
}

func (a *JSONAdapter) Name() string {
	return "json"
}

func (a *JSONAdapter) Send(ctx context.Context, endpoint, secret string, msg Message) error {
	type jsonField struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	fields := make([]jsonField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, jsonField{Name: f.Name, Value: f.Value})
	}
	payload := map[string]any{
		"title":       msg.Title,
		"content":     msg.Content,
		"description": msg.Description,
		"timestamp":   msg.Timestamp,
		"fields":      fields,
	}
	headers := map[string]string{}
	if s := strings.TrimSpace(secret); s != "" {
		headers["Authorization"] = "Bearer " + s
	}
	return a.client.PostJSON(ctx, endpoint, headers, payload)
}
