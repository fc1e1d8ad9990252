package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stake-gauntlet/internal/config"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// verdict is the JSON document the judge model is instructed to emit.
type verdict struct {
	Decision   string  `json:"decision"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// OpenAIProvider judges proofs through an OpenAI-compatible chat completions
// endpoint.
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAIProvider(cfg config.AIConfig) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

func (p *OpenAIProvider) Decide(ctx context.Context, req DecisionRequest) (Decision, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    buildMessages(req),
		Temperature: 0,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("encode judge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Decision{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Decision{}, fmt.Errorf("judge request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Decision{}, fmt.Errorf("read judge response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Decision{}, fmt.Errorf("judge upstream status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Decision{}, fmt.Errorf("parse judge envelope: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Decision{}, fmt.Errorf("judge returned no choices")
	}
	return parseVerdict(parsed.Choices[0].Message.Content)
}

// parseVerdict extracts the verdict JSON from the model output, tolerating
// markdown code fences around it.
func parseVerdict(content string) (Decision, error) {
	text := strings.TrimSpace(content)
	if i := strings.Index(text, "{"); i >= 0 {
		if j := strings.LastIndex(text, "}"); j > i {
			text = text[i : j+1]
		}
	}
	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Decision{}, fmt.Errorf("parse judge verdict: %w", err)
	}
	outcome := DecisionOutcome(strings.ToUpper(strings.TrimSpace(v.Decision)))
	if !outcome.valid() {
		return Decision{}, fmt.Errorf("judge verdict decision %q unknown", v.Decision)
	}
	conf := v.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return Decision{Outcome: outcome, Reasoning: strings.TrimSpace(v.Reasoning), Confidence: conf}, nil
}
