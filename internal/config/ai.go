package config

import "github.com/caarlos0/env/v11"

// AIConfig points at an OpenAI-compatible chat completions endpoint used to
// judge check-in proofs for games with the AI verification method.
type AIConfig struct {
	BaseURL        string `env:"AI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	APIKey         string `env:"AI_API_KEY"`
	Model          string `env:"AI_MODEL" envDefault:"gpt-4o-mini"`
	TimeoutSeconds int    `env:"AI_TIMEOUT_SECONDS" envDefault:"30"`
}

func LoadAI() (AIConfig, error) {
	var cfg AIConfig
	err := env.Parse(&cfg)
	return cfg, err
}
