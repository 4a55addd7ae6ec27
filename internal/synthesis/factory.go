package synthesis

import (
	"fmt"
	"time"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

// Config selects and configures a generator.
type Config struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"-"`
	Timeout  time.Duration `yaml:"timeout"`
}

// New builds the configured generator wrapped in its timeout. An empty provider
// returns nil: synthesis is disabled.
func New(cfg Config) (Generator, error) {
	var g Generator
	switch cfg.Provider {
	case "":
		return nil, nil
	case ProviderAnthropic:
		a, err := NewAnthropicGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		g = a
	case ProviderOpenAI:
		o, err := NewOpenAIGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		g = o
	case ProviderOllama:
		g = NewOllamaGenerator(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown synthesis provider %q", cfg.Provider)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return WithTimeout(g, timeout), nil
}
