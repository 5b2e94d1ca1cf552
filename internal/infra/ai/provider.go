package ai

import (
	"fmt"
	"net/http"

	"github.com/0Calories/kotoba-plus/internal/config"
	"github.com/0Calories/kotoba-plus/internal/domain/lexicon"
	"github.com/0Calories/kotoba-plus/internal/infra/ai/anthropic"
	"github.com/0Calories/kotoba-plus/internal/infra/ai/openai"
)

// Client is an analysis client that can name its provider and model
type Client interface {
	lexicon.Client
	Name() string
	ModelName() string
}

// NewClient builds the adapter selected by cfg.AI.Provider.
// The provider timeout lives on the http.Client.
func NewClient(cfg *config.Config) (Client, error) {
	hc := &http.Client{Timeout: cfg.AI.Timeout}
	switch cfg.AI.Provider {
	case "openai":
		return openai.NewClient(cfg.APIKey(), cfg.AI.BaseURL, cfg.AI.Model, hc), nil
	case "anthropic":
		return anthropic.NewClient(cfg.APIKey(), cfg.AI.BaseURL, cfg.AI.Model, hc), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
	}
}
