package llm

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/crules/internal/model"
)

// NewProvider creates a provider from configuration. An empty provider
// name disables explanations and returns nil.
func NewProvider(config model.LLMConfig, logger *slog.Logger) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config, logger)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}
