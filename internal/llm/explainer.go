package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/crules/internal/logging"
	"github.com/ppiankov/crules/internal/model"
	"github.com/ppiankov/crules/internal/rules"
)

// ErrDisabled is returned by Explain when no provider is configured
var ErrDisabled = errors.New("LLM explanations are disabled (set llm.provider)")

// Explanation is a checked model answer about one rule
type Explanation struct {
	RuleID     string   `json:"rule_id" yaml:"rule_id"`
	Text       string   `json:"text" yaml:"text"`
	Cited      []string `json:"cited" yaml:"cited"`
	Model      string   `json:"model" yaml:"model"`
	TokensUsed int      `json:"tokens_used" yaml:"tokens_used"`
}

// Explainer asks a provider about rules and verifies its citations
type Explainer struct {
	provider Provider
	strict   bool
	logger   *slog.Logger
}

// NewExplainer creates an explainer from configuration
func NewExplainer(config model.LLMConfig, logger *slog.Logger) (*Explainer, error) {
	provider, err := NewProvider(config, logger)
	if err != nil {
		return nil, err
	}
	return NewExplainerWithProvider(provider, config.StrictCitations, logger), nil
}

// NewExplainerWithProvider wraps an existing provider; provider may be nil
func NewExplainerWithProvider(provider Provider, strict bool, logger *slog.Logger) *Explainer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Explainer{provider: provider, strict: strict, logger: logger}
}

// IsEnabled reports whether a provider is configured
func (e *Explainer) IsEnabled() bool {
	return e.provider != nil
}

// ProviderName returns the configured provider, or "" when disabled
func (e *Explainer) ProviderName() string {
	if e.provider == nil {
		return ""
	}
	return e.provider.Name()
}

// Explain asks the provider to explain rule. With strict citations on,
// an answer citing a rule outside rule's subtree is rejected with
// ErrCitationLeak.
func (e *Explainer) Explain(ctx context.Context, rule *rules.Rule) (*Explanation, error) {
	if e.provider == nil {
		return nil, ErrDisabled
	}

	resp, err := e.provider.Complete(ctx, CompletionRequest{
		System: systemPrompt,
		Prompt: BuildPrompt(rule),
	})
	if err != nil {
		return nil, fmt.Errorf("explain %s: %w", rule.ID, err)
	}

	cited := ExtractCitations(resp.Text)
	if err := CheckCitations(cited, AllowedIDs(rule)); err != nil {
		if e.strict {
			return nil, fmt.Errorf("explain %s: %w", rule.ID, err)
		}
		e.logger.Warn("explanation cites rules outside the subtree", "rule", rule.ID, "error", err)
	}

	return &Explanation{
		RuleID:     rule.ID,
		Text:       resp.Text,
		Cited:      cited,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
	}, nil
}
