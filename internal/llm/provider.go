// Package llm explains a rule in plain language through an OpenAI
// compatible chat API. Explanations may only cite rules from the subtree
// they were asked about.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/crules/internal/rules"
)

// ErrCitationLeak is returned when a model cites a rule it was not given
var ErrCitationLeak = errors.New("citation leak")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a system and user prompt and returns the reply
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one chat exchange
type CompletionRequest struct {
	System    string
	Prompt    string
	Model     string
	MaxTokens int
}

// CompletionResponse is the model's reply
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

const systemPrompt = "You explain Magic: The Gathering comprehensive rules to players. " +
	"You only use the rule text you are given and cite rules by id in square brackets."

const ruleIDPattern = `\d(?:\d{2}(?:\.\d+[a-z]?)?)?`

// citationPattern matches a bracket of one or more rule ids, such as
// [100.1a] or [702.9a, 702.9b]
var citationPattern = regexp.MustCompile(
	`\[\s*(` + ruleIDPattern + `(?:\s*(?:,|;|&|\band\b)\s*` + ruleIDPattern + `)*)\s*\]`)

var ruleIDRegexp = regexp.MustCompile(`\b` + ruleIDPattern + `\b`)

// BuildPrompt renders rule, its subrules and their examples into the
// user prompt. The ids it lists are the only ones the reply may cite.
func BuildPrompt(rule *rules.Rule) string {
	var b strings.Builder

	b.WriteString("Explain the following rule in 3-5 sentences for a player who knows the basics.\n\n")
	b.WriteString("RULES:\n")
	b.WriteString("1. Cite rules only as [id], using ids from the text below.\n")
	b.WriteString("2. Do not cite or describe any rule that is not listed below.\n")
	b.WriteString("3. If the text does not answer something, say so.\n\n")
	b.WriteString("Rule text:\n")

	rules.Walk([]*rules.Rule{rule}, func(r *rules.Rule, depth int) bool {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "%s[%s] %s\n", indent, r.ID, r.Text)
		for _, ex := range r.Examples {
			fmt.Fprintf(&b, "%s  Example: %s\n", indent, ex)
		}
		return true
	})

	return b.String()
}

// AllowedIDs lists the ids of rule and every rule below it
func AllowedIDs(rule *rules.Rule) map[string]bool {
	allowed := make(map[string]bool)
	rules.Walk([]*rules.Rule{rule}, func(r *rules.Rule, _ int) bool {
		allowed[r.ID] = true
		return true
	})
	return allowed
}

// ExtractCitations returns the distinct rule ids cited in text, in order
// of first appearance.
func ExtractCitations(text string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		for _, id := range ruleIDRegexp.FindAllString(m[1], -1) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// CheckCitations fails with ErrCitationLeak on the first cited id that
// is not allowed.
func CheckCitations(cited []string, allowed map[string]bool) error {
	for _, id := range cited {
		if !allowed[id] {
			return fmt.Errorf("%w: model cited rule %s", ErrCitationLeak, id)
		}
	}
	return nil
}
