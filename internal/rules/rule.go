// Package rules holds the parsed form of a comprehensive rules document.
package rules

import (
	"errors"
	"strings"
)

// DefaultEffectiveDate is used until a document announces its own date.
const DefaultEffectiveDate = "unknown"

// ErrNotFound is returned by lookups that must produce an error rather than a boolean.
var ErrNotFound = errors.New("rule not found")

// Rule is one numbered rule and the rules nested beneath it
type Rule struct {
	ID       string   `json:"id" yaml:"id"`
	Text     string   `json:"text" yaml:"text"`
	Subrules []*Rule  `json:"subrules,omitempty" yaml:"subrules,omitempty"`
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// NewRule creates a rule with no children and no examples
func NewRule(id, text string) *Rule {
	return &Rule{ID: id, Text: text}
}

// Lookup returns r itself when the ids match, otherwise searches its subrules
func (r *Rule) Lookup(id string) (*Rule, bool) {
	if r.ID == id {
		return r, true
	}
	return Lookup(r.Subrules, id)
}

// Edition is the result of parsing one rules document.
type Edition struct {
	EffectiveDate string            `json:"effective_date" yaml:"effective_date"`
	Introduction  string            `json:"introduction" yaml:"introduction"`
	Rules         []*Rule           `json:"rules" yaml:"rules"`
	Glossary      map[string]string `json:"glossary" yaml:"glossary"`
	Credits       string            `json:"credits" yaml:"credits"`
}

// NewEdition returns an empty edition carrying the placeholder effective date
func NewEdition() Edition {
	return Edition{
		EffectiveDate: DefaultEffectiveDate,
		Rules:         make([]*Rule, 0),
		Glossary:      make(map[string]string),
	}
}

// Lookup finds a rule anywhere in the edition by exact id
func (e *Edition) Lookup(id string) (*Rule, bool) {
	return Lookup(e.Rules, id)
}

// RuleCount returns the number of rules in the whole tree
func (e *Edition) RuleCount() int {
	n := 0
	Walk(e.Rules, func(*Rule, int) bool {
		n++
		return true
	})
	return n
}

// Lookup descends through rules, following the rule whose id is the
// longest prefix of id, until it reaches an exact match or runs out of
// candidates. Longest wins so that 100.10 is not mistaken for a child of
// its sibling 100.1.
func Lookup(rules []*Rule, id string) (*Rule, bool) {
	for {
		next := findPrefix(rules, id)
		if next == nil {
			return nil, false
		}
		if next.ID == id {
			return next, true
		}
		rules = next.Subrules
	}
}

func findPrefix(rules []*Rule, id string) *Rule {
	var best *Rule
	for _, r := range rules {
		if strings.HasPrefix(id, r.ID) && (best == nil || len(r.ID) > len(best.ID)) {
			best = r
		}
	}
	return best
}

// Walk visits rules depth-first in document order. depth is 0 for the
// rules passed in. Returning false from fn skips that rule's subrules.
func Walk(rules []*Rule, fn func(r *Rule, depth int) bool) {
	walk(rules, 0, fn)
}

func walk(rules []*Rule, depth int, fn func(*Rule, int) bool) {
	for _, r := range rules {
		if fn(r, depth) {
			walk(r.Subrules, depth+1, fn)
		}
	}
}
