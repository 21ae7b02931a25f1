// Package render writes a parsed edition in human and machine readable forms.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ppiankov/crules/internal/rules"
)

// DefaultWidth is the column budget used when the caller does not choose one
const DefaultWidth = 120

const (
	indentStep = 4
	ellipsis   = "..."
	// "- [" + "] " plus one column of slack
	bulletOverhead = 5
)

// Outline prints the rule tree, one rule per line, indented by depth and
// truncated to fit in width columns.
func Outline(w io.Writer, edition *rules.Edition, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}

	if _, err := fmt.Fprintf(w, "Rules structure, effective %s\n\n", edition.EffectiveDate); err != nil {
		return err
	}
	return OutlineRules(w, edition.Rules, width)
}

// OutlineRules prints rules without the edition header
func OutlineRules(w io.Writer, rs []*rules.Rule, width int) error {
	var err error
	rules.Walk(rs, func(r *rules.Rule, depth int) bool {
		if err != nil {
			return false
		}
		_, err = io.WriteString(w, OutlineLine(r, depth*indentStep, width)+"\n")
		return true
	})
	return err
}

// OutlineLine renders a single rule at the given indent
func OutlineLine(r *rules.Rule, indent, width int) string {
	prefix := strings.Repeat(" ", indent)
	budget := width - indent - len(r.ID) - bulletOverhead

	text := r.Text
	if runewidth.StringWidth(text) > budget {
		if budget < len(ellipsis) {
			budget = len(ellipsis)
		}
		text = runewidth.Truncate(text, budget, ellipsis)
	}
	return fmt.Sprintf("%s- [%s] %s", prefix, r.ID, text)
}
