package parser

import (
	"strings"

	"github.com/ppiankov/crules/internal/rules"
)

// treeBuilder rebuilds rule nesting from a flat sequence of rule lines.
//
// The only structural signal in the source is that a rule's id starts
// with the id of each of its ancestors. The stack holds the rules that
// are still open, outermost first; a rule is closed (rolled up into its
// parent, or into roots when it has none) as soon as a rule arrives that
// it is not a prefix of.
type treeBuilder struct {
	stack []*rules.Rule
	roots []*rules.Rule
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{roots: make([]*rules.Rule, 0)}
}

// place closes every open rule that is not an ancestor of id, then opens
// a new rule on top of the stack.
func (b *treeBuilder) place(id, text string) {
	b.rollUpUntil(id)
	b.stack = append(b.stack, rules.NewRule(id, text))
}

// rollUpUntil pops rules until the top of the stack is a prefix of id.
// Rolling up to "" drains the stack entirely.
func (b *treeBuilder) rollUpUntil(id string) {
	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		if strings.HasPrefix(id, top.ID) {
			return
		}

		b.stack[len(b.stack)-1] = nil
		b.stack = b.stack[:len(b.stack)-1]

		if len(b.stack) == 0 {
			b.roots = append(b.roots, top)
			return
		}
		parent := b.stack[len(b.stack)-1]
		parent.Subrules = append(parent.Subrules, top)
	}
}

// addExample attaches text to the most recently opened rule. It reports
// false, and drops the example, when no rule is open.
func (b *treeBuilder) addExample(text string) bool {
	if len(b.stack) == 0 {
		return false
	}
	top := b.stack[len(b.stack)-1]
	top.Examples = append(top.Examples, text)
	return true
}

// drain closes every open rule.
func (b *treeBuilder) drain() {
	b.rollUpUntil("")
}

func (b *treeBuilder) open() int {
	return len(b.stack)
}
