// Package parser turns the plain-text comprehensive rules into a rules.Edition.
//
// Parsing is a single pass over the document's lines. A section state
// machine decides which region of the document each line belongs to;
// inside the rules region a tree builder reconstructs rule nesting from
// id prefixes. Parsing never fails: lines that do not fit are either
// absorbed as free text or dropped, depending on the section.
package parser

import (
	"strings"

	"github.com/ppiankov/crules/internal/rules"
)

// Section is a region of the rules document
type Section int

const (
	SectionHeading Section = iota
	SectionIntroduction
	SectionTableOfContents
	SectionRules
	SectionGlossary
	SectionCredits
)

func (s Section) String() string {
	switch s {
	case SectionHeading:
		return "heading"
	case SectionIntroduction:
		return "introduction"
	case SectionTableOfContents:
		return "contents"
	case SectionRules:
		return "rules"
	case SectionGlossary:
		return "glossary"
	case SectionCredits:
		return "credits"
	default:
		return "unknown"
	}
}

// Sentinel lines that move the parser from one section to the next.
const (
	introductionHeading = "Introduction"
	contentsHeading     = "Contents"
	glossaryHeading     = "Glossary"
	creditsHeading      = "Credits"
)

// Stats counts what happened to the lines of a document
type Stats struct {
	Lines           int `json:"lines"`
	Rules           int `json:"rules"`
	Examples        int `json:"examples"`
	GlossaryTerms   int `json:"glossary_terms"`
	DroppedLines    int `json:"dropped_lines"`    // unrecognised lines inside the rules region
	DroppedExamples int `json:"dropped_examples"` // examples seen before any rule
	DroppedTerms    int `json:"dropped_terms"`    // glossary terms with no definition
}

// Parser holds the state of one parse. It is not safe for concurrent use.
type Parser struct {
	edition      rules.Edition
	introduction strings.Builder
	credits      strings.Builder
	builder      *treeBuilder
	section      Section
	pendingTerm  *string
	stats        Stats
}

// New creates a parser positioned at the start of a document
func New() *Parser {
	return &Parser{
		edition: rules.NewEdition(),
		builder: newTreeBuilder(),
		section: SectionHeading,
	}
}

// Parse parses a whole document
func Parse(document string) rules.Edition {
	edition, _ := ParseWithStats(document)
	return edition
}

// ParseWithStats parses a whole document and reports what happened to
// its lines.
func ParseWithStats(document string) (rules.Edition, Stats) {
	p := New()
	for line := range strings.Lines(document) {
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		p.Update(line)
	}
	edition := p.Finalize()
	return edition, p.Stats()
}

// Section returns the region the parser is currently scanning
func (p *Parser) Section() Section {
	return p.section
}

// Stats returns line counters accumulated so far
func (p *Parser) Stats() Stats {
	return p.stats
}

// Update feeds one line, without its line terminator, to the parser.
func (p *Parser) Update(line string) {
	p.stats.Lines++

	switch p.section {
	case SectionHeading:
		if date, ok := MatchEffectiveDate(line); ok {
			p.edition.EffectiveDate = date
		} else if line == introductionHeading {
			p.section = SectionIntroduction
		}

	case SectionIntroduction:
		if line == contentsHeading {
			p.section = SectionTableOfContents
			return
		}
		p.introduction.WriteString(line)
		p.introduction.WriteByte('\n')

	case SectionTableOfContents:
		// The contents list ends with its own "Credits" entry.
		if line == creditsHeading {
			p.section = SectionRules
		}

	case SectionRules:
		p.updateRules(line)

	case SectionGlossary:
		p.updateGlossary(line)

	case SectionCredits:
		p.credits.WriteString(line)
		p.credits.WriteByte('\n')
	}
}

func (p *Parser) updateRules(line string) {
	if line == glossaryHeading {
		p.builder.drain()
		p.section = SectionGlossary
		return
	}
	if id, text, ok := MatchRule(line); ok {
		p.builder.place(id, text)
		p.stats.Rules++
		return
	}
	if text, ok := MatchExample(line); ok {
		if p.builder.addExample(text) {
			p.stats.Examples++
		} else {
			p.stats.DroppedExamples++
		}
		return
	}
	if line != "" {
		p.stats.DroppedLines++
	}
}

// updateGlossary pairs terms with definitions. Entries are a term line
// followed by a definition line, separated from the next entry by a
// blank line.
func (p *Parser) updateGlossary(line string) {
	switch {
	case line == "":
		p.dropPendingTerm()
	case line == creditsHeading:
		p.dropPendingTerm()
		p.section = SectionCredits
	case p.pendingTerm != nil:
		p.edition.Glossary[*p.pendingTerm] = line
		p.pendingTerm = nil
		p.stats.GlossaryTerms++
	default:
		term := line
		p.pendingTerm = &term
	}
}

func (p *Parser) dropPendingTerm() {
	if p.pendingTerm != nil {
		p.stats.DroppedTerms++
		p.pendingTerm = nil
	}
}

// Finalize closes any rules still open and returns the edition. The
// parser must not be used afterwards.
func (p *Parser) Finalize() rules.Edition {
	p.builder.drain()
	p.dropPendingTerm()

	p.edition.Introduction = p.introduction.String()
	p.edition.Credits = p.credits.String()
	p.edition.Rules = p.builder.roots

	edition := p.edition
	p.edition = rules.Edition{}
	p.builder = newTreeBuilder()
	return edition
}
