package parser

import "regexp"

// LineKind identifies the shape of a single input line
type LineKind int

const (
	KindText          LineKind = iota // Anything unrecognised
	KindEffectiveDate                 // "These rules are effective as of <date>."
	KindRule                          // "<id>[.] <text>"
	KindExample                       // "Example: <text>"
)

func (k LineKind) String() string {
	switch k {
	case KindEffectiveDate:
		return "effective_date"
	case KindRule:
		return "rule"
	case KindExample:
		return "example"
	default:
		return "text"
	}
}

// Line is a classified input line with its captured fields
type Line struct {
	Kind LineKind
	Date string // KindEffectiveDate
	ID   string // KindRule
	Text string // KindRule, KindExample
}

var (
	effectiveDatePattern = regexp.MustCompile(`\AThese rules are effective as of (.+)\.\z`)
	rulePattern          = regexp.MustCompile(`\A(\d(?:\d{2}(?:\.\d+[a-z]?)?)?)\.? (.+)\z`)
	examplePattern       = regexp.MustCompile(`\AExample: (.+)\z`)
)

// MatchEffectiveDate reports the date announced by line, if it is an
// effective-date statement.
func MatchEffectiveDate(line string) (string, bool) {
	m := effectiveDatePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MatchRule splits a rule line into its id and text
func MatchRule(line string) (id, text string, ok bool) {
	m := rulePattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// MatchExample returns the text following the "Example: " marker
func MatchExample(line string) (string, bool) {
	m := examplePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Classify tests line against every shape in order: effective date,
// rule, example. The parser itself only tests the shapes that matter in
// the section it is scanning.
func Classify(line string) Line {
	if date, ok := MatchEffectiveDate(line); ok {
		return Line{Kind: KindEffectiveDate, Date: date}
	}
	if id, text, ok := MatchRule(line); ok {
		return Line{Kind: KindRule, ID: id, Text: text}
	}
	if text, ok := MatchExample(line); ok {
		return Line{Kind: KindExample, Text: text}
	}
	return Line{Kind: KindText, Text: line}
}
