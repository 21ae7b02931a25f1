package parser

import "testing"

func TestMatchRule(t *testing.T) {
	tests := []struct {
		line string
		id   string
		text string
		ok   bool
	}{
		{"1. Game Concepts", "1", "Game Concepts", true},
		{"100. General", "100", "General", true},
		{"100.1. These Magic rules apply to any Magic game.", "100.1", "These Magic rules apply to any Magic game.", true},
		{"100.1a A two-player game is a game that begins with only two players.", "100.1a", "A two-player game is a game that begins with only two players.", true},
		{"702.19c Trample text", "702.19c", "Trample text", true},
		{"100 General", "100", "General", true},
		{"10. Not a rule id", "", "", false},
		{"100.1ab Two letters", "", "", false},
		{"100.", "", "", false},
		{"100. ", "", "", false},
		{"Example: A player casts a spell.", "", "", false},
		{"Glossary", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		id, text, ok := MatchRule(tt.line)
		if ok != tt.ok {
			t.Errorf("MatchRule(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if id != tt.id || text != tt.text {
			t.Errorf("MatchRule(%q) = (%q, %q), want (%q, %q)", tt.line, id, text, tt.id, tt.text)
		}
	}
}

func TestMatchEffectiveDate(t *testing.T) {
	date, ok := MatchEffectiveDate("These rules are effective as of August 5, 1993.")
	if !ok || date != "August 5, 1993" {
		t.Errorf("got (%q, %v)", date, ok)
	}

	for _, line := range []string{
		"These rules are effective as of August 5, 1993",
		"  These rules are effective as of August 5, 1993.",
		"These rules are effective as of .",
		"Magic: The Gathering Comprehensive Rules",
	} {
		if _, ok := MatchEffectiveDate(line); ok {
			t.Errorf("expected no match for %q", line)
		}
	}
}

func TestMatchExample(t *testing.T) {
	text, ok := MatchExample("Example: A creature with flying attacks.")
	if !ok || text != "A creature with flying attacks." {
		t.Errorf("got (%q, %v)", text, ok)
	}

	for _, line := range []string{"Example:", "Example: ", "Examples: two", " Example: indented"} {
		if _, ok := MatchExample(line); ok {
			t.Errorf("expected no match for %q", line)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		kind LineKind
	}{
		{"These rules are effective as of June 9, 2023.", KindEffectiveDate},
		{"100.1a Two-player game.", KindRule},
		{"Example: Something happens.", KindExample},
		{"This document is the ultimate authority.", KindText},
		{"", KindText},
	}

	for _, tt := range tests {
		got := Classify(tt.line)
		if got.Kind != tt.kind {
			t.Errorf("Classify(%q) = %s, want %s", tt.line, got.Kind, tt.kind)
		}
	}

	l := Classify("100.1a Two-player game.")
	if l.ID != "100.1a" || l.Text != "Two-player game." {
		t.Errorf("unexpected captures: %+v", l)
	}
}
