package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/crules/internal/rules"
)

// Format selects an output encoding
type Format string

const (
	FormatOutline  Format = "outline"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name or a common alias
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "outline", "text", "txt":
		return FormatOutline, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (supported: outline, json, yaml, markdown)", s)
	}
}

// FormatFromPath guesses a format from a file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Write renders edition to w in the given format
func Write(w io.Writer, edition *rules.Edition, format Format, width int) error {
	switch format {
	case FormatOutline:
		return Outline(w, edition, width)
	case FormatJSON:
		return JSON(w, edition)
	case FormatYAML:
		return YAML(w, edition)
	case FormatMarkdown:
		return Markdown(w, edition)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteFile renders edition into path, creating or truncating it
func WriteFile(path string, edition *rules.Edition, format Format, width int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return Write(f, edition, format, width)
}

// JSON writes the edition as indented JSON
func JSON(w io.Writer, edition *rules.Edition) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(edition); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes the edition as a YAML document
func YAML(w io.Writer, edition *rules.Edition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(edition); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}

// Markdown writes the edition as a Markdown document: rules as nested
// lists, examples as quotes, glossary sorted by term.
func Markdown(w io.Writer, edition *rules.Edition) error {
	var b strings.Builder

	b.WriteString("# Comprehensive Rules\n\n")
	fmt.Fprintf(&b, "_Effective %s_\n\n", edition.EffectiveDate)

	if intro := strings.TrimSpace(edition.Introduction); intro != "" {
		b.WriteString("## Introduction\n\n")
		b.WriteString(intro)
		b.WriteString("\n\n")
	}

	b.WriteString("## Rules\n\n")
	rules.Walk(edition.Rules, func(r *rules.Rule, depth int) bool {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "%s- **%s** %s\n", indent, r.ID, r.Text)
		for _, ex := range r.Examples {
			fmt.Fprintf(&b, "%s  > _Example:_ %s\n", indent, ex)
		}
		return true
	})
	b.WriteString("\n")

	if len(edition.Glossary) > 0 {
		b.WriteString("## Glossary\n\n")
		for _, term := range SortedTerms(edition.Glossary) {
			fmt.Fprintf(&b, "**%s**  \n%s\n\n", term, edition.Glossary[term])
		}
	}

	if credits := strings.TrimSpace(edition.Credits); credits != "" {
		b.WriteString("## Credits\n\n")
		b.WriteString(credits)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SortedTerms returns the glossary terms in alphabetical order
func SortedTerms(glossary map[string]string) []string {
	terms := make([]string, 0, len(glossary))
	for term := range glossary {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
