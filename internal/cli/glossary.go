package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/crules/internal/render"
	"github.com/ppiankov/crules/internal/rules"
)

// glossaryCmd represents the glossary command
var glossaryCmd = &cobra.Command{
	Use:   "glossary <file|url|-> [term]",
	Short: "List glossary terms or print one definition",
	Long: `Glossary prints every glossary term in alphabetical order, or the
definition of a single term. Term matching ignores case.

Example:
  crules glossary MagicCompRules.txt
  crules glossary MagicCompRules.txt "active player"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runGlossary,
}

func init() {
	rootCmd.AddCommand(glossaryCmd)
}

func runGlossary(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	result := a.loader.LoadOne(context.Background(), args[0])
	if result.Err != nil {
		return fmt.Errorf("load: %w", result.Err)
	}
	glossary := result.Edition.Glossary
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		for _, term := range render.SortedTerms(glossary) {
			fmt.Fprintln(out, term)
		}
		return nil
	}

	term, definition, ok := findTerm(glossary, args[1])
	if !ok {
		return fmt.Errorf("glossary term %q: %w", args[1], rules.ErrNotFound)
	}
	fmt.Fprintf(out, "%s\n    %s\n", term, definition)
	return nil
}

// findTerm matches exactly first, then ignoring case
func findTerm(glossary map[string]string, term string) (string, string, bool) {
	if definition, ok := glossary[term]; ok {
		return term, definition, true
	}
	for _, t := range render.SortedTerms(glossary) {
		if strings.EqualFold(t, term) {
			return t, glossary[t], true
		}
	}
	return "", "", false
}
