package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/crules/internal/render"
	"github.com/ppiankov/crules/internal/rules"
)

var (
	lookupExamples bool
	lookupShallow  bool
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <file|url|-> <rule-id>...",
	Short: "Print one or more rules and their subrules",
	Long: `Lookup finds rules by id, such as 1, 100, 100.1 or 100.1a, and prints
each with its subrules.

Example:
  crules lookup MagicCompRules.txt 702.9
  crules lookup MagicCompRules.txt 104.2a 104.3 --examples`,
	Args: cobra.MinimumNArgs(2),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().BoolVarP(&lookupExamples, "examples", "e", false, "include examples")
	lookupCmd.Flags().BoolVar(&lookupShallow, "shallow", false, "do not print subrules")
}

func runLookup(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	corpus, name, err := a.loadDocument(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, id := range args[1:] {
		rule, err := corpus.Find(name, id)
		if err != nil {
			return err
		}
		writeRule(out, rule, lookupShallow, lookupExamples, a.cfg.Output.Width)
	}
	return nil
}

func writeRule(w io.Writer, rule *rules.Rule, shallow, examples bool, width int) {
	rules.Walk([]*rules.Rule{rule}, func(r *rules.Rule, depth int) bool {
		indent := depth * 4
		if examples {
			// Full text when examples are requested
			fmt.Fprintf(w, "%*s- [%s] %s\n", indent, "", r.ID, r.Text)
			for _, ex := range r.Examples {
				fmt.Fprintf(w, "%*s  Example: %s\n", indent, "", ex)
			}
		} else {
			fmt.Fprintln(w, render.OutlineLine(r, indent, width))
		}
		return !shallow
	})
}
