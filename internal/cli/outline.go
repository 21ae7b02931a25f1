package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/crules/internal/render"
)

var outlineWidth int

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline [file|url|-]",
	Short: "Print the rule tree as an indented outline",
	Long: `Outline parses a comprehensive rules document and prints one line per
rule, indented by depth and truncated to the terminal width.

Reads standard input when no location is given.

Example:
  crules outline MagicCompRules.txt
  curl -s https://media.wizards.com/.../MagicCompRules.txt | crules outline
  crules outline MagicCompRules.txt --width 80`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)

	outlineCmd.Flags().IntVarP(&outlineWidth, "width", "w", 0, "line width in columns (default: output.width)")
}

func runOutline(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	result := a.loader.LoadOne(context.Background(), locationArg(args, 0))
	if result.Err != nil {
		return fmt.Errorf("load: %w", result.Err)
	}

	width := outlineWidth
	if width <= 0 {
		width = a.cfg.Output.Width
	}
	return render.Outline(cmd.OutOrStdout(), result.Edition, width)
}
