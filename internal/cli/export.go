package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/crules/internal/render"
)

var (
	exportFormat string
	exportOutput string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [file|url|-]",
	Short: "Export a parsed edition as JSON, YAML, Markdown or an outline",
	Long: `Export parses a comprehensive rules document and writes the whole
edition: effective date, introduction, rules with examples, glossary and
credits.

The format is taken from --format, then from the extension of --output,
then from output.format in the configuration.

Example:
  crules export MagicCompRules.txt --output rules.yaml
  crules export MagicCompRules.txt --format json > rules.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format (outline, json, yaml, markdown)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	format, err := resolveFormat(exportFormat, exportOutput, a.cfg.Output.Format)
	if err != nil {
		return err
	}

	result := a.loader.LoadOne(context.Background(), locationArg(args, 0))
	if result.Err != nil {
		return fmt.Errorf("load: %w", result.Err)
	}

	if exportOutput == "" {
		return render.Write(cmd.OutOrStdout(), result.Edition, format, a.cfg.Output.Width)
	}
	if err := render.WriteFile(exportOutput, result.Edition, format, a.cfg.Output.Width); err != nil {
		return err
	}
	a.logger.Info("exported edition", "document", result.Name, "format", format, "path", exportOutput)
	return nil
}

// resolveFormat picks the explicit format, then the output extension,
// then the configured default.
func resolveFormat(flag, outputPath, configured string) (render.Format, error) {
	if flag != "" {
		return render.ParseFormat(flag)
	}
	if outputPath != "" {
		if format, err := render.FormatFromPath(outputPath); err == nil {
			return format, nil
		}
	}
	return render.ParseFormat(configured)
}
