package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/crules/internal/render"
	"github.com/ppiankov/crules/internal/worker"
)

var (
	batchConcurrency int
	batchOutputDir   string
	batchFormat      string
	batchTimeout     time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Parse many rules documents in parallel",
	Long: `Batch reads document locations (paths or URLs, one per line) from a
file, loads and parses them concurrently and prints a summary of each
edition. With --output-dir every edition is also exported.

Lines starting with # are ignored.

Example:
  crules batch editions.txt
  crules batch editions.txt --concurrency 8 --output-dir ./editions --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "", "export each edition into this directory")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "yaml", "export format for --output-dir")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchConcurrency > 0 {
		viper.Set("concurrency.workers", batchConcurrency)
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	format, err := render.ParseFormat(batchFormat)
	if err != nil {
		return err
	}

	locations, err := worker.ReadLocations(args[0])
	if err != nil {
		return fmt.Errorf("read locations: %w", err)
	}
	if len(locations) == 0 {
		return fmt.Errorf("no locations in %s", args[0])
	}

	if batchOutputDir != "" {
		if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	a.logger.Info("batch started", "locations", len(locations), "workers", a.cfg.Concurrency.Workers)
	corpus, results := a.loader.Load(ctx, locations)

	out := cmd.OutOrStdout()
	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", result.Location, result.Err)
			continue
		}

		cached := ""
		if result.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(out, "✓ %s: effective %s, %d rules, %d glossary terms%s\n",
			result.Name, result.Edition.EffectiveDate, result.Edition.RuleCount(), len(result.Edition.Glossary), cached)

		if batchOutputDir == "" {
			continue
		}
		path := filepath.Join(batchOutputDir, exportFilename(result.Name, format))
		if err := render.WriteFile(path, result.Edition, format, a.cfg.Output.Width); err != nil {
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", result.Location, err)
		}
	}

	fmt.Fprintf(out, "\nTotal: %d, loaded: %d, failed: %d\n", len(results), len(corpus.Documents), failures)
	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed", failures, len(results))
	}
	return nil
}

// exportFilename replaces the document's extension with the format's
func exportFilename(name string, format render.Format) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		case ' ':
			return '-'
		}
		return r
	}, base)
	if base == "" {
		base = "edition"
	}

	ext := map[render.Format]string{
		render.FormatOutline:  ".txt",
		render.FormatJSON:     ".json",
		render.FormatYAML:     ".yaml",
		render.FormatMarkdown: ".md",
	}[format]
	return base + ext
}
