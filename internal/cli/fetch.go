package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/crules/internal/source"
)

var fetchOutput string

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a rules document",
	Long: `Fetch downloads a comprehensive rules text file, honouring robots.txt,
the per-host rate limit and the proxy settings, and stores it as UTF-8.

Example:
  crules fetch https://media.wizards.com/2025/downloads/MagicCompRules.txt -o cr.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "output path (default: stdout)")
}

func runFetch(cmd *cobra.Command, args []string) (err error) {
	rawURL := args[0]
	if !source.IsURL(rawURL) {
		return fmt.Errorf("not an http(s) URL: %s", rawURL)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	result, err := a.fetch(context.Background(), rawURL)
	if err != nil {
		return err
	}
	a.logger.Info("fetched document",
		"url", result.FinalURL,
		"status", result.Meta.StatusCode,
		"content_type", result.Meta.ContentType,
		"last_modified", result.Meta.LastModified,
		"bytes", len(result.Text),
	)

	var w io.Writer = cmd.OutOrStdout()
	if fetchOutput != "" {
		var f *os.File
		f, err = os.Create(fetchOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", fetchOutput, err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", fetchOutput, closeErr)
			}
		}()
		w = f
	}

	if _, err := io.WriteString(w, result.Text); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// fetch downloads rawURL through the limiter shared with the loader
func (a *app) fetch(ctx context.Context, rawURL string) (*source.FetchResult, error) {
	if err := a.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	result, err := a.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return result, nil
}
