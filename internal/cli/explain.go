package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/crules/internal/llm"
)

var (
	explainProvider string
	explainModel    string
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <file|url|-> <rule-id>",
	Short: "Explain a rule in plain language using an LLM",
	Long: `Explain sends a rule, its subrules and their examples to an OpenAI
compatible chat API and prints a short explanation.

With llm.strict_citations (the default) the answer is rejected if it
cites any rule outside the requested subtree.

The API key is read from CRULES_LLM_API_KEY or OPENAI_API_KEY.

Example:
  crules explain MagicCompRules.txt 702.9
  crules explain MagicCompRules.txt 104.2 --model gpt-4o`,
	Args: cobra.ExactArgs(2),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringVar(&explainProvider, "provider", "", "LLM provider (default: llm.provider, or openai)")
	explainCmd.Flags().StringVar(&explainModel, "model", "", "LLM model name (default: llm.model)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	llmCfg := a.cfg.LLM
	if explainProvider != "" {
		llmCfg.Provider = explainProvider
	}
	if llmCfg.Provider == "" {
		llmCfg.Provider = "openai"
	}
	if explainModel != "" {
		llmCfg.Model = explainModel
	}

	explainer, err := llm.NewExplainer(llmCfg, a.logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	corpus, name, err := a.loadDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	rule, err := corpus.Find(name, args[1])
	if err != nil {
		return err
	}

	explanation, err := explainer.Explain(ctx, rule)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[%s] %s\n\n%s\n", rule.ID, rule.Text, explanation.Text)
	if len(explanation.Cited) > 0 {
		fmt.Fprintf(out, "\nCited: %s\n", strings.Join(explanation.Cited, ", "))
	}
	a.logger.Debug("explanation", "provider", explainer.ProviderName(), "model", explanation.Model, "tokens", explanation.TokensUsed)
	return nil
}
