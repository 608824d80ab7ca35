package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotsetgreg/claimcheck/internal/model"
	"github.com/dotsetgreg/claimcheck/internal/pipeline"
)

var (
	verifyFile      string
	outJSON         string
	outMD           string
	noVariants      bool
	noClassify      bool
	minPriority     string
	caseInsensitive bool
	contextLines    int
	includeGlobs    []string
	excludeGlobs    []string
	noFooter        bool
	llmEnabled      bool
	llmProvider     string
	llmModel        string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [claim text]",
	Short: "Verify one or more claims against the codebase",
	Long: `Verify parses claims out of the given text (or a file) and searches the
codebase for references that contradict them.

A rename or removal claim is verified when no references to the old name
remain. Multi-claim text ("renamed X to Y and removed Z") is split and
each claim is verified in order.

Example:
  claimcheck verify "I renamed UserService to AuthService"
  claimcheck verify --file claims.txt --json report.json
  claimcheck verify "removed LegacyAuth" --min-priority medium --llm`,
	Args: cobra.ArbitraryArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyFile, "file", "", "read claim text from a file instead of arguments")
	addOutputFlags(verifyCmd)
	addSearchFlags(verifyCmd)

	verifyCmd.Flags().BoolVar(&noVariants, "no-variants", false, "search only the literal term, skip naming-convention variants")
	verifyCmd.Flags().BoolVar(&noClassify, "no-classify", false, "skip context classification of matches")
	verifyCmd.Flags().StringVar(&minPriority, "min-priority", "", "drop classified references below this priority (low, medium, high)")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	cmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&caseInsensitive, "ignore-case", "i", false, "case-insensitive search")
	cmd.Flags().IntVarP(&contextLines, "context", "C", 2, "context lines per match")
	cmd.Flags().StringSliceVar(&includeGlobs, "include", nil, "only search files matching these globs")
	cmd.Flags().StringSliceVar(&excludeGlobs, "exclude", nil, "additionally exclude files matching these globs")
}

// buildConfig layers the command's flags over the loaded configuration
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("ignore-case") {
		cfg.Search.CaseSensitive = !caseInsensitive
	}
	if cmd.Flags().Changed("context") {
		cfg.Search.ContextLines = contextLines
	}
	if len(includeGlobs) > 0 {
		cfg.Search.IncludeGlobs = includeGlobs
	}
	if len(excludeGlobs) > 0 {
		cfg.Search.ExcludeGlobs = append(cfg.Search.ExcludeGlobs, excludeGlobs...)
	}
	if cmd.Flags().Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		if llmProvider == "openai" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		}
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); llmProvider == "ollama" && baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

func claimText(args []string) (string, error) {
	if verifyFile != "" {
		data, err := os.ReadFile(verifyFile)
		if err != nil {
			return "", fmt.Errorf("read claims file: %w", err)
		}
		return string(data), nil
	}
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", fmt.Errorf("no claim text given (pass it as an argument or use --file)")
	}
	return text, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	text, err := claimText(args)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("no-variants") {
		cfg.Verify.ExpandVariants = !noVariants
	}
	if cmd.Flags().Changed("no-classify") {
		cfg.Verify.ClassifyContext = !noClassify
	}
	if cmd.Flags().Changed("min-priority") {
		switch minPriority {
		case "", "low", "medium", "high":
		default:
			return fmt.Errorf("invalid --min-priority %q (expected low, medium, or high)", minPriority)
		}
		cfg.Verify.MinPriority = minPriority
	}

	p := pipeline.New(cfg)
	results, err := p.VerifyText(cmd.Context(), text, workDir)
	if err != nil {
		return err
	}

	renderer := p.Renderer()
	for _, result := range results {
		renderer.PrintVerification(result)
	}
	renderer.PrintBatchSummary(results)

	if err := writeVerifyReports(renderer, results); err != nil {
		return err
	}

	for _, result := range results {
		if !result.Verified {
			return ErrUnverified
		}
	}
	return nil
}

func writeVerifyReports(renderer *pipeline.Renderer, results []*model.VerificationResult) error {
	if outJSON != "" {
		var payload interface{} = results
		if len(results) == 1 {
			payload = results[0]
		}
		if err := renderer.RenderJSON(payload, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}

	if outMD != "" {
		var parts []string
		for _, result := range results {
			parts = append(parts, renderer.VerificationMarkdown(result))
		}
		if err := renderer.RenderMarkdownFile(strings.Join(parts, "\n"), outMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}
	return nil
}
