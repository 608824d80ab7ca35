package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotsetgreg/claimcheck/internal/gitx"
	"github.com/dotsetgreg/claimcheck/internal/pipeline"
)

var (
	diffStaged  bool
	diffWorking bool
	diffCommit  string
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff [claim text]",
	Short: "Verify a claim against the files a change actually touched",
	Long: `Diff cross-references a claim with version control: it finds every file
still referencing the claimed change and flags the ones absent from the
modified-file set.

By default the modified set is the union of staged and working-tree
changes; --staged, --working, or --commit narrow it.

Example:
  claimcheck diff "I renamed UserService to AuthService"
  claimcheck diff "removed LegacyAuth" --staged
  claimcheck diff "updated parseConfig to loadConfig" --commit HEAD~1`,
	Args: cobra.ArbitraryArgs,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&verifyFile, "file", "", "read claim text from a file instead of arguments")
	diffCmd.Flags().BoolVar(&diffStaged, "staged", false, "compare against staged changes only")
	diffCmd.Flags().BoolVar(&diffWorking, "working", false, "compare against working-tree changes only")
	diffCmd.Flags().StringVar(&diffCommit, "commit", "", "compare against the files touched by a commit")
	addOutputFlags(diffCmd)
	addSearchFlags(diffCmd)
}

func diffSource() (gitx.DiffSource, error) {
	set := 0
	for _, b := range []bool{diffStaged, diffWorking, diffCommit != ""} {
		if b {
			set++
		}
	}
	if set > 1 {
		return "", fmt.Errorf("--staged, --working, and --commit are mutually exclusive")
	}
	switch {
	case diffStaged:
		return gitx.SourceStaged, nil
	case diffWorking:
		return gitx.SourceWorking, nil
	case diffCommit != "":
		return gitx.SourceCommit, nil
	default:
		return gitx.SourceAll, nil
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	text, err := claimText(args)
	if err != nil {
		return err
	}

	source, err := diffSource()
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg)
	result, err := p.VerifyTextAgainstDiff(cmd.Context(), text, workDir, source, diffCommit)
	if err != nil {
		return err
	}

	renderer := p.Renderer()
	renderer.PrintDiff(result)

	if outJSON != "" {
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdownFile(strings.TrimSpace(renderer.DiffMarkdown(result))+"\n", outMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	if !result.Verified {
		return ErrUnverified
	}
	return nil
}
