package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

// Renderer writes verification reports as JSON, Markdown, or a colored
// terminal summary
type Renderer struct {
	verbose       bool
	includeFooter bool

	ok   *color.Color
	bad  *color.Color
	warn *color.Color
	dim  *color.Color
}

// NewRenderer creates a renderer honoring the output configuration
func NewRenderer(cfg model.OutputConfig) *Renderer {
	r := &Renderer{
		verbose:       cfg.Verbose,
		includeFooter: cfg.IncludeFooter,
		ok:            color.New(color.FgGreen),
		bad:           color.New(color.FgRed),
		warn:          color.New(color.FgYellow),
		dim:           color.New(color.FgCyan),
	}
	if !cfg.Color {
		for _, c := range []*color.Color{r.ok, r.bad, r.warn, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

// RenderJSON writes any report value as indented JSON
func (r *Renderer) RenderJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdownFile writes rendered markdown to a file
func (r *Renderer) RenderMarkdownFile(content, path string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// VerificationMarkdown renders one verification result as Markdown
func (r *Renderer) VerificationMarkdown(result *model.VerificationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Claim Verification: %s\n\n", claimTitle(result.Claim))
	fmt.Fprintf(&b, "**Verdict**: %s\n\n", verdictWord(result.Verified))
	fmt.Fprintf(&b, "- Files searched: %d\n", result.Summary.FilesSearched)
	fmt.Fprintf(&b, "- Files with matches: %d\n", result.Summary.FilesWithMatches)
	fmt.Fprintf(&b, "- Total matches: %d\n", result.Summary.TotalMatches)
	fmt.Fprintf(&b, "- Duration: %dms\n\n", result.DurationMs)

	if len(result.Variants) > 0 {
		b.WriteString("## Variants\n\n| Variant | Matches |\n|---|---|\n")
		for _, v := range result.Variants {
			fmt.Fprintf(&b, "| `%s` | %d |\n", v.Variant, v.Matches)
		}
		b.WriteString("\n")
	}

	if len(result.RemainingReferences) > 0 {
		b.WriteString("## Remaining references\n\n")
		for _, ref := range result.RemainingReferences {
			fmt.Fprintf(&b, "- `%s:%d` [%s", ref.File, ref.Line, ref.MatchContext)
			if ref.Priority != "" {
				fmt.Fprintf(&b, ", %s priority", ref.Priority)
			}
			fmt.Fprintf(&b, "] `%s`\n", strings.TrimSpace(ref.Content))
		}
		b.WriteString("\n")
	}

	r.writeLLM(&b, result.LLM)
	r.writeFooter(&b)
	return b.String()
}

// DiffMarkdown renders one diff-aware result as Markdown
func (r *Renderer) DiffMarkdown(result *model.DiffVerificationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Diff-Aware Verification: %s\n\n", claimTitle(result.Claim))
	if result.CommitRef != "" {
		fmt.Fprintf(&b, "Commit `%s`", result.CommitRef)
		if result.CommitMessage != "" {
			fmt.Fprintf(&b, ": %s", result.CommitMessage)
		}
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "**Verdict**: %s\n\n", verdictWord(result.Verified))
	fmt.Fprintf(&b, "- Modified files: %d\n", result.Summary.ModifiedFiles)
	fmt.Fprintf(&b, "- Referenced and modified: %d\n", result.Summary.ReferencedAndModified)
	fmt.Fprintf(&b, "- Missed files: %d\n\n", result.Summary.MissedFiles)

	if len(result.MissedFiles) > 0 {
		b.WriteString("## Missed files\n\n")
		for _, missed := range result.MissedFiles {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", missed.File, missed.Suggestion)
			for _, ref := range missed.References {
				fmt.Fprintf(&b, "- line %d: `%s`\n", ref.Line, strings.TrimSpace(ref.Content))
			}
			b.WriteString("\n")
		}
	}

	r.writeLLM(&b, result.LLM)
	r.writeFooter(&b)
	return b.String()
}

// PrintVerification writes a human summary of one result to stdout
func (r *Renderer) PrintVerification(result *model.VerificationResult) {
	r.printVerdict(result.Verified, claimTitle(result.Claim))
	fmt.Printf("  searched %d files, %d matches in %d files (%dms)\n",
		result.Summary.FilesSearched, result.Summary.TotalMatches,
		result.Summary.FilesWithMatches, result.DurationMs)

	for _, ref := range result.RemainingReferences {
		r.warn.Printf("  %s:%d", ref.File, ref.Line)
		fmt.Printf("  %s\n", strings.TrimSpace(ref.Content))
		if r.verbose {
			for _, line := range ref.ContextLines {
				r.dim.Printf("    %s\n", line)
			}
		}
	}
	r.printLLM(result.LLM)
}

// PrintDiff writes a human summary of one diff-aware result to stdout
func (r *Renderer) PrintDiff(result *model.DiffVerificationResult) {
	r.printVerdict(result.Verified, claimTitle(result.Claim))
	if result.CommitMessage != "" {
		r.dim.Printf("  commit: %s\n", result.CommitMessage)
	}
	fmt.Printf("  %d modified files, %d referenced-and-modified, %d missed\n",
		result.Summary.ModifiedFiles, result.Summary.ReferencedAndModified, result.Summary.MissedFiles)

	for _, missed := range result.MissedFiles {
		r.warn.Printf("  missed: %s (%d references)\n", missed.File, len(missed.References))
		fmt.Printf("    %s\n", missed.Suggestion)
	}
	r.printLLM(result.LLM)
}

// PrintBatchSummary writes a one-line-per-claim recap after a batch run
func (r *Renderer) PrintBatchSummary(results []*model.VerificationResult) {
	if len(results) < 2 {
		return
	}
	verified := 0
	for _, res := range results {
		if res.Verified {
			verified++
		}
	}
	fmt.Println()
	fmt.Printf("%d/%d claims verified\n", verified, len(results))
}

func (r *Renderer) printVerdict(verified bool, title string) {
	if verified {
		r.ok.Printf("✓ VERIFIED")
	} else {
		r.bad.Printf("✗ UNVERIFIED")
	}
	fmt.Printf("  %s\n", title)
}

func (r *Renderer) printLLM(summary *model.LLMSummary) {
	if summary == nil {
		return
	}
	for _, w := range summary.Warnings {
		r.warn.Printf("  llm: %s\n", w)
	}
	if summary.SummaryMD != "" {
		fmt.Printf("\n  %s\n", summary.SummaryMD)
	}
}

func (r *Renderer) writeLLM(b *strings.Builder, summary *model.LLMSummary) {
	if summary == nil || summary.SummaryMD == "" {
		return
	}
	fmt.Fprintf(b, "## Summary (%s/%s)\n\n%s\n\n", summary.Provider, summary.Model, summary.SummaryMD)
}

func (r *Renderer) writeFooter(b *strings.Builder) {
	if !r.includeFooter {
		return
	}
	fmt.Fprintf(b, "---\nGenerated by claimcheck on %s\n", time.Now().UTC().Format(time.RFC3339))
}

func claimTitle(claim model.ParsedClaim) string {
	if claim.NewValue != "" {
		return fmt.Sprintf("%s %s -> %s", claim.Action, claim.OldValue, claim.NewValue)
	}
	return fmt.Sprintf("%s %s", claim.Action, claim.OldValue)
}

func verdictWord(verified bool) string {
	if verified {
		return "VERIFIED ✓"
	}
	return "UNVERIFIED ✗"
}
