// Package llm generates an optional natural-language summary of a
// verification report. Summaries are produced after the verdict and never
// influence it.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

// Provider defines the interface for LLM backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a summary for the prompt
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

// SummarizeRequest contains the input for summarization
type SummarizeRequest struct {
	// Prompt is the fully rendered prompt text
	Prompt string

	// Model overrides the configured model when non-empty
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the provider's output
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for OpenAI-compatible endpoints (e.g., a local Ollama server)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// NewProvider creates a provider based on configuration.
// An empty provider name means the LLM layer is disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return newOpenAIProvider(config)

	case "ollama":
		// Ollama speaks the OpenAI chat API; only the base URL differs
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434/v1"
		}
		if config.APIKey == "" {
			config.APIKey = "ollama"
		}
		return newOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		MaxTokens: mc.MaxTokens,
	}
}

// BuildVerifyPrompt renders the prompt for a plain verification result
func BuildVerifyPrompt(result model.VerificationResult) string {
	var b strings.Builder
	writePromptHeader(&b)

	fmt.Fprintf(&b, "Claim: %s %s", result.Claim.Action, result.Claim.OldValue)
	if result.Claim.NewValue != "" {
		fmt.Fprintf(&b, " -> %s", result.Claim.NewValue)
	}
	fmt.Fprintf(&b, "\nVerified: %t\n", result.Verified)
	fmt.Fprintf(&b, "Files searched: %d, files with matches: %d, total matches: %d\n",
		result.Summary.FilesSearched, result.Summary.FilesWithMatches, result.Summary.TotalMatches)

	writeReferences(&b, result.RemainingReferences)

	b.WriteString("\nProvide a 2-3 sentence summary of what remains to be done, or confirm the claim checks out. Mention only the files listed above.")
	return b.String()
}

// BuildDiffPrompt renders the prompt for a diff-aware result
func BuildDiffPrompt(result model.DiffVerificationResult) string {
	var b strings.Builder
	writePromptHeader(&b)

	fmt.Fprintf(&b, "Claim: %s %s", result.Claim.Action, result.Claim.OldValue)
	if result.Claim.NewValue != "" {
		fmt.Fprintf(&b, " -> %s", result.Claim.NewValue)
	}
	fmt.Fprintf(&b, "\nVerified against the change set: %t\n", result.Verified)
	if result.CommitMessage != "" {
		fmt.Fprintf(&b, "Commit: %s\n", result.CommitMessage)
	}
	fmt.Fprintf(&b, "Modified files: %d, files referenced but not modified: %d\n",
		result.Summary.ModifiedFiles, result.Summary.MissedFiles)

	for i, missed := range result.MissedFiles {
		if i >= maxPromptFiles {
			fmt.Fprintf(&b, "... and %d more files\n", len(result.MissedFiles)-maxPromptFiles)
			break
		}
		fmt.Fprintf(&b, "- %s (%d references): %s\n", missed.File, len(missed.References), missed.Suggestion)
	}

	b.WriteString("\nProvide a 2-3 sentence summary of which files the change missed and why that matters. Mention only the files listed above.")
	return b.String()
}

const maxPromptFiles = 10

func writePromptHeader(b *strings.Builder) {
	b.WriteString(`You are summarizing a code-claim verification report. The tool checks whether a stated code change actually happened, by searching the codebase for leftover references.

RULES:
1. Describe only what the report shows. Do not speculate about code you cannot see.
2. Mention only files that appear in the report.
3. Never claim the code is correct or broken, only whether the stated change is complete.

`)
}

func writeReferences(b *strings.Builder, refs []model.Reference) {
	if len(refs) == 0 {
		b.WriteString("Remaining references: none\n")
		return
	}
	b.WriteString("Remaining references:\n")
	for i, ref := range refs {
		if i >= maxPromptFiles {
			fmt.Fprintf(b, "... and %d more references\n", len(refs)-maxPromptFiles)
			break
		}
		fmt.Fprintf(b, "- %s:%d [%s/%s] %s\n", ref.File, ref.Line, ref.MatchContext, ref.Priority, strings.TrimSpace(ref.Content))
	}
}
