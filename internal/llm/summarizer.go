package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

// Summarizer produces an LLMSummary for a finished report.
// Provider failures degrade to a warning inside the summary; they never
// fail the verification.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer. Returns nil when no provider is
// configured.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// SummarizeVerification summarizes a plain verification result
func (s *Summarizer) SummarizeVerification(ctx context.Context, result model.VerificationResult) *model.LLMSummary {
	return s.run(ctx, BuildVerifyPrompt(result))
}

// SummarizeDiff summarizes a diff-aware result
func (s *Summarizer) SummarizeDiff(ctx context.Context, result model.DiffVerificationResult) *model.LLMSummary {
	return s.run(ctx, BuildDiffPrompt(result))
}

func (s *Summarizer) run(ctx context.Context, prompt string) *model.LLMSummary {
	summary := &model.LLMSummary{
		Enabled:   true,
		Provider:  s.provider.Name(),
		CreatedAt: time.Now().UTC(),
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Prompt:    prompt,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("summary generation failed: %v", err))
		return summary
	}

	summary.Model = resp.Model
	summary.SummaryMD = resp.Summary
	return summary
}
