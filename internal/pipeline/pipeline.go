// Package pipeline wires the parser, searcher, verifier, and renderer into
// the end-to-end flows the CLI exposes.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/dotsetgreg/claimcheck/internal/claims"
	"github.com/dotsetgreg/claimcheck/internal/gitx"
	"github.com/dotsetgreg/claimcheck/internal/llm"
	"github.com/dotsetgreg/claimcheck/internal/model"
	"github.com/dotsetgreg/claimcheck/internal/monitor"
	"github.com/dotsetgreg/claimcheck/internal/search"
	"github.com/dotsetgreg/claimcheck/internal/verify"
)

// Pipeline orchestrates the complete verification process
type Pipeline struct {
	config     *model.Config
	searcher   *search.Client
	verifier   *verify.Verifier
	renderer   *Renderer
	summarizer *llm.Summarizer // Optional, nil when disabled
}

// New creates a pipeline with the given configuration
func New(cfg *model.Config) *Pipeline {
	searcher := search.NewClient()

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		config:     cfg,
		searcher:   searcher,
		verifier:   verify.NewVerifier(searcher),
		renderer:   NewRenderer(cfg.Output),
		summarizer: summarizer,
	}
}

// Renderer exposes the pipeline's renderer for the CLI
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

func (p *Pipeline) analyzeOptions(dir string) verify.AnalyzeOptions {
	return verify.AnalyzeOptions{
		Dir:             dir,
		Search:          search.OptionsFromConfig(p.config.Search),
		ExpandVariants:  p.config.Verify.ExpandVariants,
		ClassifyContext: p.config.Verify.ClassifyContext,
		MinPriority:     model.Priority(p.config.Verify.MinPriority),
	}
}

// VerifyText parses every claim in the text and verifies them sequentially.
// Returns claims.ErrNoClaim (wrapped) when the text contains none.
func (p *Pipeline) VerifyText(ctx context.Context, text, dir string) ([]*model.VerificationResult, error) {
	parsed := claims.ParseAll(text)
	if len(parsed) == 0 {
		claim, err := claims.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse claims: %w", err)
		}
		parsed = []model.ParsedClaim{claim}
	}

	opts := p.analyzeOptions(dir)
	results := make([]*model.VerificationResult, 0, len(parsed))
	for _, claim := range parsed {
		result, err := p.verifier.VerifyClaim(ctx, claim, opts)
		if err != nil {
			return nil, err
		}
		if p.summarizer != nil {
			result.LLM = p.summarizer.SummarizeVerification(ctx, *result)
		}
		results = append(results, result)
	}
	return results, nil
}

// VerifyTextAgainstDiff parses one claim and checks it against a
// modified-file set from version control
func (p *Pipeline) VerifyTextAgainstDiff(ctx context.Context, text, dir string, source gitx.DiffSource, commit string) (*model.DiffVerificationResult, error) {
	claim, err := claims.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse claim: %w", err)
	}

	git := gitx.NewClient(dir)
	if inside, err := git.IsRepository(ctx); err != nil {
		return nil, err
	} else if !inside {
		return nil, fmt.Errorf("%s: %w", dir, gitx.ErrNotRepository)
	}

	analyzer := verify.NewDiffAnalyzer(p.searcher, git)
	result, err := analyzer.VerifyAgainstDiff(ctx, claim, verify.DiffOptions{
		Dir:    dir,
		Source: source,
		Commit: commit,
		Search: search.OptionsFromConfig(p.config.Search),
	})
	if err != nil {
		return nil, err
	}
	if p.summarizer != nil {
		result.LLM = p.summarizer.SummarizeDiff(ctx, *result)
	}
	return result, nil
}

// NewMonitor creates a live monitor on the given log file, verifying
// detected claims in dir with the pipeline's configuration
func (p *Pipeline) NewMonitor(logPath, dir string) (*monitor.Monitor, error) {
	return monitor.New(logPath, p.config.Monitor, &monitorVerifier{pipeline: p, dir: dir})
}

// monitorVerifier adapts the pipeline to the monitor's verification hook
type monitorVerifier struct {
	pipeline *Pipeline
	dir      string
}

func (mv *monitorVerifier) Verify(ctx context.Context, claim model.ParsedClaim) (interface{}, bool, error) {
	p := mv.pipeline

	if p.config.Monitor.UseDiff {
		analyzer := verify.NewDiffAnalyzer(p.searcher, gitx.NewClient(mv.dir))
		result, err := analyzer.VerifyAgainstDiff(ctx, claim, verify.DiffOptions{
			Dir:    mv.dir,
			Source: gitx.SourceAll,
			Search: search.OptionsFromConfig(p.config.Search),
		})
		if err != nil {
			return nil, false, err
		}
		return result, result.Verified, nil
	}

	result, err := p.verifier.VerifyClaim(ctx, claim, p.analyzeOptions(mv.dir))
	if err != nil {
		return nil, false, err
	}
	return result, result.Verified, nil
}
