package verify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dotsetgreg/claimcheck/internal/gitx"
	"github.com/dotsetgreg/claimcheck/internal/logging"
	"github.com/dotsetgreg/claimcheck/internal/model"
	"github.com/dotsetgreg/claimcheck/internal/search"
	"github.com/dotsetgreg/claimcheck/internal/variants"
)

// GitQuerier is the slice of the git adapter the analyzer needs.
// *gitx.Client satisfies it.
type GitQuerier interface {
	FilesForSource(ctx context.Context, source gitx.DiffSource, commit string) ([]model.GitDiffFile, error)
	CommitMessage(ctx context.Context, ref string) (string, error)
}

// DiffOptions configure one diff-aware verification run
type DiffOptions struct {
	Dir    string
	Source gitx.DiffSource
	Commit string // Required when Source is SourceCommit
	Search search.Options
}

// DiffAnalyzer flags files containing references that were never touched by
// the edit the claim describes
type DiffAnalyzer struct {
	searcher Searcher
	git      GitQuerier
}

// NewDiffAnalyzer creates a diff-aware analyzer
func NewDiffAnalyzer(s Searcher, g GitQuerier) *DiffAnalyzer {
	return &DiffAnalyzer{searcher: s, git: g}
}

// VerifyAgainstDiff partitions reference-bearing files into modified and
// missed. Diff-source resolution failures abort the analysis; no partial
// result is returned.
func (a *DiffAnalyzer) VerifyAgainstDiff(ctx context.Context, claim model.ParsedClaim, opts DiffOptions) (*model.DiffVerificationResult, error) {
	start := time.Now()

	term := claim.SearchTerm()
	if term == "" {
		return nil, fmt.Errorf("claim has no searchable value")
	}

	modified, err := a.git.FilesForSource(ctx, opts.Source, opts.Commit)
	if err != nil {
		return nil, fmt.Errorf("resolve %s diff: %w", opts.Source, err)
	}

	modifiedSet := make(map[string]bool, len(modified))
	for _, f := range modified {
		modifiedSet[f.Path] = true
		if f.OldPath != "" {
			modifiedSet[f.OldPath] = true
		}
	}

	patterns := variants.Generate(term).All
	results, err := a.searcher.SearchAll(ctx, patterns, opts.Dir, opts.Search)
	if err != nil {
		return nil, fmt.Errorf("verify %q against diff: %w", term, err)
	}

	var all []model.Reference
	var variantCounts []model.VariantMatches
	filesSearched := 0
	for _, pattern := range patterns {
		res := results[pattern]
		if res == nil {
			continue
		}
		if res.FilesSearched > filesSearched {
			filesSearched = res.FilesSearched
		}
		variantCounts = append(variantCounts, model.VariantMatches{Variant: pattern, Matches: len(res.References)})
		all = append(all, res.References...)
	}

	deduped := DedupeReferences(all)

	refsByFile := make(map[string][]model.Reference)
	for _, ref := range deduped {
		refsByFile[ref.File] = append(refsByFile[ref.File], ref)
	}

	var missed []model.MissedFile
	referencedAndModified := 0
	for file, refs := range refsByFile {
		if modifiedSet[file] {
			referencedAndModified++
			continue
		}
		missed = append(missed, model.MissedFile{
			File:       file,
			References: refs,
			Suggestion: suggestForFile(file, claim),
		})
	}
	sort.Slice(missed, func(i, j int) bool { return missed[i].File < missed[j].File })

	result := &model.DiffVerificationResult{
		Claim:         claim,
		Verified:      len(missed) == 0,
		ModifiedFiles: modified,
		MissedFiles:   missed,
		Variants:      variantCounts,
		Summary: model.DiffSummary{
			VerificationSummary: model.VerificationSummary{
				FilesSearched:    filesSearched,
				FilesWithMatches: len(refsByFile),
				TotalMatches:     len(all),
			},
			ModifiedFiles:         len(modified),
			MissedFiles:           len(missed),
			ReferencedAndModified: referencedAndModified,
		},
		DurationMs: time.Since(start).Milliseconds(),
	}

	if opts.Source == gitx.SourceCommit && opts.Commit != "" {
		result.CommitRef = opts.Commit
		if msg, err := a.git.CommitMessage(ctx, opts.Commit); err == nil {
			result.CommitMessage = msg
		} else {
			logging.L("verify").Debugw("commit message lookup failed", "ref", opts.Commit, "err", err)
		}
	}

	return result, nil
}
