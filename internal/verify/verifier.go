// Package verify turns a parsed claim into a verdict by searching for
// residual references and, in the diff-aware variant, cross-referencing the
// files the edit actually touched.
package verify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dotsetgreg/claimcheck/internal/classify"
	"github.com/dotsetgreg/claimcheck/internal/model"
	"github.com/dotsetgreg/claimcheck/internal/search"
	"github.com/dotsetgreg/claimcheck/internal/variants"
)

// Searcher is the slice of the search adapter the verifier needs.
// *search.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, pattern, dir string, opts search.Options) (*search.Result, error)
	SearchAll(ctx context.Context, patterns []string, dir string, opts search.Options) (map[string]*search.Result, error)
}

// AnalyzeOptions configure one verification run
type AnalyzeOptions struct {
	Dir             string
	Search          search.Options
	ExpandVariants  bool
	ClassifyContext bool
	MinPriority     model.Priority // Empty means no floor
}

// Verifier aggregates search results across variants into a verdict
type Verifier struct {
	searcher Searcher
}

// NewVerifier creates a verifier on top of a search adapter
func NewVerifier(s Searcher) *Verifier {
	return &Verifier{searcher: s}
}

// VerifyClaim checks one claim against the codebase.
// A search failure aborts the whole verification; there is no partial verdict.
func (v *Verifier) VerifyClaim(ctx context.Context, claim model.ParsedClaim, opts AnalyzeOptions) (*model.VerificationResult, error) {
	start := time.Now()

	term := claim.SearchTerm()
	if term == "" {
		return nil, fmt.Errorf("claim has no searchable value")
	}

	patterns := []string{term}
	if opts.ExpandVariants {
		patterns = variants.Generate(term).All
	}

	results, err := v.searcher.SearchAll(ctx, patterns, opts.Dir, opts.Search)
	if err != nil {
		return nil, fmt.Errorf("verify %q: %w", term, err)
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
		variantCounts = append(variantCounts, model.VariantMatches{
			Variant: pattern,
			Matches: len(res.References),
		})

		for _, ref := range res.References {
			if opts.ClassifyContext {
				cls := classify.Classify(ref.Content, ref.Column-1, ref.Variant, ref.File)
				ref.MatchContext = cls.Context
				ref.Priority = cls.Priority
			}
			all = append(all, ref)
		}
	}

	remaining := DedupeReferences(all)
	remaining = filterByPriority(remaining, opts.MinPriority)

	return &model.VerificationResult{
		Claim:               claim,
		Verified:            len(remaining) == 0,
		RemainingReferences: remaining,
		Variants:            variantCounts,
		Summary: model.VerificationSummary{
			FilesSearched:    filesSearched,
			FilesWithMatches: distinctFileCount(remaining),
			TotalMatches:     len(all),
		},
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// DedupeReferences collapses references that hit the same (file, line).
// When several variants match one line, the shortest variant string wins;
// equal lengths fall back to lexicographic order for determinism.
func DedupeReferences(refs []model.Reference) []model.Reference {
	type key struct {
		file string
		line int
	}

	best := make(map[key]model.Reference)
	for _, ref := range refs {
		k := key{ref.File, ref.Line}
		cur, ok := best[k]
		if !ok || betterVariant(ref.Variant, cur.Variant) {
			best[k] = ref
		}
	}

	out := make([]model.Reference, 0, len(best))
	for _, ref := range best {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// betterVariant prefers the shorter, then lexicographically smaller, variant
func betterVariant(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// filterByPriority drops references ranking below the floor.
// Unclassified references are never dropped.
func filterByPriority(refs []model.Reference, floor model.Priority) []model.Reference {
	if floor == "" {
		return refs
	}
	out := refs[:0]
	for _, ref := range refs {
		if ref.Priority.Rank() >= floor.Rank() {
			out = append(out, ref)
		}
	}
	return out
}

func distinctFileCount(refs []model.Reference) int {
	seen := make(map[string]bool)
	for _, ref := range refs {
		seen[ref.File] = true
	}
	return len(seen)
}
