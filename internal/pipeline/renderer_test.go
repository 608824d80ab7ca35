package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotsetgreg/claimcheck/internal/claims"
	"github.com/dotsetgreg/claimcheck/internal/model"
)

func sampleResult() *model.VerificationResult {
	return &model.VerificationResult{
		Claim:    model.ParsedClaim{Action: model.ActionRename, OldValue: "UserService", NewValue: "AuthService"},
		Verified: false,
		RemainingReferences: []model.Reference{
			{File: "README.md", Line: 12, Content: "The UserService handles login.", MatchContext: model.ContextComment, Priority: model.PriorityLow, Variant: "UserService"},
		},
		Variants: []model.VariantMatches{{Variant: "UserService", Matches: 1}, {Variant: "user_service", Matches: 0}},
		Summary:  model.VerificationSummary{FilesSearched: 42, FilesWithMatches: 1, TotalMatches: 1},
	}
}

func TestVerificationMarkdown(t *testing.T) {
	r := NewRenderer(model.OutputConfig{Color: false, IncludeFooter: true})
	md := r.VerificationMarkdown(sampleResult())

	for _, want := range []string{
		"rename UserService -> AuthService",
		"UNVERIFIED",
		"`README.md:12`",
		"| `user_service` | 0 |",
		"Generated by claimcheck",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestVerificationMarkdown_NoFooter(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})
	md := r.VerificationMarkdown(sampleResult())
	if strings.Contains(md, "Generated by claimcheck") {
		t.Error("Footer rendered despite being disabled")
	}
}

func TestDiffMarkdown(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})
	result := &model.DiffVerificationResult{
		Claim:         model.ParsedClaim{Action: model.ActionRemove, OldValue: "LegacyAuth"},
		Verified:      false,
		CommitRef:     "abc123",
		CommitMessage: "drop legacy auth",
		MissedFiles: []model.MissedFile{
			{
				File:       "docs/auth.md",
				References: []model.Reference{{File: "docs/auth.md", Line: 3, Content: "LegacyAuth flow"}},
				Suggestion: "Update documentation in docs/auth.md; it still mentions LegacyAuth",
			},
		},
		Summary: model.DiffSummary{ModifiedFiles: 2, MissedFiles: 1, ReferencedAndModified: 1},
	}

	md := r.DiffMarkdown(result)
	for _, want := range []string{
		"remove LegacyAuth",
		"Commit `abc123`: drop legacy auth",
		"### docs/auth.md",
		"line 3: `LegacyAuth flow`",
		"Missed files: 1",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	r := NewRenderer(model.OutputConfig{})
	path := filepath.Join(t.TempDir(), "report.json")

	if err := r.RenderJSON(sampleResult(), path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), `"action": "rename"`) {
		t.Errorf("JSON report missing claim action:\n%s", data)
	}
}

func TestVerifyText_NoClaim(t *testing.T) {
	p := New(model.DefaultConfig())
	_, err := p.VerifyText(context.Background(), "the weather is nice today", ".")
	if !errors.Is(err, claims.ErrNoClaim) {
		t.Errorf("Expected ErrNoClaim, got %v", err)
	}
}

func TestClaimTitle(t *testing.T) {
	got := claimTitle(model.ParsedClaim{Action: model.ActionRemove, OldValue: "foo"})
	if got != "remove foo" {
		t.Errorf("claimTitle = %q", got)
	}
	got = claimTitle(model.ParsedClaim{Action: model.ActionUpdate, OldValue: "a", NewValue: "b"})
	if got != "update a -> b" {
		t.Errorf("claimTitle = %q", got)
	}
}
