package verify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dotsetgreg/claimcheck/internal/gitx"
	"github.com/dotsetgreg/claimcheck/internal/model"
	"github.com/dotsetgreg/claimcheck/internal/search"
)

type fakeGit struct {
	files   []model.GitDiffFile
	message string
	err     error
}

func (f *fakeGit) FilesForSource(_ context.Context, _ gitx.DiffSource, _ string) ([]model.GitDiffFile, error) {
	return f.files, f.err
}

func (f *fakeGit) CommitMessage(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.message, nil
}

func TestVerifyAgainstDiff_MissedFile(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*search.Result{
		"foo": {References: []model.Reference{
			ref("a.ts", 3, "foo()", "foo"),
			ref("b.md", 10, "uses foo", "foo"),
		}},
	}}
	git := &fakeGit{files: []model.GitDiffFile{{Path: "a.ts", Status: model.StatusModified}}}
	a := NewDiffAnalyzer(fs, git)
	claim := model.ParsedClaim{Action: model.ActionRemove, OldValue: "foo", Scope: model.ScopeEverywhere}

	result, err := a.VerifyAgainstDiff(context.Background(), claim, DiffOptions{Dir: ".", Source: gitx.SourceStaged})
	if err != nil {
		t.Fatalf("VerifyAgainstDiff failed: %v", err)
	}
	if result.Verified {
		t.Error("Expected unverified with a missed file")
	}
	if len(result.MissedFiles) != 1 || result.MissedFiles[0].File != "b.md" {
		t.Fatalf("Expected b.md missed, got %+v", result.MissedFiles)
	}
	if result.Summary.ReferencedAndModified != 1 {
		t.Errorf("Expected a.ts counted as referenced-and-modified, got %d", result.Summary.ReferencedAndModified)
	}
	if result.Summary.MissedFiles != 1 || result.Summary.ModifiedFiles != 1 {
		t.Errorf("Summary counts off: %+v", result.Summary)
	}
}

func TestVerifyAgainstDiff_AllReferencesCovered(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*search.Result{
		"foo": {References: []model.Reference{
			ref("a.ts", 3, "foo()", "foo"),
			ref("b.ts", 8, "foo()", "foo"),
		}},
	}}
	git := &fakeGit{files: []model.GitDiffFile{
		{Path: "a.ts", Status: model.StatusModified},
		{Path: "b.ts", Status: model.StatusModified},
		{Path: "c.ts", Status: model.StatusAdded},
	}}
	a := NewDiffAnalyzer(fs, git)
	claim := model.ParsedClaim{Action: model.ActionUpdate, OldValue: "foo", NewValue: "bar", Scope: model.ScopeEverywhere}

	result, err := a.VerifyAgainstDiff(context.Background(), claim, DiffOptions{Dir: ".", Source: gitx.SourceWorking})
	if err != nil {
		t.Fatalf("VerifyAgainstDiff failed: %v", err)
	}
	if !result.Verified {
		t.Errorf("Expected verified when every referenced file was modified, missed: %+v", result.MissedFiles)
	}
}

func TestVerifyAgainstDiff_RenameScenario(t *testing.T) {
	// Rename claim; code was updated but the README still mentions the old name
	fs := &fakeSearcher{results: map[string]*search.Result{
		"UserService": {References: []model.Reference{
			ref("README.md", 12, "The UserService handles login.", "UserService"),
		}},
	}}
	git := &fakeGit{
		files: []model.GitDiffFile{
			{Path: "src/user_service.ts", Status: model.StatusRenamed, OldPath: "src/old_service.ts"},
			{Path: "src/app.ts", Status: model.StatusModified},
		},
		message: "rename UserService to AuthService",
	}
	a := NewDiffAnalyzer(fs, git)
	claim := model.ParsedClaim{Action: model.ActionRename, OldValue: "UserService", NewValue: "AuthService", Scope: model.ScopeEverywhere}

	result, err := a.VerifyAgainstDiff(context.Background(), claim, DiffOptions{
		Dir: ".", Source: gitx.SourceCommit, Commit: "HEAD",
	})
	if err != nil {
		t.Fatalf("VerifyAgainstDiff failed: %v", err)
	}
	if result.Verified {
		t.Error("Expected unverified, README.md was not touched")
	}
	if len(result.MissedFiles) != 1 {
		t.Fatalf("Expected 1 missed file, got %d", len(result.MissedFiles))
	}
	missed := result.MissedFiles[0]
	if missed.File != "README.md" {
		t.Errorf("Expected README.md missed, got %q", missed.File)
	}
	if !strings.Contains(missed.Suggestion, "documentation") {
		t.Errorf("Expected a documentation suggestion, got %q", missed.Suggestion)
	}
	if result.CommitRef != "HEAD" || result.CommitMessage != "rename UserService to AuthService" {
		t.Errorf("Expected commit metadata on result, got ref=%q msg=%q", result.CommitRef, result.CommitMessage)
	}
}

func TestVerifyAgainstDiff_OldPathCountsAsModified(t *testing.T) {
	fs := &fakeSearcher{results: map[string]*search.Result{
		"foo": {References: []model.Reference{
			ref("src/before.ts", 1, "foo()", "foo"),
		}},
	}}
	git := &fakeGit{files: []model.GitDiffFile{
		{Path: "src/after.ts", Status: model.StatusRenamed, OldPath: "src/before.ts"},
	}}
	a := NewDiffAnalyzer(fs, git)
	claim := model.ParsedClaim{Action: model.ActionRemove, OldValue: "foo", Scope: model.ScopeEverywhere}

	result, err := a.VerifyAgainstDiff(context.Background(), claim, DiffOptions{Dir: ".", Source: gitx.SourceStaged})
	if err != nil {
		t.Fatalf("VerifyAgainstDiff failed: %v", err)
	}
	if !result.Verified {
		t.Errorf("Expected old rename path to count as modified, missed: %+v", result.MissedFiles)
	}
}

func TestVerifyAgainstDiff_GitErrorAborts(t *testing.T) {
	wantErr := errors.New("not a repo")
	a := NewDiffAnalyzer(&fakeSearcher{}, &fakeGit{err: wantErr})
	claim := model.ParsedClaim{Action: model.ActionRemove, OldValue: "foo", Scope: model.ScopeEverywhere}

	_, err := a.VerifyAgainstDiff(context.Background(), claim, DiffOptions{Dir: ".", Source: gitx.SourceAll})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected git error to propagate, got %v", err)
	}
}

func TestSuggestForFile(t *testing.T) {
	claim := model.ParsedClaim{Action: model.ActionRename, OldValue: "Old", NewValue: "New"}
	tests := []struct {
		file string
		want string
	}{
		{"types/index.d.ts", "type definitions"},
		{"docs/guide.md", "documentation"},
		{"src/app.test.ts", "test expectations"},
		{"config/settings.yaml", "configuration"},
		{"src/app.ts", "Rename"},
	}
	for _, tc := range tests {
		got := suggestForFile(tc.file, claim)
		if !strings.Contains(got, tc.want) {
			t.Errorf("suggestForFile(%q) = %q, want mention of %q", tc.file, got, tc.want)
		}
	}
}
