package model

import "time"

// VerificationSummary counts what the search covered
type VerificationSummary struct {
	FilesSearched    int `json:"files_searched"`
	FilesWithMatches int `json:"files_with_matches"`
	TotalMatches     int `json:"total_matches"`
}

// VariantMatches reports how many references a single variant produced
type VariantMatches struct {
	Variant string `json:"variant"`
	Matches int    `json:"matches"`
}

// VerificationResult is the verdict for one claim.
// Verified is true iff RemainingReferences is empty after dedup and filtering.
type VerificationResult struct {
	Claim               ParsedClaim         `json:"claim"`
	Verified            bool                `json:"verified"`
	RemainingReferences []Reference         `json:"remaining_references"`
	Variants            []VariantMatches    `json:"variants"`
	Summary             VerificationSummary `json:"summary"`
	DurationMs          int64               `json:"duration_ms"` // Observability only, never part of the verdict
	LLM                 *LLMSummary         `json:"llm,omitempty"`
}

// FileStatus is the change status of a file in a diff
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusDeleted  FileStatus = "deleted"
	StatusRenamed  FileStatus = "renamed"
)

// GitDiffFile is one entry in a modified-file set
type GitDiffFile struct {
	Path    string     `json:"path"`
	Status  FileStatus `json:"status"`
	OldPath string     `json:"old_path,omitempty"` // Set for renames
}

// MissedFile is a file containing references to the claim's old value that was
// not part of the recorded change set
type MissedFile struct {
	File       string      `json:"file"`
	References []Reference `json:"references"`
	Suggestion string      `json:"suggestion"`
}

// DiffSummary extends the basic summary with diff-aware counts
type DiffSummary struct {
	VerificationSummary
	ModifiedFiles         int `json:"modified_files"`
	MissedFiles           int `json:"missed_files"`
	ReferencedAndModified int `json:"referenced_and_modified"` // Files with references that WERE modified
}

// DiffVerificationResult is the verdict of the diff-aware analysis.
// Verified is true iff MissedFiles is empty.
type DiffVerificationResult struct {
	Claim         ParsedClaim      `json:"claim"`
	Verified      bool             `json:"verified"`
	ModifiedFiles []GitDiffFile    `json:"modified_files"`
	MissedFiles   []MissedFile     `json:"missed_files"`
	Variants      []VariantMatches `json:"variants"`
	Summary       DiffSummary      `json:"summary"`
	DurationMs    int64            `json:"duration_ms"`
	CommitRef     string           `json:"commit_ref,omitempty"`     // Set when the diff source is a commit
	CommitMessage string           `json:"commit_message,omitempty"` // First line, for the report header
	LLM           *LLMSummary      `json:"llm,omitempty"`
}

// LLMSummary contains an optional LLM-generated explanation of a result.
// It is produced after scoring and never affects the verdict.
type LLMSummary struct {
	Enabled   bool      `json:"enabled"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	SummaryMD string    `json:"summary_md,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
