package model

import "time"

// ClaimAction categorizes what the claim says was done to the code
type ClaimAction string

const (
	ActionRename ClaimAction = "rename" // "I renamed X to Y"
	ActionRemove ClaimAction = "remove" // "I removed X"
	ActionUpdate ClaimAction = "update" // "I updated X to Y"
	ActionAdd    ClaimAction = "add"    // "I added X"
)

// ClaimScope describes where the claim says the change was applied
type ClaimScope string

const (
	ScopeEverywhere ClaimScope = "everywhere" // Default: the whole codebase
	ScopeSpecific   ClaimScope = "specific"   // Limited to a named file set
)

// ParsedClaim is a structured assertion extracted from free text about a code change.
// Rename/Update claims carry both OldValue and NewValue; Remove claims carry
// OldValue; Add claims carry at least one of the two. Immutable once created.
type ParsedClaim struct {
	Action       ClaimAction `json:"action"`
	OldValue     string      `json:"old_value"`
	NewValue     string      `json:"new_value,omitempty"`
	Scope        ClaimScope  `json:"scope"`
	ScopePattern string      `json:"scope_pattern,omitempty"` // File pattern when Scope is specific
	Raw          string      `json:"raw"`                     // Originating text
}

// SearchTerm returns the identifier the verification search should look for.
// For add claims the new value drives the search when present.
func (c ParsedClaim) SearchTerm() string {
	if c.Action == ActionAdd && c.NewValue != "" {
		return c.NewValue
	}
	return c.OldValue
}

// Key identifies a claim for deduplication purposes
func (c ParsedClaim) Key() string {
	return string(c.Action) + "\x00" + c.OldValue + "\x00" + c.NewValue
}

// DetectedClaim is a claim observed by the live monitor, retained for the
// lifetime of the monitor instance for session statistics
type DetectedClaim struct {
	ID        string      `json:"id"`                 // Monitor-assigned identifier
	Claim     ParsedClaim `json:"claim"`              // The parsed claim
	Source    string      `json:"source"`             // Truncated originating text
	Timestamp time.Time   `json:"timestamp"`          // When the claim was first seen
	Verified  *bool       `json:"verified,omitempty"` // Set once by the verification step
	Result    interface{} `json:"result,omitempty"`   // *VerificationResult or *DiffVerificationResult
}
