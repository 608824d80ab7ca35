package model

// VariantSet holds the naming-convention spellings of an identifier.
// All always starts with Original and contains no duplicates.
type VariantSet struct {
	Original string   `json:"original"`
	Variants []string `json:"variants"` // Alternate spellings, excluding Original
	All      []string `json:"all"`      // [Original, ...Variants]
}

// MatchContext is the heuristically classified semantic role of a matched line
type MatchContext string

const (
	ContextCode    MatchContext = "code"
	ContextImport  MatchContext = "import"
	ContextString  MatchContext = "string"
	ContextComment MatchContext = "comment"
	ContextUnknown MatchContext = "unknown"
)

// Priority ranks how actionable a reference is
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns a comparable weight for priority filtering (High > Medium > Low).
// Unknown or empty priorities rank highest so they are never filtered out.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 4
	}
}

// Reference is one located occurrence of a search term in a file.
// Base fields come from the search adapter; MatchContext and Priority are
// attached by the context classifier when classification is enabled.
type Reference struct {
	File         string       `json:"file"`
	Line         int          `json:"line"`   // 1-indexed
	Column       int          `json:"column"` // 1-indexed
	Content      string       `json:"content"`
	ContextLines []string     `json:"context_lines,omitempty"`
	Variant      string       `json:"variant"`
	MatchContext MatchContext `json:"match_context,omitempty"`
	Priority     Priority     `json:"priority,omitempty"`
}
