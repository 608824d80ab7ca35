package verify

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dotsetgreg/claimcheck/internal/classify"
	"github.com/dotsetgreg/claimcheck/internal/model"
)

var docExts = map[string]bool{
	".md": true, ".mdx": true, ".txt": true, ".rst": true, ".adoc": true,
}

var configExts = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true, ".env": true,
}

// suggestForFile builds a next-step hint for a missed file. File-kind
// heuristics come first; the fallback is action-specific.
func suggestForFile(file string, claim model.ParsedClaim) string {
	ext := strings.ToLower(filepath.Ext(file))
	term := claim.SearchTerm()

	switch {
	case strings.HasSuffix(strings.ToLower(file), ".d.ts"):
		return fmt.Sprintf("Update the type definitions in %s to match the change to %s", file, term)
	case docExts[ext]:
		return fmt.Sprintf("Update documentation in %s; it still mentions %s", file, term)
	case classify.IsTestFile(file):
		return fmt.Sprintf("Update test expectations in %s that still use %s", file, term)
	case configExts[ext]:
		return fmt.Sprintf("Check configuration keys in %s that still reference %s", file, term)
	}

	switch claim.Action {
	case model.ActionRename:
		return fmt.Sprintf("Rename the remaining occurrences of %s to %s in %s", claim.OldValue, claim.NewValue, file)
	case model.ActionRemove:
		return fmt.Sprintf("Delete the remaining references to %s in %s", claim.OldValue, file)
	case model.ActionUpdate:
		return fmt.Sprintf("Apply the update from %s to %s in %s as well", claim.OldValue, claim.NewValue, file)
	case model.ActionAdd:
		return fmt.Sprintf("Review %s; it references %s but was not part of the change", file, term)
	default:
		return fmt.Sprintf("Review the references to %s in %s", term, file)
	}
}
