// Package classify labels the semantic context of a search match within a
// line of source code using lexical heuristics.
//
// This is a heuristic filter, not a parser: each line is classified
// independently, so multi-line strings and nested block comments are not
// tracked. That limitation is deliberate and documented.
package classify

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

// Result is a classified match context with its filter priority and a rough
// confidence in the classification
type Result struct {
	Context    model.MatchContext
	Priority   model.Priority
	Confidence float64
}

// importRe matches import/include/use/require lines across common ecosystems
var importRe = regexp.MustCompile(`^\s*(?:` +
	`import\s|import\(|import"|` + // Go, Java, Python, JS/TS
	`from\s+\S+\s+import\s|` + // Python
	`export\s+.*\bfrom\s|` + // JS/TS re-export
	`(?:const|let|var)\s+.*=\s*require\s*\(|` + // CommonJS
	`require\s*\(|require\s+['"]|` + // CommonJS, Ruby
	`use\s+[\w:]|` + // Rust, PHP
	`#include\s|` + // C/C++
	`using\s+[\w.]+\s*;` + // C#
	`)`)

// commentLineRe matches lines that are entirely comments
var commentLineRe = regexp.MustCompile(`^\s*(?://|#(?:\s|!|$)|#\s*\w|/\*|\*|<!--|--\s|;;)`)

var docExtensions = map[string]bool{
	".md": true, ".mdx": true, ".txt": true, ".rst": true, ".adoc": true,
}

// Classify labels the match starting at the 0-indexed column of line.
// The matched variant is currently unused but kept for future confidence
// scoring. Decision order: import, comment line, string literal, doc file,
// inline comment, code.
func Classify(line string, column int, variant, filePath string) Result {
	_ = variant

	if importRe.MatchString(line) {
		return Result{model.ContextImport, model.PriorityHigh, 0.9}
	}

	if commentLineRe.MatchString(line) {
		return Result{model.ContextComment, model.PriorityLow, 0.85}
	}

	if inString(line, column) {
		prio := model.PriorityLow
		if IsTestFile(filePath) {
			prio = model.PriorityMedium
		}
		return Result{model.ContextString, prio, 0.7}
	}

	if docExtensions[strings.ToLower(filepath.Ext(filePath))] {
		return Result{model.ContextComment, model.PriorityLow, 0.9}
	}

	if hasInlineCommentBefore(line, column) {
		return Result{model.ContextComment, model.PriorityLow, 0.75}
	}

	return Result{model.ContextCode, model.PriorityHigh, 0.6}
}

// inString reports whether the given column sits inside an open string
// literal, determined by a forward scan that toggles quote state. A quote
// character only acts as a delimiter while no other quote kind is open, and a
// backslash escapes exactly the next character while inside a string.
func inString(line string, column int) bool {
	if column > len(line) {
		column = len(line)
	}

	var open byte // 0 when outside any string
	escaped := false

	for i := 0; i < column; i++ {
		c := line[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && open != 0 {
			escaped = true
			continue
		}

		switch c {
		case '"', '\'', '`':
			if open == 0 {
				open = c
			} else if open == c {
				open = 0
			}
		}
	}

	return open != 0
}

// hasInlineCommentBefore reports whether a comment marker opens before the
// match column: "//", "/*", or a "#" that is not part of an identifier.
func hasInlineCommentBefore(line string, column int) bool {
	if column > len(line) {
		column = len(line)
	}
	prefix := line[:column]

	if strings.Contains(prefix, "//") || strings.Contains(prefix, "/*") {
		return true
	}

	for i := 0; i < len(prefix); i++ {
		if prefix[i] != '#' {
			continue
		}
		if i == 0 || !isWordByte(prefix[i-1]) {
			return true
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// testPathRe marks paths that belong to test code
var testPathRe = regexp.MustCompile(`\.test\.|\.spec\.|_test\.|__tests__|(?:^|[/\\])tests?[/\\]`)

// IsTestFile reports whether the path looks like a test file
func IsTestFile(path string) bool {
	return testPathRe.MatchString(path)
}
