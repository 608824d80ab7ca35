package claims

import (
	"regexp"
	"strings"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

// bulletRe strips leading list markers ("- ", "* ", "1. ", "2) ")
var bulletRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

// conjunctionRe locates "and <action keyword>" boundaries so that
// "renamed X and removed Y" splits into two clauses without breaking
// "X and Y" phrases that are not new clauses.
var conjunctionRe = regexp.MustCompile(`(?i)\band\s+(?:then\s+)?(?:also\s+)?(?:renam|remov|delet|dropp|updat|chang|replac|add|creat|introduc|implement)`)

// ParseAll extracts every claim from a block of text.
// Segments come from newlines, bullet markers, and action-keyword conjunctions;
// only segments that parse successfully are kept, in original text order.
func ParseAll(text string) []model.ParsedClaim {
	var out []model.ParsedClaim
	for _, segment := range splitSegments(text) {
		claim, err := Parse(segment)
		if err != nil {
			continue
		}
		out = append(out, claim)
	}
	return out
}

// splitSegments breaks text into candidate claim clauses
func splitSegments(text string) []string {
	var segments []string
	for _, line := range strings.Split(text, "\n") {
		line = bulletRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		segments = append(segments, splitConjunctions(line)...)
	}
	return segments
}

// splitConjunctions cuts a line before each "and <action keyword>" occurrence
func splitConjunctions(line string) []string {
	locs := conjunctionRe.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return []string{line}
	}

	var parts []string
	start := 0
	for _, loc := range locs {
		if loc[0] > start {
			parts = append(parts, strings.TrimSpace(line[start:loc[0]]))
		}
		// Drop the "and" itself; the clause starts at the action keyword
		start = loc[0] + len(andPrefix(line[loc[0]:loc[1]]))
	}
	if start < len(line) {
		parts = append(parts, strings.TrimSpace(line[start:]))
	}
	return parts
}

// andPrefix returns the leading "and " (plus filler words) of a conjunction match
func andPrefix(match string) string {
	idx := strings.LastIndexAny(match, " \t")
	if idx < 0 {
		return match
	}
	return match[:idx+1]
}
