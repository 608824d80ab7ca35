// Package claims extracts structured code-change claims from free text.
//
// Parsing is driven by an ordered table of action templates, most specific
// first; the first template whose captures satisfy the action's required
// fields wins. A looser quoted-value fallback catches phrasings the table
// misses. Parsing never panics; unparseable text yields an error.
package claims

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

// ErrNoClaim is returned when no claim can be extracted from the text
var ErrNoClaim = errors.New("no verifiable claim found")

// term matches a claim value: a quoted/backticked phrase or a bare identifier.
// Quoted alternatives come first so multi-word values are captured whole.
// Each use of term contributes termGroups capture groups.
const (
	term       = `(?:"([^"]+)"|'([^']+)'|` + "`([^`]+)`" + `|([\w$][\w$./-]*))`
	termGroups = 4
)

// template pairs an action tag with a matcher and an extraction rule.
// Extraction rules are small pure functions so each action stays auditable.
type template struct {
	action  model.ClaimAction
	re      *regexp.Regexp
	extract func(groups []string) (oldValue, newValue string, ok bool)
}

var templates = []template{
	{
		action: model.ActionRename,
		re: regexp.MustCompile(`(?i)\brenam(?:e|ed|ing)\b[^.!?\n]*?\s` + term +
			`\s+(?:to|into|->|=>)\s+` + term),
		extract: pairExtract,
	},
	{
		action: model.ActionUpdate,
		re: regexp.MustCompile(`(?i)\b(?:updat(?:e|ed|ing)|chang(?:e|ed|ing)|replac(?:e|ed|ing))\b[^.!?\n]*?\s` + term +
			`\s+(?:to|with|into|->|=>)\s+` + term),
		extract: pairExtract,
	},
	{
		action: model.ActionRemove,
		re: regexp.MustCompile(`(?i)\b(?:remov(?:e|ed|ing)|delet(?:e|ed|ing)|dropp(?:ed|ing)|drop|eliminat(?:e|ed|ing)|got\s+rid\s+of)\b\s+` +
			`(?:all\s+|any\s+|the\s+|every\s+)*(?:remaining\s+)?(?:references?\s+to\s+|usages?\s+of\s+|mentions?\s+of\s+|calls?\s+to\s+)*` + term),
		extract: singleExtract,
	},
	{
		action: model.ActionAdd,
		re: regexp.MustCompile(`(?i)\b(?:add(?:ed|ing)?|creat(?:e|ed|ing)|introduc(?:e|ed|ing)|implement(?:ed|ing)?)\b\s+` +
			`(?:a\s+|an\s+|the\s+|new\s+|some\s+)*` + term),
		extract: singleExtract,
	},
}

// stopwords are captures that cannot be the identifier a claim is about
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "all": true, "any": true, "it": true,
	"them": true, "this": true, "that": true, "some": true, "new": true,
	"function": true, "method": true, "class": true, "variable": true,
	"file": true, "files": true, "code": true, "everything": true,
	"references": true, "reference": true, "usages": true, "usage": true,
}

// firstValue picks the populated capture out of one term's group block.
// The last alternative is the bare identifier; its charset swallows sentence
// punctuation ("removed LegacyAuth."), so trailing punctuation is trimmed
// from bare captures only. Quoted captures are taken verbatim.
func firstValue(groups []string) string {
	for i, g := range groups {
		if g == "" {
			continue
		}
		if i == len(groups)-1 {
			g = strings.TrimRight(g, ".,;:!?")
		}
		return g
	}
	return ""
}

func pairExtract(groups []string) (string, string, bool) {
	if len(groups) < 1+2*termGroups {
		return "", "", false
	}
	oldV := firstValue(groups[1 : 1+termGroups])
	newV := firstValue(groups[1+termGroups : 1+2*termGroups])
	if oldV == "" || newV == "" || stopwords[strings.ToLower(oldV)] || stopwords[strings.ToLower(newV)] {
		return "", "", false
	}
	return oldV, newV, true
}

func singleExtract(groups []string) (string, string, bool) {
	if len(groups) < 1+termGroups {
		return "", "", false
	}
	v := firstValue(groups[1 : 1+termGroups])
	if v == "" || stopwords[strings.ToLower(v)] {
		return "", "", false
	}
	return v, "", true
}

// scopePatterns determine the claim scope independently of the action
var (
	everywhereRe = regexp.MustCompile(`(?i)\beverywhere\b|\bacross\s+the\s+(?:codebase|project|repo(?:sitory)?)\b|\bin\s+all\s+files\b|\bthroughout\b`)
	specificRe   = regexp.MustCompile(`(?i)\b(?:in|within|inside)\s+(?:the\s+)?([\w*][\w*./\\-]*)\s+files?\b`)
	quotedRe     = regexp.MustCompile("`([^`]+)`|\"([^\"]+)\"|'([^']+)'")
)

// Parse extracts a single claim from free text.
// It returns ErrNoClaim (wrapped) when the text is empty or no template and
// no fallback extraction succeeds.
func Parse(text string) (model.ParsedClaim, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.ParsedClaim{}, fmt.Errorf("empty claim text: %w", ErrNoClaim)
	}

	scope, scopePattern := parseScope(trimmed)

	for _, tpl := range templates {
		groups := tpl.re.FindStringSubmatch(trimmed)
		if groups == nil {
			continue
		}
		oldV, newV, ok := tpl.extract(groups)
		if !ok {
			continue
		}
		claim := model.ParsedClaim{
			Action:       tpl.action,
			OldValue:     oldV,
			NewValue:     newV,
			Scope:        scope,
			ScopePattern: scopePattern,
			Raw:          trimmed,
		}
		if tpl.action == model.ActionAdd {
			// For add claims the introduced name drives the search
			claim.OldValue, claim.NewValue = "", oldV
		}
		if satisfiesInvariant(claim) {
			return claim, nil
		}
	}

	if claim, ok := fallback(trimmed, scope, scopePattern); ok {
		return claim, nil
	}

	return model.ParsedClaim{}, fmt.Errorf("text %q: %w", truncate(trimmed, 80), ErrNoClaim)
}

// satisfiesInvariant enforces the required-field rules per action
func satisfiesInvariant(c model.ParsedClaim) bool {
	switch c.Action {
	case model.ActionRename, model.ActionUpdate:
		return c.OldValue != "" && c.NewValue != ""
	case model.ActionRemove:
		return c.OldValue != ""
	case model.ActionAdd:
		return c.NewValue != "" || c.OldValue != ""
	default:
		return false
	}
}

// fallback detects an action keyword anywhere in the text and pulls the first
// one or two quoted/backticked substrings as values.
func fallback(text string, scope model.ClaimScope, scopePattern string) (model.ParsedClaim, bool) {
	action, ok := detectActionKeyword(text)
	if !ok {
		return model.ParsedClaim{}, false
	}

	var values []string
	for _, m := range quotedRe.FindAllStringSubmatch(text, 2) {
		for _, g := range m[1:] {
			if g != "" {
				values = append(values, g)
				break
			}
		}
	}

	claim := model.ParsedClaim{Scope: scope, ScopePattern: scopePattern, Raw: text}
	switch {
	case len(values) >= 2 && (action == model.ActionRename || action == model.ActionUpdate):
		claim.Action = action
		claim.OldValue = values[0]
		claim.NewValue = values[1]
	case len(values) == 1 && action == model.ActionAdd:
		// Add keywords keep add semantics; a lone value under any other
		// keyword falls through to the removal reading below.
		claim.Action = model.ActionAdd
		claim.NewValue = values[0]
	case len(values) >= 1:
		// A lone value under any other keyword reads as a removal check
		claim.Action = model.ActionRemove
		claim.OldValue = values[0]
	default:
		return model.ParsedClaim{}, false
	}
	return claim, true
}

var actionKeywords = []struct {
	re     *regexp.Regexp
	action model.ClaimAction
}{
	{regexp.MustCompile(`(?i)\brenam`), model.ActionRename},
	{regexp.MustCompile(`(?i)\b(?:updat|chang|replac)`), model.ActionUpdate},
	{regexp.MustCompile(`(?i)\b(?:remov|delet|dropp?|eliminat)`), model.ActionRemove},
	{regexp.MustCompile(`(?i)\b(?:add|creat|introduc|implement)`), model.ActionAdd},
}

func detectActionKeyword(text string) (model.ClaimAction, bool) {
	for _, kw := range actionKeywords {
		if kw.re.MatchString(text) {
			return kw.action, true
		}
	}
	return "", false
}

// parseScope runs the scope pattern table; default scope is everywhere
func parseScope(text string) (model.ClaimScope, string) {
	if m := specificRe.FindStringSubmatch(text); m != nil {
		return model.ScopeSpecific, m[1]
	}
	if everywhereRe.MatchString(text) {
		return model.ScopeEverywhere, ""
	}
	return model.ScopeEverywhere, ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
