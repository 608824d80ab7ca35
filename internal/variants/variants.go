// Package variants expands an identifier into its naming-convention spellings
// so that a rename check catches camelCase, snake_case and friends in one pass.
package variants

import (
	"strings"
	"unicode"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

// Generate expands an identifier into a VariantSet covering the common naming
// conventions. It never fails: the result always contains at least the original.
func Generate(original string) model.VariantSet {
	words := splitWords(original)

	forms := []string{
		toPascal(words),
		toCamel(words),
		strings.Join(words, "_"),                  // snake_case
		strings.ToUpper(strings.Join(words, "_")), // SCREAMING_SNAKE_CASE
		strings.Join(words, "-"),                  // kebab-case
		strings.Join(words, ""),                   // lowercase concatenation
	}

	seen := map[string]bool{original: true}
	var vars []string
	for _, f := range forms {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		vars = append(vars, f)
	}

	return model.VariantSet{
		Original: original,
		Variants: vars,
		All:      append([]string{original}, vars...),
	}
}

// splitWords splits an identifier into lowercase words using the detected
// separator convention: underscores, hyphens, or camel/Pascal boundaries.
func splitWords(s string) []string {
	if len(s) <= 1 {
		return []string{strings.ToLower(s)}
	}

	var parts []string
	switch {
	case strings.Contains(s, "_"):
		parts = strings.Split(s, "_")
	case strings.Contains(s, "-"):
		parts = strings.Split(s, "-")
	default:
		parts = splitCamel(s)
	}

	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, strings.ToLower(p))
	}
	if len(words) == 0 {
		return []string{strings.ToLower(s)}
	}
	return words
}

// splitCamel breaks camelCase/PascalCase identifiers at lowercase-to-uppercase
// transitions and at acronym-to-titlecase transitions ("HTTPServer" -> HTTP, Server).
func splitCamel(s string) []string {
	runes := []rune(s)
	var words []string
	start := 0

	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]

		boundary := false
		if (unicode.IsLower(prev) || unicode.IsDigit(prev)) && unicode.IsUpper(cur) {
			boundary = true
		} else if unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
			// End of an acronym followed by a title-cased word
			boundary = true
		}

		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))
	return words
}

func toPascal(words []string) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title(w))
	}
	return b.String()
}

func toCamel(words []string) string {
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		b.WriteString(title(w))
	}
	return b.String()
}

func title(w string) string {
	if w == "" {
		return ""
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
