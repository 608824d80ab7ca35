package claims

import (
	"errors"
	"testing"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

func TestParse_Rename(t *testing.T) {
	tests := []struct {
		name string
		text string
		old  string
		new  string
	}{
		{"plain", "I renamed UserService to AuthService", "UserService", "AuthService"},
		{"backticks", "renamed `getUserData` to `fetchUserData`", "getUserData", "fetchUserData"},
		{"quotes", `I renamed "oldHandler" to "newHandler" everywhere`, "oldHandler", "newHandler"},
		{"with noise", "I just renamed the function getUserData to fetchUserData", "getUserData", "fetchUserData"},
		{"arrow", "renamed Config -> Settings", "Config", "Settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.text, err)
			}
			if claim.Action != model.ActionRename {
				t.Errorf("Expected rename action, got %s", claim.Action)
			}
			if claim.OldValue != tt.old || claim.NewValue != tt.new {
				t.Errorf("Expected %q -> %q, got %q -> %q", tt.old, tt.new, claim.OldValue, claim.NewValue)
			}
		})
	}
}

func TestParse_Remove(t *testing.T) {
	tests := []struct {
		text string
		old  string
	}{
		{"I removed the legacyAuth module", "legacyAuth"},
		{"removed all references to oldConfig", "oldConfig"},
		{"deleted `deprecatedHelper`", "deprecatedHelper"},
		{"I got rid of tempWorkaround", "tempWorkaround"},
	}

	for _, tt := range tests {
		claim, err := Parse(tt.text)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.text, err)
		}
		if claim.Action != model.ActionRemove {
			t.Errorf("Parse(%q): expected remove, got %s", tt.text, claim.Action)
		}
		if claim.OldValue != tt.old {
			t.Errorf("Parse(%q): expected old value %q, got %q", tt.text, tt.old, claim.OldValue)
		}
		if claim.SearchTerm() != tt.old {
			t.Errorf("Parse(%q): search term should be %q, got %q", tt.text, tt.old, claim.SearchTerm())
		}
	}
}

func TestParse_Update(t *testing.T) {
	claim, err := Parse("updated MAX_RETRIES to RETRY_LIMIT in the config files")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claim.Action != model.ActionUpdate {
		t.Errorf("Expected update, got %s", claim.Action)
	}
	if claim.OldValue != "MAX_RETRIES" || claim.NewValue != "RETRY_LIMIT" {
		t.Errorf("Got %q -> %q", claim.OldValue, claim.NewValue)
	}
	if claim.Scope != model.ScopeSpecific || claim.ScopePattern != "config" {
		t.Errorf("Expected specific scope on 'config', got %s %q", claim.Scope, claim.ScopePattern)
	}
}

func TestParse_Add(t *testing.T) {
	claim, err := Parse("I added a new RetryPolicy struct")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claim.Action != model.ActionAdd {
		t.Errorf("Expected add, got %s", claim.Action)
	}
	if claim.SearchTerm() != "RetryPolicy" {
		t.Errorf("Expected search term RetryPolicy, got %q", claim.SearchTerm())
	}
}

func TestParse_TrailingPunctuation(t *testing.T) {
	// Bare identifiers swallow sentence punctuation; the values must come
	// out clean or the literal search can never match anything.
	tests := []struct {
		text   string
		action model.ClaimAction
		old    string
		new    string
	}{
		{"I removed LegacyAuth.", model.ActionRemove, "LegacyAuth", ""},
		{"I renamed UserService to AuthService.", model.ActionRename, "UserService", "AuthService"},
		{"deleted oldConfig, then cleaned up the imports", model.ActionRemove, "oldConfig", ""},
		{"updated MAX_RETRIES to RETRY_LIMIT!", model.ActionUpdate, "MAX_RETRIES", "RETRY_LIMIT"},
		{"removed config.yaml.", model.ActionRemove, "config.yaml", ""},
	}

	for _, tt := range tests {
		claim, err := Parse(tt.text)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.text, err)
		}
		if claim.Action != tt.action {
			t.Errorf("Parse(%q): expected %s, got %s", tt.text, tt.action, claim.Action)
		}
		if claim.OldValue != tt.old || claim.NewValue != tt.new {
			t.Errorf("Parse(%q): got %q -> %q, want %q -> %q",
				tt.text, claim.OldValue, claim.NewValue, tt.old, tt.new)
		}
	}
}

func TestParse_QuotedValueKeepsPunctuation(t *testing.T) {
	claim, err := Parse(`removed all references to "legacy.module."`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claim.OldValue != "legacy.module." {
		t.Errorf("Quoted values are verbatim, got %q", claim.OldValue)
	}
}

func TestParse_Scope(t *testing.T) {
	claim, err := Parse("renamed FooBar to BazQux everywhere")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claim.Scope != model.ScopeEverywhere {
		t.Errorf("Expected everywhere scope, got %s", claim.Scope)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := Parse(text)
		if err == nil {
			t.Errorf("Parse(%q): expected error, got nil", text)
		}
		if err != nil && err.Error() == "" {
			t.Errorf("Parse(%q): expected non-empty error message", text)
		}
		if !errors.Is(err, ErrNoClaim) {
			t.Errorf("Parse(%q): expected ErrNoClaim, got %v", text, err)
		}
	}
}

func TestParse_NoClaim(t *testing.T) {
	_, err := Parse("the weather is nice today")
	if !errors.Is(err, ErrNoClaim) {
		t.Errorf("Expected ErrNoClaim for claim-free text, got %v", err)
	}
}

func TestParse_QuotedPhrases(t *testing.T) {
	claim, err := Parse(`the renaming of "first thing" into "second thing" is done`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claim.Action != model.ActionRename {
		t.Errorf("Expected rename, got %s", claim.Action)
	}
	if claim.OldValue != "first thing" || claim.NewValue != "second thing" {
		t.Errorf("Got %q -> %q", claim.OldValue, claim.NewValue)
	}
}

func TestParse_FallbackQuoted(t *testing.T) {
	// "removal" misses every template suffix, so this exercises the
	// keyword-plus-quoted-value fallback.
	claim, err := Parse(`the removal of 'old thing' is complete`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claim.Action != model.ActionRemove {
		t.Errorf("Expected remove via fallback, got %s", claim.Action)
	}
	if claim.OldValue != "old thing" {
		t.Errorf("Expected old value 'old thing', got %q", claim.OldValue)
	}
}

func TestParse_FallbackAddKeepsAddSemantics(t *testing.T) {
	// "introduction" misses the add template suffixes, so the fallback
	// applies; a lone quoted value under an add keyword stays an add claim.
	claim, err := Parse(`the introduction of 'RetryPolicy' went smoothly`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claim.Action != model.ActionAdd {
		t.Errorf("Expected add via fallback, got %s", claim.Action)
	}
	if claim.NewValue != "RetryPolicy" || claim.OldValue != "" {
		t.Errorf("Expected new value RetryPolicy, got old=%q new=%q", claim.OldValue, claim.NewValue)
	}
	if claim.SearchTerm() != "RetryPolicy" {
		t.Errorf("Expected search term RetryPolicy, got %q", claim.SearchTerm())
	}
}

func TestParseAll_Multiline(t *testing.T) {
	text := "- renamed UserService to AuthService\n- removed oldLogger\nsome unrelated line\n"
	all := ParseAll(text)
	if len(all) != 2 {
		t.Fatalf("Expected 2 claims, got %d: %+v", len(all), all)
	}
	if all[0].Action != model.ActionRename || all[1].Action != model.ActionRemove {
		t.Errorf("Wrong actions in order: %s, %s", all[0].Action, all[1].Action)
	}
}

func TestParseAll_Conjunction(t *testing.T) {
	all := ParseAll("I renamed foo_bar to baz_qux and removed oldHelper")
	if len(all) != 2 {
		t.Fatalf("Expected 2 claims, got %d: %+v", len(all), all)
	}
	if all[0].Action != model.ActionRename {
		t.Errorf("First claim should be rename, got %s", all[0].Action)
	}
	if all[1].Action != model.ActionRemove || all[1].OldValue != "oldHelper" {
		t.Errorf("Second claim should remove oldHelper, got %+v", all[1])
	}
}

func TestParseAll_NoFalseSplit(t *testing.T) {
	// "X and Y" inside a clause is not a conjunction boundary
	all := ParseAll("removed helperA and helperB usages")
	if len(all) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(all))
	}
	if all[0].OldValue != "helperA" {
		t.Errorf("Expected old value helperA, got %q", all[0].OldValue)
	}
}

func TestParse_KeyDedup(t *testing.T) {
	a, _ := Parse("renamed UserService to AuthService")
	b, _ := Parse("I renamed UserService to AuthService everywhere")
	if a.Key() != b.Key() {
		t.Errorf("Equivalent claims should share a key: %q vs %q", a.Key(), b.Key())
	}
}
