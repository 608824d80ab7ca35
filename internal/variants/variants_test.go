package variants

import (
	"strings"
	"testing"
)

func TestGenerate_PascalCase(t *testing.T) {
	set := Generate("UserService")

	if set.Original != "UserService" {
		t.Errorf("Expected original 'UserService', got %q", set.Original)
	}
	if set.All[0] != "UserService" {
		t.Errorf("Expected first element of All to be the original, got %q", set.All[0])
	}

	expected := []string{"userService", "user_service", "USER_SERVICE", "user-service", "userservice"}
	for _, want := range expected {
		found := false
		for _, v := range set.Variants {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected variant %q, got %v", want, set.Variants)
		}
	}

	// The original must not appear in Variants
	for _, v := range set.Variants {
		if v == "UserService" {
			t.Error("Original must not appear in Variants")
		}
	}
}

func TestGenerate_SnakeCase(t *testing.T) {
	set := Generate("user_service")

	wantSome := []string{"UserService", "userService", "user-service"}
	for _, want := range wantSome {
		found := false
		for _, v := range set.Variants {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected variant %q for snake_case input, got %v", want, set.Variants)
		}
	}
}

func TestGenerate_KebabCase(t *testing.T) {
	set := Generate("user-service")
	found := false
	for _, v := range set.Variants {
		if v == "user_service" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected snake variant for kebab input, got %v", set.Variants)
	}
}

func TestGenerate_Acronym(t *testing.T) {
	set := Generate("HTTPServer")
	found := false
	for _, v := range set.Variants {
		if v == "http_server" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'http_server' from acronym split, got %v", set.Variants)
	}
}

func TestGenerate_NoDuplicates(t *testing.T) {
	inputs := []string{"UserService", "x", "", "already_lower", "ABC", "mixedUp_case"}
	for _, in := range inputs {
		set := Generate(in)

		if set.All[0] != in {
			t.Errorf("Generate(%q): All[0] = %q, want original", in, set.All[0])
		}

		seen := make(map[string]bool)
		for _, v := range set.All {
			if seen[v] {
				t.Errorf("Generate(%q): duplicate entry %q in All", in, v)
			}
			seen[v] = true
		}
	}
}

func TestGenerate_SingleChar(t *testing.T) {
	set := Generate("x")
	if set.All[0] != "x" {
		t.Errorf("Expected All[0] = 'x', got %q", set.All[0])
	}
	// "x" lowercases to itself so only the uppercase snake form differs
	for _, v := range set.Variants {
		if v == "x" {
			t.Error("Original must not be repeated in Variants")
		}
	}
}

func TestGenerate_LowercaseWord(t *testing.T) {
	set := Generate("handler")
	// A single lowercase word still yields the screaming form
	found := false
	for _, v := range set.Variants {
		if v == strings.ToUpper("handler") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected HANDLER variant, got %v", set.Variants)
	}
}
