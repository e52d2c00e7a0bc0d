package shortcode

import (
	"strings"
	"testing"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	g := NewRandomGenerator()

	for i := 0; i < 1000; i++ {
		code := g.Generate()

		if len(code) != Length {
			t.Fatalf("Generate() length = %d, want %d (code %q)", len(code), Length, code)
		}
		for _, c := range code {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("Generate() produced character %q outside the alphabet (code %q)", c, code)
			}
		}
	}
}

func TestGenerate_NoObviousRepeats(t *testing.T) {
	g := NewRandomGenerator()

	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		code := g.Generate()
		if seen[code] {
			// 10k draws from a 5.7e10 space colliding is ~1e-3 likely;
			// a single repeat in CI would point at a broken random source.
			t.Fatalf("Generate() repeated code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"generated code", NewRandomGenerator().Generate(), true},
		{"all digits", "123456", true},
		{"mixed case", "aB3xYz", true},
		{"too short", "abc12", false},
		{"too long", "abc1234", false},
		{"empty", "", false},
		{"underscore", "abc_12", false},
		{"slash", "ab/c12", false},
		{"unicode", "abcd1é", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.code); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
