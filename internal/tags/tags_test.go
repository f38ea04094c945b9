package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExtra(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single tag", "#Library", []string{"#Library"}},
		{"mixed valid and invalid", "foo, #Bar, , #Baz", []string{"#Bar", "#Baz"}},
		{"whitespace around tags", "  #One ,  #Two  ", []string{"#One", "#Two"}},
		{"no marker", "plain, words, only", nil},
		{"bare marker", "#, #Ok", []string{"#Ok"}},
		{"only commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExtra(tt.input))
		})
	}
}

func TestNormalizeAlias(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback string
		want     string
	}{
		{"plain", "NightOwl", "Anonymous", "NightOwl"},
		{"collapses whitespace", "  Night   Owl  ", "Anonymous", "Night Owl"},
		{"empty falls back", "", "Anonymous", "Anonymous"},
		{"whitespace only falls back", "   ", "Anonymous", "Anonymous"},
		{"strips control characters", "Night\x00Owl", "Anonymous", "NightOwl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAlias(tt.input, tt.fallback))
		})
	}
}

func TestNormalizeAliasUnicode(t *testing.T) {
	// NFKD decomposition makes composed and decomposed forms compare equal.
	composed := NormalizeAlias("Café", "Anonymous")
	decomposed := NormalizeAlias("Café", "Anonymous")
	assert.Equal(t, composed, decomposed)
}
