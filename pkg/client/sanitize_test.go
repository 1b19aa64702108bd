package client

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain query untouched", "blue widgets pricing", "blue widgets pricing"},
		{"email redacted", "contact me at a@b.com", "contact me at [email]"},
		{"phone redacted", "call 555-123-4567 now", "call [phone] now"},
		{"phone with dots", "call 555.123.4567", "call [phone]"},
		{"card redacted", "pay with 4111 1111 1111 1111", "pay with [card]"},
		{"card with dashes", "4111-1111-1111-1111", "[card]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSearchQuery(tt.query))
		})
	}
}

func TestSanitizeSearchQueryMixedPII(t *testing.T) {
	got := SanitizeSearchQuery("contact me at a@b.com or 555-123-4567")

	assert.Contains(t, got, "[email]")
	assert.Contains(t, got, "[phone]")
	assert.NotContains(t, got, "a@b.com")
	assert.NotContains(t, got, "555-123-4567")
}

func TestSanitizeSearchQueryTruncates(t *testing.T) {
	long := strings.Repeat("widgets ", 50)

	got := SanitizeSearchQuery(long)
	assert.Len(t, got, 200)
}

func TestSanitizeSearchQueryTruncatesOnRuneBoundary(t *testing.T) {
	got := SanitizeSearchQuery(strings.Repeat("é", 250))

	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.Equal(t, 200, utf8.RuneCountInString(got))

	// Over the byte cap but under the character cap stays whole.
	short := strings.Repeat("é", 150)
	assert.Equal(t, short, SanitizeSearchQuery(short))
}
