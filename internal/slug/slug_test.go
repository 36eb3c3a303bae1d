package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "Portuguese title with ordinal and punctuation",
			raw:      "Orçamento Nº 1!!",
			expected: "orcamento-no-1",
		},
		{
			name:     "Plain ascii",
			raw:      "invoice-42",
			expected: "invoice-42",
		},
		{
			name:     "Uppercase and spaces",
			raw:      "Troca de Óleo 5000 km",
			expected: "troca-de-oleo-5000-km",
		},
		{
			name:     "Hyphen runs collapse",
			raw:      "a -- b --- c",
			expected: "a-b-c",
		},
		{
			name:     "Leading and trailing junk",
			raw:      "  ***Recibo***  ",
			expected: "recibo",
		},
		{
			name:     "Only junk yields empty",
			raw:      "!!! ???",
			expected: "",
		},
	}

	allowed := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.raw)
			assert.Equal(t, tc.expected, got)
			if got != "" {
				assert.Regexp(t, allowed, got)
			}
			// Stable under re-normalization.
			assert.Equal(t, got, Normalize(got))
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("orcamento-no-1"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("Orçamento"))
	assert.False(t, Valid("-leading"))
}
