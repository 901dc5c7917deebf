package sheetplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColToLetter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
		{0, "A"},
		{-5, "A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColToLetter(tt.n), "column %d", tt.n)
	}
}

func TestQuoteSheet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare name passes through", "Overview", "Overview"},
		{"space forces quoting", "2. Profiles", "'2. Profiles'"},
		{"period forces quoting", "v1.2", "'v1.2'"},
		{"embedded quote doubles", "Sandbox's", "'Sandbox''s'"},
		{"empty name passes through", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteSheet(tt.in))
		})
	}
}

func TestStripOrdinal(t *testing.T) {
	assert.Equal(t, "Sandboxes", StripOrdinal("8. Sandboxes"))
	assert.Equal(t, "Profiles", StripOrdinal("2. Profiles"))
	assert.Equal(t, "Overview", StripOrdinal("Overview"))
	assert.Equal(t, "Health Check 2", StripOrdinal("Health Check 2"))
}
