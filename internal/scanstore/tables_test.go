package scanstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTables(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    [][][]string
	}{
		{
			name:    "empty input",
			content: "",
			want:    nil,
		},
		{
			name:    "no tabs at all",
			content: "Account Name: Acme\nOrganization Id: 00D123\n",
			want:    nil,
		},
		{
			name:    "single table",
			content: "Name\tType\nAlpha\tFull\nBeta\tDeveloper\n",
			want: [][][]string{
				{{"Name", "Type"}, {"Alpha", "Full"}, {"Beta", "Developer"}},
			},
		},
		{
			name:    "two tables split by blank line",
			content: "Name\tType\nAlpha\tFull\n\nObject\tAccess\nAccount\tPrivate\n",
			want: [][][]string{
				{{"Name", "Type"}, {"Alpha", "Full"}},
				{{"Object", "Access"}, {"Account", "Private"}},
			},
		},
		{
			name:    "separator line never opens a table",
			content: "=====\tsection\nName\tType\nAlpha\tFull\n",
			want: [][][]string{
				{{"Name", "Type"}, {"Alpha", "Full"}},
			},
		},
		{
			name:    "summary line never opens a table",
			content: "Summary\ttotals\n\nName\tType\nAlpha\tFull\n",
			want: [][][]string{
				{{"Name", "Type"}, {"Alpha", "Full"}},
			},
		},
		{
			name: "summary line inside a run stays in the block",
			// Exclusion applies only to the line that would open a table.
			content: "Name\tType\nSUMMARY\trow\n",
			want: [][][]string{
				{{"Name", "Type"}, {"SUMMARY", "row"}},
			},
		},
		{
			name:    "cells are trimmed",
			content: "  Name \t Type \n Alpha\t Full \n",
			want: [][][]string{
				{{"Name", "Type"}, {"Alpha", "Full"}},
			},
		},
		{
			name: "degenerate fallback from summary-only content",
			// Every tab line is excluded, so the first multi-cell line is
			// promoted to a one-block table.
			content: "SUMMARY\t10\t20\nplain text\n",
			want: [][][]string{
				{{"SUMMARY", "10", "20"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTables(tt.content)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTablesDegenerateRun(t *testing.T) {
	// The fallback takes the whole contiguous tab run, not just one line.
	got := ExtractTables("= header\tx\nSUMMARY\ta\tb\n")
	require.Len(t, got, 1)
	assert.Equal(t, [][]string{{"= header", "x"}, {"SUMMARY", "a", "b"}}, got[0])
}
