package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		structured Mapping
		heuristic  Mapping
		want       Value
		wantAbsent bool
	}{
		{
			name:       "structured non-empty wins",
			structured: Mapping{FieldHealthCheckScore: ScalarValue("62")},
			heuristic:  Mapping{FieldHealthCheckScore: ScalarValue("legacy")},
			want:       ScalarValue("62"),
		},
		{
			name:       "structured empty yields to non-empty heuristic",
			structured: Mapping{FieldHealthCheckScore: ScalarValue("")},
			heuristic:  Mapping{FieldHealthCheckScore: ScalarValue("62%")},
			want:       ScalarValue("62%"),
		},
		{
			name:       "structured empty kept when heuristic also empty",
			structured: Mapping{FieldHealthCheckScore: ScalarValue("")},
			heuristic:  Mapping{FieldHealthCheckScore: ScalarValue("")},
			want:       ScalarValue(""),
		},
		{
			name:       "absent structured yields to heuristic",
			structured: Mapping{},
			heuristic:  Mapping{FieldHealthCheckScore: ScalarValue("85%")},
			want:       ScalarValue("85%"),
		},
		{
			name:       "absent from both stays absent",
			structured: Mapping{},
			heuristic:  Mapping{},
			wantAbsent: true,
		},
		{
			name:       "empty table yields to heuristic rows",
			structured: Mapping{FieldHealthCheckScore: TableValue(nil)},
			heuristic:  Mapping{FieldHealthCheckScore: TableValue([][]string{{"a"}})},
			want:       TableValue([][]string{{"a"}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.structured, tt.heuristic)
			if tt.wantAbsent {
				assert.False(t, got.Has(FieldHealthCheckScore))
				return
			}
			assert.Equal(t, tt.want, got[FieldHealthCheckScore])
		})
	}
}

func TestMergeIsPerField(t *testing.T) {
	structured := Mapping{
		FieldOverview: TableValue([][]string{{"Acme", "00D1", "NA1", "Enterprise"}}),
		FieldProfiles: TableValue(nil), // present but empty
	}
	heuristic := Mapping{
		FieldOverview:        TableValue([][]string{{"legacy", "", "", ""}}),
		FieldProfiles:        TableValue([][]string{{"Admin", "Salesforce", "3", "Yes", "Yes", "No"}}),
		FieldSharingSettings: TableValue([][]string{{"Account", "Private", "Private"}}),
	}

	got := Merge(structured, heuristic)

	assert.Equal(t, structured[FieldOverview], got[FieldOverview])
	assert.Equal(t, heuristic[FieldProfiles], got[FieldProfiles])
	assert.Equal(t, heuristic[FieldSharingSettings], got[FieldSharingSettings])
}

func TestMergeIgnoresNonMergeFields(t *testing.T) {
	// Share and login fields are attached after merging, never merged.
	structured := Mapping{FieldOverviewPrimaryShare: ScalarValue("someone")}
	got := Merge(structured, Mapping{})
	assert.False(t, got.Has(FieldOverviewPrimaryShare))
}

func TestValueEmpty(t *testing.T) {
	assert.True(t, ScalarValue("").Empty())
	assert.False(t, ScalarValue("x").Empty())
	assert.True(t, TableValue(nil).Empty())
	assert.True(t, TableValue([][]string{}).Empty())
	assert.False(t, TableValue([][]string{{""}}).Empty())
}
