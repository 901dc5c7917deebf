package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drivelabels "google.golang.org/api/drivelabels/v2"
)

func selectionField(id string, choices ...*drivelabels.GoogleAppsDriveLabelsV2FieldSelectionOptionsChoice) *drivelabels.GoogleAppsDriveLabelsV2Field {
	return &drivelabels.GoogleAppsDriveLabelsV2Field{
		Id: id,
		SelectionOptions: &drivelabels.GoogleAppsDriveLabelsV2FieldSelectionOptions{
			Choices: choices,
		},
	}
}

func choice(id, display string) *drivelabels.GoogleAppsDriveLabelsV2FieldSelectionOptionsChoice {
	return &drivelabels.GoogleAppsDriveLabelsV2FieldSelectionOptionsChoice{
		Id: id,
		Properties: &drivelabels.GoogleAppsDriveLabelsV2FieldSelectionOptionsChoiceProperties{
			DisplayName: display,
		},
	}
}

func TestFindExternalChoice(t *testing.T) {
	labels := []*drivelabels.GoogleAppsDriveLabelsV2Label{
		{
			Id: "labels/classification",
			Fields: []*drivelabels.GoogleAppsDriveLabelsV2Field{
				// Text field without selection options is skipped.
				{Id: "notes"},
				selectionField("sharing",
					choice("internal-only", "Internal Only"),
					choice("ext-ok", "External Allowed"),
				),
			},
		},
	}

	sel, ok := findExternalChoice(labels)
	require.True(t, ok)
	assert.Equal(t, "labels/classification", sel.labelID)
	assert.Equal(t, "sharing", sel.fieldID)
	assert.Equal(t, "ext-ok", sel.choiceID)
}

func TestFindExternalChoiceLegacyName(t *testing.T) {
	labels := []*drivelabels.GoogleAppsDriveLabelsV2Label{
		{
			Id:     "labels/old",
			Fields: []*drivelabels.GoogleAppsDriveLabelsV2Field{selectionField("f1", choice("c1", "  externals allowed "))},
		},
	}
	sel, ok := findExternalChoice(labels)
	require.True(t, ok)
	assert.Equal(t, "c1", sel.choiceID)
}

func TestFindExternalChoiceAbsent(t *testing.T) {
	labels := []*drivelabels.GoogleAppsDriveLabelsV2Label{
		nil,
		{Id: "labels/empty"},
		{
			Id:     "labels/other",
			Fields: []*drivelabels.GoogleAppsDriveLabelsV2Field{selectionField("f1", choice("c1", "Confidential"))},
		},
	}
	_, ok := findExternalChoice(labels)
	assert.False(t, ok)
}
