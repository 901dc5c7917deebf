package sheetplan

import "orgreport/internal/mapping"

// FormatRange is a zero-based half-open grid rectangle on a logical sheet,
// targeted by the best-effort post-write formatting pass.
type FormatRange struct {
	Sheet    string // logical sheet name, resolved at dispatch time
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
	// Bold marks the sandbox label column rectangle, which takes a bold
	// white font instead of the standard body format.
	Bold bool
}

// BuildFormatRanges computes the formatting rectangles for the regions the
// mapping actually populated. Fixed-height regions use their template extent;
// variable-height regions stretch to the written row count.
func BuildFormatRanges(m mapping.Mapping) []FormatRange {
	var fr []FormatRange

	if rows := m.Rows(mapping.FieldOverview); len(rows) > 0 {
		fr = append(fr, FormatRange{Sheet: SheetOverview, StartRow: 3, EndRow: 7, StartCol: 2, EndCol: 3})
	}
	if m.Has(mapping.FieldSAMLEnabled) || m.Has(mapping.FieldSAMLSettingNames) {
		fr = append(fr, FormatRange{Sheet: SheetProfiles, StartRow: 3, EndRow: 6, StartCol: 2, EndCol: 3})
	}
	if n := len(m.Rows(mapping.FieldProfiles)); n > 0 {
		fr = append(fr, FormatRange{Sheet: SheetProfiles, StartRow: 15, EndRow: 15 + n, StartCol: 1, EndCol: 7})
	}
	if m.Scalar(mapping.FieldHealthCheckScore) != "" {
		fr = append(fr, FormatRange{Sheet: SheetHealthCheck, StartRow: 3, EndRow: 4, StartCol: 2, EndCol: 3})
	}
	if n := len(dropHealthHeader(m.Rows(mapping.FieldHealthCheckDetail))); n > 0 {
		fr = append(fr, FormatRange{Sheet: SheetHealthCheckDetail, StartRow: 3, EndRow: 3 + n, StartCol: 1, EndCol: 6})
	}
	if len(m.Rows(mapping.FieldStorageOverview)) > 0 {
		fr = append(fr, FormatRange{Sheet: SheetStorageUsage, StartRow: 24, EndRow: 28, StartCol: 1, EndCol: 5})
	}
	if n := len(m.Rows(mapping.FieldStorageUsage)); n > 0 {
		fr = append(fr, FormatRange{Sheet: SheetStorageUsage, StartRow: 29, EndRow: 29 + n, StartCol: 1, EndCol: 5})
	}
	if len(m.Rows(mapping.FieldSandboxLicenses)) > 0 {
		fr = append(fr,
			FormatRange{Sheet: SheetSandboxes, StartRow: 4, EndRow: 9, StartCol: 1, EndCol: 4},
			FormatRange{Sheet: SheetSandboxes, StartRow: 4, EndRow: 8, StartCol: 1, EndCol: 2, Bold: true},
		)
	}
	if n := len(m.Rows(mapping.FieldSandboxes)); n > 0 {
		fr = append(fr, FormatRange{Sheet: SheetSandboxes, StartRow: 10, EndRow: 10 + n, StartCol: 1, EndCol: 10})
	}
	if n := len(m.Rows(mapping.FieldSharingSettings)); n > 0 {
		fr = append(fr, FormatRange{Sheet: SheetSharingSettings, StartRow: 29, EndRow: 29 + n, StartCol: 2, EndCol: 5})
	}
	if n := len(m.Rows(mapping.FieldApplicationLogins)); n > 0 {
		fr = append(fr, FormatRange{Sheet: SheetApplicationLogins, StartRow: 4, EndRow: 4 + n, StartCol: 12, EndCol: 16})
	}
	if n := len(m.Rows(mapping.FieldInternalCountryLogins)); n > 0 {
		fr = append(fr, FormatRange{Sheet: SheetInternalLogins, StartRow: 4, EndRow: 4 + n, StartCol: 12, EndCol: 16})
	}
	if n := len(m.Rows(mapping.FieldFailureAnalysis)); n > 0 {
		fr = append(fr, FormatRange{Sheet: SheetLoginFailures, StartRow: 4, EndRow: 4 + n, StartCol: 12, EndCol: 14})
	}

	return fr
}
