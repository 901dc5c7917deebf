// Package mapping turns loaded scan modules into the canonical template
// mapping consumed by the address planner. Two extractors produce partial
// mappings (structured JSON and heuristic text); Merge resolves precedence
// between them per field.
package mapping

// Field names one canonical slot in the merged mapping. Every field has a
// fixed shape (scalar or table with a fixed column count); only the row
// count of table fields varies.
type Field string

const (
	FieldOverview              Field = "overview"
	FieldOverviewPrimaryShare  Field = "overview_primary_share"
	FieldOverviewExtraShare    Field = "overview_extra_share"
	FieldProfiles              Field = "profiles"
	FieldSAMLEnabled           Field = "saml_enabled"
	FieldSAMLSettingNames      Field = "saml_setting_names"
	FieldHealthCheckScore      Field = "health_check_score"
	FieldHealthCheckDetail     Field = "health_check_2"
	FieldStorageOverview       Field = "storage_overview"
	FieldStorageUsage          Field = "storage_usage"
	FieldSandboxLicenses       Field = "sandbox_licenses"
	FieldSandboxes             Field = "sandboxes"
	FieldSharingSettings       Field = "sharing_settings"
	FieldApplicationLogins     Field = "application_logins"
	FieldInternalCountryLogins Field = "internal_country_logins"
	FieldFailureAnalysis       Field = "failure_analysis"
)

// mergeFields lists the fields subject to structured-vs-heuristic precedence,
// in template order.
var mergeFields = []Field{
	FieldOverview,
	FieldProfiles,
	FieldSAMLEnabled,
	FieldSAMLSettingNames,
	FieldHealthCheckScore,
	FieldHealthCheckDetail,
	FieldStorageOverview,
	FieldStorageUsage,
	FieldSandboxLicenses,
	FieldSandboxes,
	FieldSharingSettings,
}

// Value is one canonical field value: a scalar string or a row table.
type Value struct {
	Scalar string
	Rows   [][]string
	Table  bool
}

// ScalarValue wraps a plain string field value.
func ScalarValue(s string) Value {
	return Value{Scalar: s}
}

// TableValue wraps a row-table field value.
func TableValue(rows [][]string) Value {
	return Value{Rows: rows, Table: true}
}

// Empty reports whether the value carries no data: an empty string for
// scalars, zero rows for tables. Empty is distinct from absent (not set in
// the Mapping at all); the merger treats the two differently.
func (v Value) Empty() bool {
	if v.Table {
		return len(v.Rows) == 0
	}
	return v.Scalar == ""
}

// Mapping is a canonical mapping from field names to values. Fields that no
// extractor produced are absent from the map.
type Mapping map[Field]Value

// Scalar returns the scalar value of a field, or "" when absent.
func (m Mapping) Scalar(f Field) string {
	return m[f].Scalar
}

// Rows returns the table rows of a field, or nil when absent.
func (m Mapping) Rows(f Field) [][]string {
	return m[f].Rows
}

// Has reports whether the field was produced at all.
func (m Mapping) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Merge combines the structured and heuristic extractions into one mapping.
// Per field: a present, non-empty structured value wins; a present but empty
// structured value yields to a non-empty heuristic value; an absent
// structured value yields to the heuristic unconditionally. Fields absent
// from both extractions stay absent.
func Merge(structured, heuristic Mapping) Mapping {
	out := make(Mapping, len(mergeFields))
	for _, f := range mergeFields {
		sv, sok := structured[f]
		hv, hok := heuristic[f]
		switch {
		case sok && !sv.Empty():
			out[f] = sv
		case sok && hok && !hv.Empty():
			out[f] = hv
		case sok:
			out[f] = sv
		case hok:
			out[f] = hv
		}
	}
	return out
}
