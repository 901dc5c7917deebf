package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"orgreport/internal/scanstore"
)

// StructuredExtractor maps structured (JSON) module records into canonical
// fields using explicit key paths. A module that is absent, or whose record
// lacks the expected shape keys, contributes nothing: the field stays absent
// so the merger can fall back to the heuristic extraction.
type StructuredExtractor struct {
	modules scanstore.ModuleSet
}

// NewStructuredExtractor creates an extractor over the loaded module set.
func NewStructuredExtractor(modules scanstore.ModuleSet) *StructuredExtractor {
	return &StructuredExtractor{modules: modules}
}

// Extract builds the partial mapping from every structured module present.
func (e *StructuredExtractor) Extract() Mapping {
	m := make(Mapping)

	if gen, ok := e.structured("3_general_info", "companyInfo"); ok {
		ci := childMap(gen, "companyInfo")
		m[FieldOverview] = TableValue([][]string{{
			firstNonEmpty(safeStr(ci["accountName"]), safeStr(ci["organizationName"])),
			safeStr(ci["orgId"]),
			firstNonEmpty(safeStr(ci["location"]), safeStr(ci["instance"])),
			safeStr(ci["edition"]),
		}})
		m[FieldSAMLEnabled] = ScalarValue(yesNo(ci["samlEnabled"]))
		m[FieldSAMLSettingNames] = ScalarValue(samlNames(ci["samlSettingNames"]))
	}

	if data, ok := e.structured("2_profiles", "profiles"); ok {
		m[FieldProfiles] = TableValue(profileRows(childList(data, "profiles")))
	}

	if hc, ok := e.healthCheck(); ok {
		m[FieldHealthCheckScore] = ScalarValue(safeStr(hc["percentage"]))
		m[FieldHealthCheckDetail] = TableValue(healthRows(hc))
	}

	if data, ok := e.structured("5_storage", "overview", "dataStorageObjects"); ok {
		m[FieldStorageOverview] = TableValue(storageOverviewRows(childMap(data, "overview")))
		m[FieldStorageUsage] = TableValue(storageUsageRows(childMap(data, "dataStorageObjects")))
	}

	if data, ok := e.structured("6_sandboxes", "licenses", "rows"); ok {
		m[FieldSandboxLicenses] = TableValue(sandboxLicenseRows(childList(data, "licenses")))
		m[FieldSandboxes] = TableValue(sandboxRows(childList(data, "rows")))
	}

	if data, ok := e.structured("7_sharing_settings", "rows"); ok {
		m[FieldSharingSettings] = TableValue(sharingRows(childList(data, "rows")))
	}

	return m
}

// structured returns the structured record for a module when it carries at
// least one of the expected top-level keys.
func (e *StructuredExtractor) structured(id string, keys ...string) (map[string]any, bool) {
	rec := e.modules.Get(id)
	if !rec.IsStructured() {
		return nil, false
	}
	for _, k := range keys {
		if _, ok := rec.Structured[k]; ok {
			return rec.Structured, true
		}
	}
	return nil, false
}

// healthCheck is shaped differently: presence is keyed on a non-nil
// percentage or highRisk value rather than bare key existence.
func (e *StructuredExtractor) healthCheck() (map[string]any, bool) {
	rec := e.modules.Get("4_health_check")
	if !rec.IsStructured() {
		return nil, false
	}
	hc := rec.Structured
	if hc["percentage"] == nil && hc["highRisk"] == nil {
		return nil, false
	}
	return hc, true
}

// Overview C4:C7 = [Account Name, Org ID, Location, Edition].

func profileRows(profiles []any) [][]string {
	var rows [][]string
	for _, p := range profiles {
		obj, ok := p.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, []string{
			safeStr(obj["profileName"]),
			safeStr(obj["userLicense"]),
			safeInt(obj["activeUserCount"], 0),
			yesNo(obj["modifyAllData"]),
			yesNo(obj["runReports"]),
			yesNo(obj["exportReports"]),
		})
	}
	return rows
}

// healthCheckHeader is the fixed header the template expects; the planner
// drops it before writing data rows.
var healthCheckHeader = []string{"Status", "Setting", "Group", "Your Value", "Standard Value"}

func healthRows(hc map[string]any) [][]string {
	rows := [][]string{append([]string(nil), healthCheckHeader...)}
	for _, key := range []string{"highRisk", "mediumRisk", "lowRisk", "informational"} {
		for _, item := range childList(hc, key) {
			s, ok := item.(map[string]any)
			if !ok {
				continue
			}
			rows = append(rows, []string{
				safeStr(s["status"]),
				safeStr(s["setting"]),
				safeStr(s["group"]),
				safeStr(s["yourValue"]),
				safeStr(s["standardValue"]),
			})
		}
	}
	return rows
}

func storageOverviewRows(overview map[string]any) [][]string {
	var out [][]string
	for _, r := range childList(overview, "rows") {
		if len(out) == 3 {
			break
		}
		switch v := r.(type) {
		case []any:
			out = append(out, padAnyRow(v, 4, ""))
		case map[string]any:
			out = append(out, []string{
				firstNonEmpty(safeStr(v["storageType"]), safeStr(v["Storage Type"])),
				firstNonEmpty(safeStr(v["limit"]), safeStr(v["Limit"])),
				firstNonEmpty(safeStr(v["used"]), safeStr(v["Used"])),
				firstNonEmpty(safeStr(v["percentUsed"]), safeStr(v["Percentage Used"]), safeStr(v["Percent Used"])),
			})
		}
	}
	return out
}

func storageUsageRows(dso map[string]any) [][]string {
	var out [][]string
	for _, r := range childList(dso, "rows") {
		switch v := r.(type) {
		case []any:
			out = append(out, padAnyRow(v, 4, "0"))
		case map[string]any:
			out = append(out, []string{
				firstNonEmpty(safeStr(v["recordType"]), safeStr(v["Record Type"])),
				firstNonEmpty(safeStr(v["recordCount"]), safeStr(v["Record Count"]), "0"),
				firstNonEmpty(safeStr(v["storage"]), safeStr(v["Storage"]), "0"),
				firstNonEmpty(safeStr(v["percent"]), safeStr(v["Percent"]), "0"),
			})
		}
	}
	return out
}

func sandboxLicenseRows(licenses []any) [][]string {
	var out [][]string
	for _, l := range licenses {
		if len(out) == 4 {
			break
		}
		switch v := l.(type) {
		case map[string]any:
			out = append(out, []string{
				safeStr(v["type"]),
				safeStr(v["used"]),
				safeStr(v["allowance"]),
			})
		case []any:
			out = append(out, padAnyRow(v, 3, ""))
		}
	}
	return out
}

var sandboxKeys = []string{
	"name", "type", "status", "location", "releaseType",
	"currentOrgId", "completedOn", "description", "copiedFrom",
}

func sandboxRows(rows []any) [][]string {
	var out [][]string
	for _, r := range rows {
		switch v := r.(type) {
		case map[string]any:
			row := make([]string, len(sandboxKeys))
			for i, k := range sandboxKeys {
				row[i] = safeStr(v[k])
			}
			out = append(out, row)
		case []any:
			out = append(out, padAnyRow(v, 9, ""))
		}
	}
	return out
}

func sharingRows(rows []any) [][]string {
	var out [][]string
	for _, r := range rows {
		switch v := r.(type) {
		case map[string]any:
			out = append(out, []string{
				safeStr(v["object"]),
				safeStr(v["defaultInternalAccess"]),
				safeStr(v["defaultExternalAccess"]),
			})
		case []any:
			out = append(out, padAnyRow(v, 3, ""))
		}
	}
	return out
}

// --- coercion helpers -----------------------------------------------------

// safeStr renders any JSON value as a trimmed cell string; nil becomes "".
func safeStr(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// safeInt renders a numeric-like value as an integer string, falling back to
// def when coercion fails.
func safeInt(v any, def int) string {
	switch t := v.(type) {
	case nil:
		return strconv.Itoa(def)
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return strconv.Itoa(n)
		}
		return strconv.Itoa(def)
	default:
		return strconv.Itoa(def)
	}
}

// yesNo renders a truthy value as a literal "Yes"/"No" cell.
func yesNo(v any) string {
	truthy := false
	switch t := v.(type) {
	case bool:
		truthy = t
	case string:
		truthy = t != ""
	case float64:
		truthy = t != 0
	case []any:
		truthy = len(t) > 0
	case map[string]any:
		truthy = len(t) > 0
	case nil:
		truthy = false
	default:
		truthy = true
	}
	if truthy {
		return "Yes"
	}
	return "No"
}

func samlNames(v any) string {
	switch t := v.(type) {
	case []any:
		names := make([]string, 0, len(t))
		for _, n := range t {
			names = append(names, safeStr(n))
		}
		return strings.Join(names, ", ")
	default:
		return safeStr(v)
	}
}

func childMap(m map[string]any, key string) map[string]any {
	if child, ok := m[key].(map[string]any); ok {
		return child
	}
	return nil
}

func childList(m map[string]any, key string) []any {
	if child, ok := m[key].([]any); ok {
		return child
	}
	return nil
}

func padAnyRow(cells []any, width int, fill string) []string {
	row := make([]string, width)
	for i := 0; i < width; i++ {
		if i < len(cells) {
			row[i] = safeStr(cells[i])
		} else {
			row[i] = fill
		}
	}
	return row
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
