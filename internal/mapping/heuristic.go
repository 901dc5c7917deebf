package mapping

import (
	"regexp"
	"strings"

	"orgreport/internal/scanstore"
)

// HeuristicExtractor derives canonical fields from legacy tab-separated text
// modules. Scalar fields come from a case-insensitive key:value line index;
// table fields come from header-predicate table selection where the first
// matching table wins. The first-match rule is a known limitation carried
// over deliberately; see DESIGN.md.
type HeuristicExtractor struct {
	modules scanstore.ModuleSet
}

// NewHeuristicExtractor creates an extractor over the loaded module set.
func NewHeuristicExtractor(modules scanstore.ModuleSet) *HeuristicExtractor {
	return &HeuristicExtractor{modules: modules}
}

// Extract builds the partial mapping from the text-variant modules. Fields
// whose module is missing still appear, holding their empty shape, so the
// merger can use them as a last resort.
func (e *HeuristicExtractor) Extract() Mapping {
	m := make(Mapping)
	m[FieldOverview] = TableValue([][]string{e.overview()})
	m[FieldProfiles] = TableValue(e.profiles())
	m[FieldHealthCheckScore] = ScalarValue(e.healthCheckScore())
	m[FieldHealthCheckDetail] = TableValue(e.healthCheckDetail())
	m[FieldStorageOverview] = TableValue(e.storageOverview())
	m[FieldStorageUsage] = TableValue(e.storageUsage())
	m[FieldSandboxLicenses] = TableValue(e.sandboxLicenses())
	m[FieldSandboxes] = TableValue(e.sandboxes())
	m[FieldSharingSettings] = TableValue(e.sharingSettings())
	return m
}

func (e *HeuristicExtractor) tables(id string) [][][]string {
	rec := e.modules.Get(id)
	if rec == nil {
		return nil
	}
	return rec.Tables
}

// keyValueIndex builds a case-insensitive key -> value index from lines of
// the form "Key\tValue" or "Key: Value". Lines starting with "=" never open
// a colon pair; "#" characters are stripped from keys.
func keyValueIndex(text string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		var k, v string
		if idx := strings.Index(line, "\t"); idx >= 0 {
			k, v = line[:idx], line[idx+1:]
		} else if idx := strings.Index(line, ":"); idx >= 0 && !strings.HasPrefix(line, "=") {
			k, v = line[:idx], line[idx+1:]
		} else {
			continue
		}
		k = strings.TrimSpace(strings.ReplaceAll(strings.ToLower(k), "#", ""))
		if k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}

func lookupAny(kv map[string]string, aliases ...string) string {
	for _, a := range aliases {
		if v := strings.TrimSpace(kv[a]); v != "" {
			return v
		}
	}
	return ""
}

// overview pulls [Account Name, Org ID, Location, Edition] from the raw text
// of the general-info, health-check and storage modules.
func (e *HeuristicExtractor) overview() []string {
	kv := make(map[string]string)
	for _, id := range []string{"3_general_info", "4_health_check", "5_storage"} {
		rec := e.modules.Get(id)
		if rec == nil {
			continue
		}
		for k, v := range keyValueIndex(rec.RawText) {
			kv[k] = v
		}
	}
	return []string{
		lookupAny(kv, "account name", "organization name", "company name"),
		lookupAny(kv, "organization id", "org id"),
		lookupAny(kv, "instance", "location (instance)", "location"),
		lookupAny(kv, "organization edition", "edition"),
	}
}

// profiles normalizes profile tables to the template's six columns:
// Profile Name, User License, Number Of Users, Modify All Data, Run Reports,
// Export Reports. Legacy exports carry an extra Profile Type column that the
// template has no slot for; it is dropped positionally.
func (e *HeuristicExtractor) profiles() [][]string {
	var rows [][]string
	for _, table := range e.tables("2_profiles") {
		if len(table) < 2 {
			continue
		}
		header := table[0]
		dataStart := 0
		if len(header) >= 2 && strings.Contains(strings.ToLower(header[0]), "profile") {
			dataStart = 1
		}
		hasLicenseCol := len(header) > 1 && strings.Contains(strings.ToLower(header[1]), "user license")
		for _, r := range table[dataStart:] {
			if len(r) >= 1 && strings.ToUpper(strings.TrimSpace(r[0])) == "ERROR" {
				continue
			}
			if hasLicenseCol && len(r) >= 7 {
				rows = append(rows, []string{
					cellAt(r, 0, ""), cellAt(r, 1, ""), cellAt(r, 3, "0"),
					cellAt(r, 4, ""), cellAt(r, 5, ""), cellAt(r, 6, ""),
				})
			} else {
				rows = append(rows, []string{
					cellAt(r, 0, ""), "", cellAt(r, 2, "0"),
					cellAt(r, 3, ""), cellAt(r, 4, ""), cellAt(r, 5, ""),
				})
			}
		}
	}
	return rows
}

var healthScoreRe = regexp.MustCompile(`(?i)Health Check Score:\s*(.+)`)

// healthCheckScore returns the raw score text (e.g. "62%" or "N/A"); digit
// extraction happens in the address planner.
func (e *HeuristicExtractor) healthCheckScore() string {
	rec := e.modules.Get("4_health_check")
	if rec == nil {
		return ""
	}
	if m := healthScoreRe.FindStringSubmatch(rec.RawText); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func (e *HeuristicExtractor) healthCheckDetail() [][]string {
	rows := [][]string{append([]string(nil), healthCheckHeader...)}
	for _, table := range e.tables("4_health_check") {
		if len(table) == 0 {
			continue
		}
		start := 0
		if strings.ToUpper(strings.TrimSpace(table[0][0])) == "STATUS" {
			start = 1
		}
		for _, r := range table[start:] {
			row := padRow(r, 5, "")
			if !allEmpty(row) {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func (e *HeuristicExtractor) storageOverview() [][]string {
	for _, table := range e.tables("5_storage") {
		if len(table) < 2 {
			continue
		}
		header := lowerCells(table[0])
		if !hasCell(header, "storage type") || !hasCell(header, "limit") {
			continue
		}
		var rows [][]string
		for _, r := range table[1:] {
			row := padRow(r, 4, "")
			if !allEmpty(row) {
				rows = append(rows, row)
			}
		}
		if len(rows) > 0 {
			if len(rows) > 3 {
				rows = rows[:3]
			}
			return rows
		}
	}
	return nil
}

func (e *HeuristicExtractor) storageUsage() [][]string {
	tables := e.tables("5_storage")
	for _, table := range tables {
		if len(table) < 2 {
			continue
		}
		header := lowerCells(table[0])
		joined := strings.Join(header, " ")
		if !strings.Contains(joined, "record") && !strings.Contains(joined, "storage") {
			continue
		}
		// Skip the storage-overview table; its header predicate is stricter.
		if hasCell(header, "storage type") && hasCell(header, "limit") {
			continue
		}
		var rows [][]string
		for _, r := range table[1:] {
			row := padRow(r, 4, "0")
			if !allEmpty(row) {
				rows = append(rows, row)
			}
		}
		return rows
	}

	// Degenerate fallback: second table when present, else the first.
	if len(tables) == 0 {
		return nil
	}
	chosen := tables[0]
	if len(tables) >= 2 {
		chosen = tables[1]
	}
	if len(chosen) < 2 {
		return nil
	}
	var rows [][]string
	for _, r := range chosen[1:] {
		row := padRow(r, 4, "0")
		if !allEmpty(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (e *HeuristicExtractor) sandboxLicenses() [][]string {
	for _, table := range e.tables("6_sandboxes") {
		if len(table) < 2 {
			continue
		}
		header := lowerCells(table[0])
		if !hasCell(header, "used") || !hasCell(header, "allowance") {
			continue
		}
		var rows [][]string
		for _, r := range table[1:] {
			row := padRow(r, 3, "")
			if !allEmpty(row) {
				rows = append(rows, row)
			}
		}
		if len(rows) > 0 {
			if len(rows) > 4 {
				rows = rows[:4]
			}
			return rows
		}
	}
	return nil
}

func (e *HeuristicExtractor) sandboxes() [][]string {
	var rows [][]string
	for _, table := range e.tables("6_sandboxes") {
		if len(table) < 2 {
			continue
		}
		matched := false
		for _, h := range lowerCells(table[0]) {
			if strings.Contains(h, "name") || strings.Contains(h, "type") || strings.Contains(h, "status") {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, r := range table[1:] {
			rows = append(rows, padRow(r, 9, ""))
		}
	}
	return rows
}

func (e *HeuristicExtractor) sharingSettings() [][]string {
	for _, table := range e.tables("7_sharing_settings") {
		if len(table) < 2 {
			continue
		}
		header := lowerCells(table[0])
		if !hasCell(header, "object") || !hasCell(header, "default internal access") {
			continue
		}
		var rows [][]string
		for _, r := range table[1:] {
			rows = append(rows, padRow(r, 3, ""))
		}
		return rows
	}
	return nil
}

// --- row helpers ----------------------------------------------------------

// padRow normalizes a row to exactly width cells: cells are taken
// positionally, short rows right-padded with fill, long rows truncated.
func padRow(r []string, width int, fill string) []string {
	row := make([]string, width)
	for i := 0; i < width; i++ {
		if i < len(r) {
			row[i] = strings.TrimSpace(r[i])
		} else {
			row[i] = fill
		}
	}
	return row
}

func cellAt(r []string, i int, def string) string {
	if i < len(r) {
		return strings.TrimSpace(r[i])
	}
	return def
}

func lowerCells(r []string) []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return out
}

func hasCell(header []string, want string) bool {
	for _, h := range header {
		if h == want {
			return true
		}
	}
	return false
}

func allEmpty(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
