// Package sheetplan converts the canonical mapping into range-addressed
// write operations against the report template. Every field has a fixed
// top-left anchor; only the bottom-right extent varies with row count.
package sheetplan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"orgreport/internal/mapping"
)

// maxCellChars caps a single cell's text length. The remote service rejects
// whole batches whose payload contains oversized cells.
const maxCellChars = 50000

// WriteOp is one range-addressed value write: a destination range in A1
// notation and the 2-D block to enter there.
type WriteOp struct {
	Field  mapping.Field
	Range  string
	Values [][]any
}

var digitRunRe = regexp.MustCompile(`\d+`)

// BuildWriteOps produces the ordered write-operation list for a mapping.
// Fields absent from the mapping, or present with no rows, emit nothing.
func BuildWriteOps(m mapping.Mapping, res Resolution) []WriteOp {
	var ops []WriteOp

	ref := func(logical, cells string) string {
		return QuoteSheet(res.Resolve(logical)) + "!" + cells
	}

	// Overview C4:C7 = Account Name, Org ID, Location, Edition.
	if rows := m.Rows(mapping.FieldOverview); len(rows) > 0 {
		vec := rows[0]
		vals := make([][]any, 4)
		for i := 0; i < 4; i++ {
			if i < len(vec) {
				vals[i] = []any{truncateCell(vec[i])}
			} else {
				vals[i] = []any{""}
			}
		}
		ops = append(ops, WriteOp{mapping.FieldOverview, ref(SheetOverview, "C4:C7"), vals})
	}

	// Overview F4:F5 = primary / extra share display names.
	if m.Has(mapping.FieldOverviewPrimaryShare) || m.Has(mapping.FieldOverviewExtraShare) {
		ops = append(ops, WriteOp{
			mapping.FieldOverviewPrimaryShare,
			ref(SheetOverview, "F4:F5"),
			[][]any{
				{strings.TrimSpace(m.Scalar(mapping.FieldOverviewPrimaryShare))},
				{strings.TrimSpace(m.Scalar(mapping.FieldOverviewExtraShare))},
			},
		})
	}

	// 2. Profiles C4:C5 = SAML enabled / SAML setting names.
	if m.Has(mapping.FieldSAMLEnabled) || m.Has(mapping.FieldSAMLSettingNames) {
		ops = append(ops, WriteOp{
			mapping.FieldSAMLEnabled,
			ref(SheetProfiles, "C4:C5"),
			[][]any{
				{m.Scalar(mapping.FieldSAMLEnabled)},
				{m.Scalar(mapping.FieldSAMLSettingNames)},
			},
		})
	}

	// 2. Profiles B16:G* = profile rows.
	if rows := m.Rows(mapping.FieldProfiles); len(rows) > 0 {
		ops = append(ops, WriteOp{
			mapping.FieldProfiles,
			ref(SheetProfiles, fmt.Sprintf("B16:G%d", 15+len(rows))),
			toCellBlock(rows),
		})
	}

	// 3. Health Check C4 = score, as a bare integer when a digit run exists.
	if score := strings.TrimSpace(m.Scalar(mapping.FieldHealthCheckScore)); score != "" {
		var val any = score
		if digits := digitRunRe.FindString(score); digits != "" {
			if n, err := strconv.Atoi(digits); err == nil {
				val = n
			}
		}
		ops = append(ops, WriteOp{
			mapping.FieldHealthCheckScore,
			ref(SheetHealthCheck, "C4"),
			[][]any{{val}},
		})
	}

	// Health Check 2 B4:F* = detail rows, header dropped.
	if rows := dropHealthHeader(m.Rows(mapping.FieldHealthCheckDetail)); len(rows) > 0 {
		ops = append(ops, WriteOp{
			mapping.FieldHealthCheckDetail,
			ref(SheetHealthCheckDetail, fmt.Sprintf("B4:F%d", 3+len(rows))),
			toCellBlock(rows),
		})
	}

	// 7. Storage Usage B25:E27 = storage overview (at most 3 rows).
	if rows := m.Rows(mapping.FieldStorageOverview); len(rows) > 0 {
		if len(rows) > 3 {
			rows = rows[:3]
		}
		ops = append(ops, WriteOp{
			mapping.FieldStorageOverview,
			ref(SheetStorageUsage, "B25:E27"),
			toCellBlock(rows),
		})
	}

	// 7. Storage Usage B30:E* = data storage usage rows.
	if rows := m.Rows(mapping.FieldStorageUsage); len(rows) > 0 {
		ops = append(ops, WriteOp{
			mapping.FieldStorageUsage,
			ref(SheetStorageUsage, fmt.Sprintf("B30:E%d", 29+len(rows))),
			toCellBlock(rows),
		})
	}

	// 8. Sandboxes B5:D8 = sandbox licenses (at most 4 rows).
	if rows := m.Rows(mapping.FieldSandboxLicenses); len(rows) > 0 {
		if len(rows) > 4 {
			rows = rows[:4]
		}
		ops = append(ops, WriteOp{
			mapping.FieldSandboxLicenses,
			ref(SheetSandboxes, "B5:D8"),
			toCellBlock(rows),
		})
	}

	// 8. Sandboxes B11:J* = sandbox rows.
	if rows := m.Rows(mapping.FieldSandboxes); len(rows) > 0 {
		ops = append(ops, WriteOp{
			mapping.FieldSandboxes,
			ref(SheetSandboxes, fmt.Sprintf("B11:J%d", 10+len(rows))),
			toCellBlock(rows),
		})
	}

	// 4. Sharing Settings C30:E* = object access rows.
	if rows := m.Rows(mapping.FieldSharingSettings); len(rows) > 0 {
		ops = append(ops, WriteOp{
			mapping.FieldSharingSettings,
			ref(SheetSharingSettings, fmt.Sprintf("C30:E%d", 29+len(rows))),
			toCellBlock(rows),
		})
	}

	// Login analysis tables, data only, anchored at M5.
	if rows := m.Rows(mapping.FieldApplicationLogins); len(rows) > 0 {
		ops = append(ops, WriteOp{
			mapping.FieldApplicationLogins,
			ref(SheetApplicationLogins, fmt.Sprintf("M5:P%d", 4+len(rows))),
			toCellBlock(rows),
		})
	}
	if rows := m.Rows(mapping.FieldInternalCountryLogins); len(rows) > 0 {
		ops = append(ops, WriteOp{
			mapping.FieldInternalCountryLogins,
			ref(SheetInternalLogins, fmt.Sprintf("M5:P%d", 4+len(rows))),
			toCellBlock(rows),
		})
	}
	if rows := m.Rows(mapping.FieldFailureAnalysis); len(rows) > 0 {
		ops = append(ops, WriteOp{
			mapping.FieldFailureAnalysis,
			ref(SheetLoginFailures, fmt.Sprintf("M5:N%d", 4+len(rows))),
			toCellBlock(rows),
		})
	}

	return ops
}

// dropHealthHeader removes the leading header row when present; the template
// already carries its own column labels.
func dropHealthHeader(rows [][]string) [][]string {
	if len(rows) > 0 && len(rows[0]) > 0 &&
		strings.ToUpper(strings.TrimSpace(rows[0][0])) == "STATUS" {
		return rows[1:]
	}
	return rows
}

func toCellBlock(rows [][]string) [][]any {
	block := make([][]any, len(rows))
	for i, r := range rows {
		cells := make([]any, len(r))
		for j, c := range r {
			cells[j] = truncateCell(c)
		}
		block[i] = cells
	}
	return block
}

// truncateCell caps a cell's text, backing the cut up to a rune boundary so
// an oversized cell never turns into invalid UTF-8.
func truncateCell(s string) string {
	if len(s) <= maxCellChars {
		return s
	}
	cut := maxCellChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
