package loginhist

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "orgreport/internal/errors"
)

// Analysis holds the three aggregated tables, each including its header row.
type Analysis struct {
	ApplicationLogins     [][]string // Application, Total, Success, Failed
	InternalCountryLogins [][]string // Country, Success, Failed, Total
	FailureAnalysis       [][]string // Reason, Count
}

// internalApps are the applications counted as interactive user logins when
// breaking logins down by country.
var internalApps = map[string]bool{
	"browser":            true,
	"salesforce for ios": true,
}

// Analyze aggregates raw LoginHistory records. Column positions are taken
// from the header, so reordered exports still aggregate correctly.
func Analyze(header []string, records [][]string) (*Analysis, error) {
	appCol := findColumn(header, "application")
	statusCol := findColumn(header, "status")
	countryCol := findColumn(header, "country")
	if appCol < 0 || statusCol < 0 {
		return nil, apperrors.NewParsingError("login history header lacks Application or Status column", nil)
	}

	type tally struct{ success, failed int }
	apps := make(map[string]*tally)
	countries := make(map[string]*tally)
	failures := make(map[string]int)

	for _, rec := range records {
		app := cell(rec, appCol)
		status := cell(rec, statusCol)
		if app == "" && status == "" {
			continue
		}
		ok := strings.EqualFold(status, "Success")

		t := apps[app]
		if t == nil {
			t = &tally{}
			apps[app] = t
		}
		if ok {
			t.success++
		} else {
			t.failed++
			if status != "" {
				failures[status]++
			}
		}

		if countryCol >= 0 && internalApps[strings.ToLower(app)] {
			country := cell(rec, countryCol)
			if country == "" {
				country = "Unknown"
			}
			ct := countries[country]
			if ct == nil {
				ct = &tally{}
				countries[country] = ct
			}
			if ok {
				ct.success++
			} else {
				ct.failed++
			}
		}
	}

	a := &Analysis{
		ApplicationLogins:     [][]string{{"Application", "Total", "Success", "Failed"}},
		InternalCountryLogins: [][]string{{"Country", "Success", "Failed", "Total"}},
		FailureAnalysis:       [][]string{{"Reason", "Count"}},
	}

	for _, name := range sortedKeysByTotal(apps, func(t *tally) int { return t.success + t.failed }) {
		t := apps[name]
		a.ApplicationLogins = append(a.ApplicationLogins, []string{
			name, itoa(t.success + t.failed), itoa(t.success), itoa(t.failed),
		})
	}
	for _, name := range sortedKeysByTotal(countries, func(t *tally) int { return t.success + t.failed }) {
		t := countries[name]
		a.InternalCountryLogins = append(a.InternalCountryLogins, []string{
			name, itoa(t.success), itoa(t.failed), itoa(t.success + t.failed),
		})
	}
	for _, reason := range sortedCountKeys(failures) {
		a.FailureAnalysis = append(a.FailureAnalysis, []string{reason, itoa(failures[reason])})
	}
	return a, nil
}

// analysis file names; the chart renderer and the reader both key off these.
const (
	ApplicationLoginsCSV     = "application_logins.csv"
	InternalCountryLoginsCSV = "internal_country_logins.csv"
	FailureAnalysisCSV       = "failure_analysis.csv"
)

// WriteCSVs writes the three analysis tables into dir, creating it as needed.
func (a *Analysis) WriteCSVs(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeStorage, "create analysis directory", err)
	}
	files := map[string][][]string{
		ApplicationLoginsCSV:     a.ApplicationLogins,
		InternalCountryLoginsCSV: a.InternalCountryLogins,
		FailureAnalysisCSV:       a.FailureAnalysis,
	}
	for name, rows := range files {
		if err := writeCSV(filepath.Join(dir, name), rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeStorage, "create analysis csv", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeStorage, "write analysis csv", err)
	}
	return nil
}

// --- helpers --------------------------------------------------------------

func findColumn(header []string, want string) int {
	// Exact-ish match first ("Status" and "Login Status" both qualify),
	// preferring the shortest containing header.
	best := -1
	for i, h := range header {
		if strings.Contains(strings.ToLower(strings.TrimSpace(h)), want) {
			if best == -1 || len(header[i]) < len(header[best]) {
				best = i
			}
		}
	}
	return best
}

func cell(rec []string, i int) string {
	if i >= 0 && i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func itoa(n int) string { return strconv.Itoa(n) }

func sortedKeysByTotal[T any](m map[string]*T, total func(*T) int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := total(m[keys[i]]), total(m[keys[j]])
		if ti != tj {
			return ti > tj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
