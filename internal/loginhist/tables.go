package loginhist

import (
	"encoding/csv"
	"os"
	"path/filepath"
)

// Tables holds the three analysis tables as data-only rows, normalized to
// the widths the template regions expect.
type Tables struct {
	ApplicationLogins     [][]string
	InternalCountryLogins [][]string
	FailureAnalysis       [][]string
}

// ReadTables loads any previously written analysis CSVs from dir. Missing
// files leave their table nil; the header row is dropped and every row is
// normalized to the region width.
func ReadTables(dir string) *Tables {
	return &Tables{
		ApplicationLogins:     readAnalysisCSV(filepath.Join(dir, ApplicationLoginsCSV), 4),
		InternalCountryLogins: readAnalysisCSV(filepath.Join(dir, InternalCountryLoginsCSV), 4),
		FailureAnalysis:       readAnalysisCSV(filepath.Join(dir, FailureAnalysisCSV), 2),
	}
}

func readAnalysisCSV(path string, width int) [][]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil || len(rows) < 2 {
		return nil
	}
	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		norm := make([]string, width)
		for i := 0; i < width; i++ {
			if i < len(row) {
				norm[i] = row[i]
			}
		}
		out = append(out, norm)
	}
	return out
}
