package scanstore

import "strings"

// ExtractTables extracts one or more tab-separated tables from module text.
// A contiguous run of tab-containing lines forms one table; lines starting
// with "=" and lines containing "SUMMARY" (any case) never open a table.
// When nothing qualifies, the first line with at least two tab-separated
// cells opens a single degenerate table instead.
func ExtractTables(content string) [][][]string {
	var tables [][][]string
	lines := strings.Split(content, "\n")

	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.Contains(line, "\t") &&
			!strings.HasPrefix(strings.TrimSpace(line), "=") &&
			!strings.Contains(strings.ToUpper(line), "SUMMARY") {
			var block [][]string
			for i < len(lines) && strings.Contains(lines[i], "\t") {
				block = append(block, splitCells(lines[i]))
				i++
			}
			if len(block) >= 1 {
				tables = append(tables, block)
			}
			continue
		}
		i++
	}

	if len(tables) == 0 {
		for j, line := range lines {
			if strings.Contains(line, "\t") && len(strings.Split(line, "\t")) >= 2 {
				var block [][]string
				for k := j; k < len(lines) && strings.Contains(lines[k], "\t"); k++ {
					block = append(block, splitCells(lines[k]))
				}
				if len(block) > 0 {
					tables = append(tables, block)
				}
				break
			}
		}
	}
	return tables
}

func splitCells(line string) []string {
	parts := strings.Split(line, "\t")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
