package sheetplan

import "strings"

// ColToLetter converts a 1-indexed column number to its A1 letter form
// using bijective base-26: 1 -> A, 26 -> Z, 27 -> AA.
func ColToLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	if len(b) == 0 {
		return "A"
	}
	return string(b)
}

// QuoteSheet quotes a sheet name for A1 notation when it contains a space,
// a period or a quote; embedded quotes are doubled. Already-safe names pass
// through unchanged.
func QuoteSheet(name string) string {
	if strings.ContainsAny(name, " .'") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}
