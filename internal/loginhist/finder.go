// Package loginhist locates, loads and aggregates LoginHistory exports into
// the three analysis tables the report embeds.
package loginhist

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "orgreport/internal/errors"
)

// FindLoginHistoryFile returns the newest LoginHistory export (.csv or
// .xlsx) under the search roots, judged by modification time.
func FindLoginHistoryFile(roots []string) (string, error) {
	var newest string
	var newestMod time.Time
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			lower := strings.ToLower(name)
			if !strings.Contains(lower, "loginhistory") {
				continue
			}
			if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".xlsx") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			if newest == "" || info.ModTime().After(newestMod) {
				newest = filepath.Join(root, name)
				newestMod = info.ModTime()
			}
		}
	}
	if newest == "" {
		return "", apperrors.NewNotFoundError("no LoginHistory export found under search roots", nil)
	}
	return newest, nil
}
