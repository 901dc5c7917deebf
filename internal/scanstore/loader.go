// Package scanstore loads the per-module output folder produced by the
// org scan extension. Each module arrives as <id>.json (structured) or
// <id>.txt (tab-separated text); both shapes are normalized into Record.
package scanstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ModuleIDs is the fixed registry of module file stems the scanner produces.
var ModuleIDs = []string{
	"1_licenses",
	"2_profiles",
	"3_general_info",
	"4_health_check",
	"5_storage",
	"6_sandboxes",
	"7_sharing_settings",
	"8_login_history",
	"sensitive-data",
}

// Record is one parsed module file. Exactly one variant is populated:
// Structured for JSON input, Tables/RawText for tab-separated text input.
// Records are immutable after loading.
type Record struct {
	Structured map[string]any
	Tables     [][][]string
	RawText    string
}

// IsStructured reports whether the record came from a JSON module file.
func (r *Record) IsStructured() bool {
	return r != nil && r.Structured != nil
}

// ModuleSet maps module identifiers to their loaded records.
// Identifiers with no file present are simply absent.
type ModuleSet map[string]*Record

// Get returns the record for id, or nil when the module was not captured.
func (s ModuleSet) Get(id string) *Record {
	return s[id]
}

// Folder is a fully loaded scan output folder.
type Folder struct {
	Path         string
	CustomerName string
	Modules      ModuleSet
}

var folderNameRe = regexp.MustCompile(`^(.+)_\d{4}-\d{2}-\d{2}$`)

// LoadFolder reads a scan output folder (e.g. CustomerName_2026-02-19).
// Missing module files are skipped silently; a JSON parse failure falls back
// to the .txt variant when present.
func LoadFolder(path string, logger *slog.Logger) (*Folder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("scan output path is not a directory: %s", abs)
	}

	modules := make(ModuleSet)
	for _, id := range ModuleIDs {
		rec, ok := loadModule(abs, id, logger)
		if ok {
			modules[id] = rec
		}
	}

	return &Folder{
		Path:         abs,
		CustomerName: customerNameFromFolder(filepath.Base(abs)),
		Modules:      modules,
	}, nil
}

func loadModule(dir, id string, logger *slog.Logger) (*Record, bool) {
	jsonPath := filepath.Join(dir, id+".json")
	txtPath := filepath.Join(dir, id+".txt")

	if data, err := os.ReadFile(jsonPath); err == nil {
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err == nil {
			return &Record{Structured: obj}, true
		}
		logger.Warn("module JSON unparseable, falling back to text",
			slog.String("module", id))
		return loadTextModule(txtPath)
	}
	return loadTextModule(txtPath)
}

func loadTextModule(path string) (*Record, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	text := decodeUTF8Lossy(data)
	return &Record{
		Tables:  ExtractTables(text),
		RawText: text,
	}, true
}

// decodeUTF8Lossy replaces invalid UTF-8 sequences with the replacement rune.
func decodeUTF8Lossy(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

func customerNameFromFolder(name string) string {
	customer := name
	if m := folderNameRe.FindStringSubmatch(name); m != nil {
		customer = strings.TrimSpace(m[1])
	}
	if customer == "" || customer == "_" {
		return "Unknown"
	}
	return customer
}
