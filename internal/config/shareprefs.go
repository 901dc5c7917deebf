package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SharePrefs holds the stored share recipients for generated reports.
// Primary/Extra are email addresses; the Name fields are display names
// written into the report's Overview sheet.
type SharePrefs struct {
	Primary     string   `json:"primary,omitempty"`
	PrimaryName string   `json:"primaryName,omitempty"`
	Extra       []string `json:"extra,omitempty"`
	ExtraNames  []string `json:"extraNames,omitempty"`
}

// LoadSharePrefs reads share preferences from path. A missing or malformed
// file yields empty preferences, not an error: sharing falls back to the
// configured default email.
func LoadSharePrefs(path string) SharePrefs {
	var prefs SharePrefs
	if path == "" {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	var raw SharePrefs
	if err := json.Unmarshal(data, &raw); err != nil {
		return prefs
	}
	prefs.Primary = strings.TrimSpace(raw.Primary)
	prefs.PrimaryName = strings.TrimSpace(raw.PrimaryName)
	// Names pair with extras by position, so keep each pair together while
	// dropping blank addresses.
	for i, e := range raw.Extra {
		if e = strings.TrimSpace(e); e == "" {
			continue
		}
		var name string
		if i < len(raw.ExtraNames) {
			name = strings.TrimSpace(raw.ExtraNames[i])
		}
		prefs.Extra = append(prefs.Extra, e)
		prefs.ExtraNames = append(prefs.ExtraNames, name)
	}
	return prefs
}

// SaveSharePrefs writes share preferences to path as JSON.
func SaveSharePrefs(path string, prefs SharePrefs) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode share prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write share prefs: %w", err)
	}
	return nil
}
