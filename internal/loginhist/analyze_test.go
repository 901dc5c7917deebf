package loginhist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loginHeader = []string{"Username", "Login Time", "Application", "Login Type", "Status", "Country"}

func rec(app, status, country string) []string {
	return []string{"user@example.com", "2026-02-19 09:00", app, "Application", status, country}
}

func TestAnalyze(t *testing.T) {
	records := [][]string{
		rec("Browser", "Success", "Germany"),
		rec("Browser", "Success", "Germany"),
		rec("Browser", "Invalid Password", "Germany"),
		rec("Salesforce for iOS", "Success", "Austria"),
		rec("Data Loader", "Success", "Germany"),
		rec("Data Loader", "Failed: API disabled", "Germany"),
	}

	a, err := Analyze(loginHeader, records)
	require.NoError(t, err)

	// Application table sorts by total descending.
	assert.Equal(t, [][]string{
		{"Application", "Total", "Success", "Failed"},
		{"Browser", "3", "2", "1"},
		{"Data Loader", "2", "1", "1"},
		{"Salesforce for iOS", "1", "1", "0"},
	}, a.ApplicationLogins)

	// Country table only counts interactive applications.
	assert.Equal(t, [][]string{
		{"Country", "Success", "Failed", "Total"},
		{"Germany", "2", "1", "3"},
		{"Austria", "1", "0", "1"},
	}, a.InternalCountryLogins)

	assert.Equal(t, [][]string{
		{"Reason", "Count"},
		{"Failed: API disabled", "1"},
		{"Invalid Password", "1"},
	}, a.FailureAnalysis)
}

func TestAnalyzeMissingColumns(t *testing.T) {
	_, err := Analyze([]string{"Username", "Login Time"}, nil)
	assert.Error(t, err)
}

func TestAnalyzeWithoutCountryColumn(t *testing.T) {
	header := []string{"Application", "Status"}
	a, err := Analyze(header, [][]string{{"Browser", "Success"}})
	require.NoError(t, err)
	assert.Len(t, a.ApplicationLogins, 2)
	assert.Len(t, a.InternalCountryLogins, 1, "header only")
}

func TestAnalyzeBlankCountryBucketsAsUnknown(t *testing.T) {
	a, err := Analyze(loginHeader, [][]string{rec("Browser", "Success", "")})
	require.NoError(t, err)
	require.Len(t, a.InternalCountryLogins, 2)
	assert.Equal(t, "Unknown", a.InternalCountryLogins[1][0])
}

func TestWriteAndReadTables(t *testing.T) {
	a, err := Analyze(loginHeader, [][]string{
		rec("Browser", "Success", "Germany"),
		rec("Browser", "Invalid Password", "Germany"),
	})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "login_analysis")
	require.NoError(t, a.WriteCSVs(dir))

	tables := ReadTables(dir)
	assert.Equal(t, [][]string{{"Browser", "2", "1", "1"}}, tables.ApplicationLogins)
	assert.Equal(t, [][]string{{"Germany", "1", "1", "2"}}, tables.InternalCountryLogins)
	assert.Equal(t, [][]string{{"Invalid Password", "1"}}, tables.FailureAnalysis)
}

func TestReadTablesMissingDir(t *testing.T) {
	tables := ReadTables(filepath.Join(t.TempDir(), "absent"))
	assert.Nil(t, tables.ApplicationLogins)
	assert.Nil(t, tables.InternalCountryLogins)
	assert.Nil(t, tables.FailureAnalysis)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "LoginHistory.csv")
	content := "Application,Status,Country\nBrowser,Success,Germany\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	header, records, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Application", "Status", "Country"}, header)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Browser", "Success", "Germany"}, records[0])
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, _, err := Load("LoginHistory.pdf")
	assert.Error(t, err)
}

func TestFindLoginHistoryFile(t *testing.T) {
	root := t.TempDir()
	older := filepath.Join(root, "LoginHistory_old.csv")
	newer := filepath.Join(root, "LoginHistory.xlsx")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("x"), 0o644))
	// Make the csv clearly older.
	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	got, err := FindLoginHistoryFile([]string{root, filepath.Join(root, "missing")})
	require.NoError(t, err)
	assert.Equal(t, newer, got)
}

func TestFindLoginHistoryFileNone(t *testing.T) {
	_, err := FindLoginHistoryFile([]string{t.TempDir()})
	assert.Error(t, err)
}
