package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgreport/internal/scanstore"
)

func structuredRecord(t *testing.T, raw string) *scanstore.Record {
	t.Helper()
	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &obj))
	return &scanstore.Record{Structured: obj}
}

func TestStructuredExtractorGeneralInfo(t *testing.T) {
	modules := scanstore.ModuleSet{
		"3_general_info": structuredRecord(t, `{
			"companyInfo": {
				"accountName": "Acme Corp",
				"orgId": "00Dxx0000001",
				"location": "NA1",
				"edition": "Enterprise",
				"samlEnabled": true,
				"samlSettingNames": ["Okta", "ADFS"]
			}
		}`),
	}

	m := NewStructuredExtractor(modules).Extract()

	assert.Equal(t, [][]string{{"Acme Corp", "00Dxx0000001", "NA1", "Enterprise"}}, m.Rows(FieldOverview))
	assert.Equal(t, "Yes", m.Scalar(FieldSAMLEnabled))
	assert.Equal(t, "Okta, ADFS", m.Scalar(FieldSAMLSettingNames))
}

func TestStructuredExtractorOrganizationNameFallback(t *testing.T) {
	modules := scanstore.ModuleSet{
		"3_general_info": structuredRecord(t, `{
			"companyInfo": {"organizationName": "Acme", "orgId": "00D1", "instance": "EU5"}
		}`),
	}

	m := NewStructuredExtractor(modules).Extract()
	assert.Equal(t, [][]string{{"Acme", "00D1", "EU5", ""}}, m.Rows(FieldOverview))
	assert.Equal(t, "No", m.Scalar(FieldSAMLEnabled))
}

func TestStructuredExtractorProfiles(t *testing.T) {
	modules := scanstore.ModuleSet{
		"2_profiles": structuredRecord(t, `{
			"profiles": [
				{"profileName": "Admin", "userLicense": "Salesforce", "activeUserCount": 3,
				 "modifyAllData": true, "runReports": true, "exportReports": false},
				{"profileName": "Read Only", "userLicense": "Salesforce"}
			]
		}`),
	}

	m := NewStructuredExtractor(modules).Extract()
	assert.Equal(t, [][]string{
		{"Admin", "Salesforce", "3", "Yes", "Yes", "No"},
		{"Read Only", "Salesforce", "0", "No", "No", "No"},
	}, m.Rows(FieldProfiles))
}

func TestStructuredExtractorHealthCheck(t *testing.T) {
	modules := scanstore.ModuleSet{
		"4_health_check": structuredRecord(t, `{
			"percentage": 62,
			"highRisk": [
				{"status": "High", "setting": "Password Policy", "group": "Auth",
				 "yourValue": "Never expires", "standardValue": "90 days"}
			],
			"lowRisk": [
				{"status": "Low", "setting": "Clickjack", "group": "Session",
				 "yourValue": "Off", "standardValue": "On"}
			]
		}`),
	}

	m := NewStructuredExtractor(modules).Extract()
	assert.Equal(t, "62", m.Scalar(FieldHealthCheckScore))
	rows := m.Rows(FieldHealthCheckDetail)
	require.Len(t, rows, 3)
	assert.Equal(t, healthCheckHeader, rows[0])
	assert.Equal(t, []string{"High", "Password Policy", "Auth", "Never expires", "90 days"}, rows[1])
	assert.Equal(t, []string{"Low", "Clickjack", "Session", "Off", "On"}, rows[2])
}

func TestStructuredExtractorHealthCheckAbsentWithoutSignals(t *testing.T) {
	modules := scanstore.ModuleSet{
		"4_health_check": structuredRecord(t, `{"percentage": null, "highRisk": null}`),
	}
	m := NewStructuredExtractor(modules).Extract()
	assert.False(t, m.Has(FieldHealthCheckScore))
	assert.False(t, m.Has(FieldHealthCheckDetail))
}

func TestStructuredExtractorStorage(t *testing.T) {
	modules := scanstore.ModuleSet{
		"5_storage": structuredRecord(t, `{
			"overview": {"rows": [
				["Data Storage", "10 GB", "2 GB", "20%"],
				{"storageType": "File Storage", "limit": "20 GB", "used": "1 GB", "Percentage Used": "5%"},
				["Big Objects", "1M", "0", "0%"],
				["Extra", "x", "y", "z"]
			]},
			"dataStorageObjects": {"rows": [
				{"recordType": "Account", "recordCount": "1200", "storage": "1.1 GB", "percent": "55%"},
				["Contact", "800"]
			]}
		}`),
	}

	m := NewStructuredExtractor(modules).Extract()

	overview := m.Rows(FieldStorageOverview)
	require.Len(t, overview, 3, "overview region holds at most three rows")
	assert.Equal(t, []string{"Data Storage", "10 GB", "2 GB", "20%"}, overview[0])
	assert.Equal(t, []string{"File Storage", "20 GB", "1 GB", "5%"}, overview[1])

	usage := m.Rows(FieldStorageUsage)
	require.Len(t, usage, 2)
	assert.Equal(t, []string{"Account", "1200", "1.1 GB", "55%"}, usage[0])
	assert.Equal(t, []string{"Contact", "800", "0", "0"}, usage[1], "short list rows pad with zero")
}

func TestStructuredExtractorSandboxes(t *testing.T) {
	modules := scanstore.ModuleSet{
		"6_sandboxes": structuredRecord(t, `{
			"licenses": [
				{"type": "Developer", "used": 2, "allowance": 5},
				["Developer Pro", "0", "1"],
				["Partial", "0", "1"],
				["Full", "1", "1"],
				["Overflow", "9", "9"]
			],
			"rows": [
				{"name": "dev1", "type": "Developer", "status": "Completed"},
				["qa", "Full", "In Progress"]
			]
		}`),
	}

	m := NewStructuredExtractor(modules).Extract()

	licenses := m.Rows(FieldSandboxLicenses)
	require.Len(t, licenses, 4, "license region holds at most four rows")
	assert.Equal(t, []string{"Developer", "2", "5"}, licenses[0])

	boxes := m.Rows(FieldSandboxes)
	require.Len(t, boxes, 2)
	assert.Equal(t, []string{"dev1", "Developer", "Completed", "", "", "", "", "", ""}, boxes[0])
	assert.Equal(t, []string{"qa", "Full", "In Progress", "", "", "", "", "", ""}, boxes[1])
}

func TestStructuredExtractorAbsentModulesStayAbsent(t *testing.T) {
	m := NewStructuredExtractor(scanstore.ModuleSet{}).Extract()
	assert.Empty(t, m)
}
