package sheetplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewResolutionExactTitles(t *testing.T) {
	titles := []string{
		"Overview", "2. Profiles", "3. Health Check", "Health Check 2",
		"4. Sharing Settings", "7. Storage Usage", "8. Sandboxes",
	}
	res := NewResolution(titles)
	for _, logical := range titles {
		assert.Equal(t, logical, res.Resolve(logical))
	}
}

func TestNewResolutionRenamedTitles(t *testing.T) {
	res := NewResolution([]string{
		"overview",
		"Profiles and Permissions",
		"Health Check",
		"Health Check 2 (detail)",
		"Storage",
		"Sandboxes!",
		"Sharing Defaults",
		"1. Application Logins",
		"Internal Logins",
		"Login Failure Breakdown",
	})

	assert.Equal(t, "overview", res.Resolve(SheetOverview))
	assert.Equal(t, "Profiles and Permissions", res.Resolve(SheetProfiles))
	assert.Equal(t, "Health Check", res.Resolve(SheetHealthCheck))
	assert.Equal(t, "Health Check 2 (detail)", res.Resolve(SheetHealthCheckDetail))
	assert.Equal(t, "Storage", res.Resolve(SheetStorageUsage))
	assert.Equal(t, "Sandboxes!", res.Resolve(SheetSandboxes))
	assert.Equal(t, "Sharing Defaults", res.Resolve(SheetSharingSettings))
	assert.Equal(t, "1. Application Logins", res.Resolve(SheetApplicationLogins))
	assert.Equal(t, "Internal Logins", res.Resolve(SheetInternalLogins))
	assert.Equal(t, "Login Failure Breakdown", res.Resolve(SheetLoginFailures))
}

func TestResolveFallsBackToLogicalName(t *testing.T) {
	res := NewResolution([]string{"Something Else"})
	assert.Equal(t, SheetOverview, res.Resolve(SheetOverview))

	var nilRes Resolution
	assert.Equal(t, SheetProfiles, nilRes.Resolve(SheetProfiles))
}

func TestNewResolutionUnmatchedTitlesPassThrough(t *testing.T) {
	res := NewResolution([]string{"Notes"})
	assert.Equal(t, "Notes", res.Resolve("Notes"))
}
