package sheetplan

import "strings"

// Logical sheet names used throughout the template layout. They are resolved
// against a destination document's actual titles once per run.
const (
	SheetOverview          = "Overview"
	SheetProfiles          = "2. Profiles"
	SheetHealthCheck       = "3. Health Check"
	SheetHealthCheckDetail = "Health Check 2"
	SheetSharingSettings   = "4. Sharing Settings"
	SheetStorageUsage      = "7. Storage Usage"
	SheetSandboxes         = "8. Sandboxes"
	SheetApplicationLogins = "1. Application Logins"
	SheetInternalLogins    = "1. Internal User Logins"
	SheetLoginFailures     = "1. Login Failures"
)

// Resolution maps logical sheet names to the actual titles of a concrete
// destination document. It is built once per run and read-only afterwards.
type Resolution map[string]string

// Resolve returns the actual title for a logical name, falling back to the
// logical name itself when the document carries no match.
func (r Resolution) Resolve(name string) string {
	if r != nil {
		if actual, ok := r[name]; ok {
			return actual
		}
	}
	return name
}

// NewResolution matches a document's sheet titles against the logical names:
// exact titles first, then keyword containment (e.g. any title containing
// "sandbox" becomes the sandbox sheet), with unmatched titles passing
// through under their own name.
func NewResolution(titles []string) Resolution {
	res := make(Resolution)
	for _, t := range titles {
		strip := strings.TrimSpace(t)
		lower := strings.ToLower(strip)
		switch {
		case lower == "overview":
			res[SheetOverview] = t
		case strip == SheetProfiles:
			res[SheetProfiles] = t
		case strings.Contains(lower, "profiles"):
			if _, ok := res[SheetProfiles]; !ok {
				res[SheetProfiles] = t
			}
		case strip == SheetHealthCheck:
			res[SheetHealthCheck] = t
		case strings.Contains(lower, "health check") && !strings.Contains(strip, "2"):
			if _, ok := res[SheetHealthCheck]; !ok {
				res[SheetHealthCheck] = t
			}
		case strip == SheetHealthCheckDetail:
			res[SheetHealthCheckDetail] = t
		case strings.Contains(lower, "health check") && strings.Contains(strip, "2"):
			if _, ok := res[SheetHealthCheckDetail]; !ok {
				res[SheetHealthCheckDetail] = t
			}
		case strings.Contains(lower, "storage"):
			res[SheetStorageUsage] = t
		case strings.Contains(lower, "sandbox"):
			res[SheetSandboxes] = t
		case strings.Contains(lower, "sharing"):
			res[SheetSharingSettings] = t
		case strings.Contains(lower, "application") && strings.Contains(lower, "login"):
			res[SheetApplicationLogins] = t
		case strings.Contains(lower, "internal") && strings.Contains(lower, "login"):
			res[SheetInternalLogins] = t
		case strings.Contains(lower, "failure"):
			res[SheetLoginFailures] = t
		}
	}
	// Unmatched titles address themselves.
	matched := make(map[string]bool, len(res))
	for _, actual := range res {
		matched[actual] = true
	}
	for _, t := range titles {
		if t != "" && !matched[t] {
			res[t] = t
		}
	}
	return res
}

// StripOrdinal removes the leading "N. " template numbering from a logical
// sheet name ("8. Sandboxes" -> "Sandboxes"). Used as a fallback when
// resolving sheet-internal identifiers for formatting.
func StripOrdinal(name string) string {
	s := strings.TrimSpace(name)
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			continue
		}
		if s[i] == '.' && i > 0 {
			return strings.TrimSpace(s[i+1:])
		}
		break
	}
	return s
}
