// Package services orchestrates the report pipeline: load a scan folder,
// extract and merge the canonical mapping, plan the writes and drive them
// into a fresh copy of the report template.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"orgreport/internal/config"
	apperrors "orgreport/internal/errors"
	"orgreport/internal/loginhist"
	"orgreport/internal/mapping"
	"orgreport/internal/scanstore"
	"orgreport/internal/sheetplan"
	"orgreport/internal/sheets"
)

// SheetClient is the API surface the pipeline needs; satisfied by
// *sheets.Client and by test fakes.
type SheetClient interface {
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	SheetIDs(ctx context.Context, spreadsheetID string) (map[string]int64, error)
	BatchWriteValues(ctx context.Context, spreadsheetID string, ops []sheetplan.WriteOp) error
	ApplyBodyFormat(ctx context.Context, spreadsheetID string, sheetIDs map[string]int64, res sheetplan.Resolution, ranges []sheetplan.FormatRange) error
	CopyTemplate(ctx context.Context, templateID, title string) (string, error)
	Share(ctx context.Context, fileID, email, role string, notify bool) error
	ApplyExternalLabel(ctx context.Context, fileID string) error
	InsertChartImages(ctx context.Context, spreadsheetID, dir string, res sheetplan.Resolution, fallbackEmail string) error
}

var _ SheetClient = (*sheets.Client)(nil)

// Options selects what a single run does.
type Options struct {
	// Folder is the scan folder, either absolute or a bare name resolved
	// against the configured search roots.
	Folder string
	// CustomerName overrides the customer name derived from the folder name.
	CustomerName string
	// NoUpload stops after planning and logs the plan summary.
	NoUpload bool
	// NoFormat writes values only, skipping the body formatting pass.
	NoFormat bool
	// UpdateLoginsOnly rewrites only the login analysis regions of an
	// already-uploaded report, addressed by the folder's saved id.
	UpdateLoginsOnly bool
	// SharePrimary overrides the primary share recipient for this run;
	// ShareExtras overrides the stored extra recipients. Overrides win over
	// the preferences file, which wins over the configured default.
	SharePrimary string
	ShareExtras  []string
}

// RunResult summarizes a completed run.
type RunResult struct {
	SpreadsheetID string   `json:"spreadsheet_id,omitempty"`
	URL           string   `json:"url,omitempty"`
	CoreOps       int      `json:"core_ops"`
	ProfileOps    int      `json:"profile_ops"`
	Warnings      []string `json:"warnings,omitempty"`
}

// spreadsheetIDFile persists the uploaded document id inside the scan folder
// so later login-only updates can find it.
const spreadsheetIDFile = ".spreadsheet_id"

// ReportService runs the pipeline end to end.
type ReportService struct {
	cfg    *config.Config
	client SheetClient
	logger *slog.Logger
}

// NewReportService creates a report service with a specific logger.
func NewReportService(cfg *config.Config, client SheetClient, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{cfg: cfg, client: client, logger: logger}
}

// Run executes one report run per the options.
func (s *ReportService) Run(ctx context.Context, opts Options) (*RunResult, error) {
	folderPath, ok := s.cfg.ResolveFolder(opts.Folder)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("scan folder %q not found under search roots", opts.Folder), nil)
	}

	folder, err := scanstore.LoadFolder(folderPath, s.logger)
	if err != nil {
		return nil, err
	}
	s.logger.Info("scan folder loaded",
		slog.String("folder", folderPath),
		slog.String("customer", folder.CustomerName),
		slog.Int("modules", len(folder.Modules)))

	var merged mapping.Mapping
	if opts.UpdateLoginsOnly {
		merged = make(mapping.Mapping)
	} else {
		structured := mapping.NewStructuredExtractor(folder.Modules).Extract()
		heuristic := mapping.NewHeuristicExtractor(folder.Modules).Extract()
		merged = mapping.Merge(structured, heuristic)
	}

	attachLoginTables(merged, analysisDir(folderPath))

	result := &RunResult{}
	warn := func(msg string, err error) {
		s.logger.Warn(msg, slog.String("error", err.Error()))
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", msg, err))
	}

	if opts.NoUpload {
		plan := sheetplan.Partition(sheetplan.BuildWriteOps(merged, nil))
		result.CoreOps, result.ProfileOps = len(plan.Core), len(plan.Profiles)
		s.logger.Info("dry run, nothing uploaded",
			slog.Int("core_ops", result.CoreOps),
			slog.Int("profile_ops", result.ProfileOps))
		return result, nil
	}

	prefs := config.LoadSharePrefs(s.cfg.Google.SharePrefsPath)

	var spreadsheetID string
	if opts.UpdateLoginsOnly {
		spreadsheetID, err = readSpreadsheetID(folderPath)
		if err != nil {
			return nil, err
		}
	} else {
		customer := folder.CustomerName
		if opts.CustomerName != "" {
			customer = opts.CustomerName
		}
		title := reportTitle(customer, time.Now())
		spreadsheetID, err = s.client.CopyTemplate(ctx, s.cfg.Google.TemplateSpreadsheetID, title)
		if err != nil {
			return nil, err
		}
		if err := writeSpreadsheetID(folderPath, spreadsheetID); err != nil {
			warn("persist spreadsheet id", err)
		}
		if err := s.client.ApplyExternalLabel(ctx, spreadsheetID); err != nil {
			warn("apply external label", err)
		}
		primary, extras, extraNames := shareRecipients(opts, prefs, s.cfg.Google.ShareEmail)
		s.share(ctx, spreadsheetID, primary, extras, warn)
		primaryDisplay := prefs.PrimaryName
		if primaryDisplay == "" {
			primaryDisplay = primary
		}
		attachShareNames(merged, primaryDisplay, extras, extraNames)
	}

	titles, err := s.client.SheetTitles(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	res := sheetplan.NewResolution(titles)

	plan := sheetplan.Partition(sheetplan.BuildWriteOps(merged, res))
	result.SpreadsheetID = spreadsheetID
	result.URL = "https://docs.google.com/spreadsheets/d/" + spreadsheetID
	result.CoreOps, result.ProfileOps = len(plan.Core), len(plan.Profiles)

	// The core batch must land; a rejection here aborts the run.
	if err := s.client.BatchWriteValues(ctx, spreadsheetID, plan.Core); err != nil {
		return nil, apperrors.NewUploadError("core batch rejected", err)
	}
	// The profile batch is isolated: its failure degrades the report but
	// never blocks the rest.
	if err := s.client.BatchWriteValues(ctx, spreadsheetID, plan.Profiles); err != nil {
		warn("profile batch rejected", err)
	}

	if opts.NoFormat {
		s.logger.Info("formatting skipped")
	} else if sheetIDs, idErr := s.client.SheetIDs(ctx, spreadsheetID); idErr != nil {
		warn("fetch sheet ids for formatting", idErr)
	} else if err := s.client.ApplyBodyFormat(ctx, spreadsheetID, sheetIDs, res, sheetplan.BuildFormatRanges(merged)); err != nil {
		warn("apply formatting", err)
	}

	if err := s.client.InsertChartImages(ctx, spreadsheetID, analysisDir(folderPath), res, s.cfg.Google.ShareEmail); err != nil {
		warn("insert chart images", err)
	}

	s.logger.Info("report uploaded",
		slog.String("spreadsheet_id", spreadsheetID),
		slog.String("url", result.URL),
		slog.Int("core_ops", result.CoreOps),
		slog.Int("profile_ops", result.ProfileOps),
		slog.Int("warnings", len(result.Warnings)))
	return result, nil
}

// RunLoginAnalysis finds the newest LoginHistory export, aggregates it and
// writes the analysis CSVs into the scan folder.
func (s *ReportService) RunLoginAnalysis(ctx context.Context, folder string) error {
	folderPath, ok := s.cfg.ResolveFolder(folder)
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("scan folder %q not found under search roots", folder), nil)
	}
	exportPath, err := loginhist.FindLoginHistoryFile(s.cfg.Search.Roots)
	if err != nil {
		return err
	}
	s.logger.Info("login history export found", slog.String("path", exportPath))

	header, records, err := loginhist.Load(exportPath)
	if err != nil {
		return err
	}
	analysis, err := loginhist.Analyze(header, records)
	if err != nil {
		return err
	}
	dir := analysisDir(folderPath)
	if err := analysis.WriteCSVs(dir); err != nil {
		return err
	}
	s.logger.Info("login analysis written",
		slog.String("dir", dir),
		slog.Int("applications", len(analysis.ApplicationLogins)-1),
		slog.Int("countries", len(analysis.InternalCountryLogins)-1),
		slog.Int("failure_reasons", len(analysis.FailureAnalysis)-1))
	return nil
}

// shareRecipients resolves the effective recipients for a run: per-run
// overrides win over the stored preferences, which win over the configured
// default email. Returned names align with extras by position.
func shareRecipients(opts Options, prefs config.SharePrefs, defaultEmail string) (primary string, extras, names []string) {
	primary = strings.TrimSpace(opts.SharePrimary)
	if primary == "" {
		primary = prefs.Primary
	}
	if primary == "" {
		primary = defaultEmail
	}
	for _, e := range opts.ShareExtras {
		if e = strings.TrimSpace(e); e != "" {
			extras = append(extras, e)
		}
	}
	if len(extras) > 0 {
		return primary, extras, nil
	}
	return primary, prefs.Extra, prefs.ExtraNames
}

func (s *ReportService) share(ctx context.Context, spreadsheetID, primary string, extras []string, warn func(string, error)) {
	if primary != "" {
		if err := s.client.Share(ctx, spreadsheetID, primary, "writer", true); err != nil {
			warn("share with primary recipient", err)
		}
	}
	// Extra recipients are editors too, just without the notification email.
	for _, email := range extras {
		if email == "" {
			continue
		}
		if err := s.client.Share(ctx, spreadsheetID, email, "writer", false); err != nil {
			warn("share with "+email, err)
		}
	}
}

// reportTitle names the copied template: "<Customer> Security and Storage
// Report - <Month> <Year>".
func reportTitle(customer string, now time.Time) string {
	return fmt.Sprintf("%s Security and Storage Report - %s %d",
		customer, now.Month().String(), now.Year())
}

func analysisDir(folderPath string) string {
	return filepath.Join(folderPath, "login_analysis")
}

// attachLoginTables adds the analysis tables to the mapping when the CSVs
// exist and carry data rows.
func attachLoginTables(m mapping.Mapping, dir string) {
	tables := loginhist.ReadTables(dir)
	if len(tables.ApplicationLogins) > 0 {
		m[mapping.FieldApplicationLogins] = mapping.TableValue(tables.ApplicationLogins)
	}
	if len(tables.InternalCountryLogins) > 0 {
		m[mapping.FieldInternalCountryLogins] = mapping.TableValue(tables.InternalCountryLogins)
	}
	if len(tables.FailureAnalysis) > 0 {
		m[mapping.FieldFailureAnalysis] = mapping.TableValue(tables.FailureAnalysis)
	}
}

// attachShareNames fills the overview share-recipient cells with the display
// names of the resolved recipients, falling back to the addresses themselves.
func attachShareNames(m mapping.Mapping, primaryDisplay string, extras, names []string) {
	if primaryDisplay != "" {
		m[mapping.FieldOverviewPrimaryShare] = mapping.ScalarValue(primaryDisplay)
	}

	var display []string
	for i, email := range extras {
		name := strings.TrimSpace(email)
		if i < len(names) && strings.TrimSpace(names[i]) != "" {
			name = strings.TrimSpace(names[i])
		}
		if name != "" {
			display = append(display, name)
		}
	}
	if len(display) > 0 {
		m[mapping.FieldOverviewExtraShare] = mapping.ScalarValue(strings.Join(display, ", "))
	}
}

func readSpreadsheetID(folderPath string) (string, error) {
	b, err := os.ReadFile(filepath.Join(folderPath, spreadsheetIDFile))
	if err != nil {
		return "", apperrors.NewNotFoundError("no saved spreadsheet id, upload the report first", err)
	}
	id := strings.TrimSpace(string(b))
	if id == "" {
		return "", apperrors.NewNotFoundError("saved spreadsheet id is empty", nil)
	}
	return id, nil
}

func writeSpreadsheetID(folderPath, id string) error {
	return os.WriteFile(filepath.Join(folderPath, spreadsheetIDFile), []byte(id+"\n"), 0o644)
}
