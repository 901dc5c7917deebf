// uploader runs the report pipeline once from the command line: load a scan
// folder, build the write plan and push it into a fresh copy of the report
// template.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"orgreport/internal/config"
	"orgreport/internal/infrastructure"
	"orgreport/internal/services"
	"orgreport/internal/sheets"
)

func main() {
	folder := flag.String("folder", "", "scan folder, absolute or a name under the search roots")
	customerName := flag.String("customer-name", "", "override the customer name derived from the folder name")
	noUpload := flag.Bool("no-upload", false, "plan only, print the batch summary and exit")
	noFormat := flag.Bool("no-format", false, "write values only, skip the cell formatting pass")
	updateLogins := flag.Bool("update-logins", false, "rewrite only the login analysis regions of the saved report")
	runAnalysis := flag.Bool("login-analysis", false, "aggregate the newest LoginHistory export before uploading")
	sharePrimary := flag.String("share-report-with", "", "share the report with this email as the primary editor, overriding the stored preferences")
	shareExtras := flag.String("share-with", "", "comma-separated extra emails to share the report with as editors")
	flag.Parse()

	if *folder == "" {
		fmt.Fprintln(os.Stderr, "usage: uploader -folder <scan folder> [-customer-name <name>] [-no-upload] [-no-format] [-update-logins] [-login-analysis] [-share-report-with <email>] [-share-with <emails>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client services.SheetClient
	if !*noUpload {
		client, err = sheets.NewClient(ctx, cfg.Google, logger)
		if err != nil {
			logger.Error("Failed to create API client", "error", err)
			os.Exit(1)
		}
	}

	svc := services.NewReportService(cfg, client, logger)

	if *runAnalysis {
		if err := svc.RunLoginAnalysis(ctx, *folder); err != nil {
			logger.Error("Login analysis failed", "error", err)
			os.Exit(1)
		}
	}

	var extras []string
	for _, e := range strings.Split(*shareExtras, ",") {
		if e = strings.TrimSpace(e); e != "" {
			extras = append(extras, e)
		}
	}

	result, err := svc.Run(ctx, services.Options{
		Folder:           *folder,
		CustomerName:     *customerName,
		NoUpload:         *noUpload,
		NoFormat:         *noFormat,
		UpdateLoginsOnly: *updateLogins,
		SharePrimary:     *sharePrimary,
		ShareExtras:      extras,
	})
	if err != nil {
		logger.Error("Upload failed", "error", err)
		os.Exit(1)
	}

	if result.URL != "" {
		fmt.Println(result.URL)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
}
