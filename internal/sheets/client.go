// Package sheets wraps the Google Sheets, Drive and Drive Labels APIs
// behind the small surface the report pipeline needs.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	drivelabels "google.golang.org/api/drivelabels/v2"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"orgreport/internal/config"
	apperrors "orgreport/internal/errors"
)

// Client bundles the authenticated API services for one run.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
	labels *drivelabels.Service
	logger *slog.Logger
}

var scopes = []string{
	drive.DriveScope,
	sheets.SpreadsheetsScope,
	drivelabels.DriveLabelsScope,
}

// NewClient builds a client from the OAuth credentials and cached token
// named in the configuration. The token must already exist; there is no
// interactive consent flow here.
func NewClient(ctx context.Context, cfg config.GoogleConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient, err := oauthClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sheetsSvc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, apperrors.NewNetworkError("create sheets service", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, apperrors.NewNetworkError("create drive service", err)
	}
	labelsSvc, err := drivelabels.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		// Labels are decorative; run without them.
		logger.Warn("drive labels service unavailable", slog.String("error", err.Error()))
		labelsSvc = nil
	}

	return &Client{
		sheets: sheetsSvc,
		drive:  driveSvc,
		labels: labelsSvc,
		logger: logger,
	}, nil
}

func oauthClient(ctx context.Context, cfg config.GoogleConfig) (*http.Client, error) {
	creds, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, apperrors.NewConfigError("read oauth credentials", err)
	}
	conf, err := google.ConfigFromJSON(creds, scopes...)
	if err != nil {
		return nil, apperrors.NewConfigError("parse oauth credentials", err)
	}

	tokenBytes, err := os.ReadFile(cfg.TokenPath)
	if err != nil {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("read oauth token %s (run the consent flow first)", cfg.TokenPath), err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenBytes, &token); err != nil {
		return nil, apperrors.NewConfigError("parse oauth token", err)
	}

	return conf.Client(ctx, &token), nil
}
