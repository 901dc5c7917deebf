package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	drive "google.golang.org/api/drive/v3"
	drivelabels "google.golang.org/api/drivelabels/v2"

	apperrors "orgreport/internal/errors"
)

// CopyTemplate copies the template spreadsheet under a new title and returns
// the new file's id.
func (c *Client) CopyTemplate(ctx context.Context, templateID, title string) (string, error) {
	file, err := c.drive.Files.Copy(templateID, &drive.File{Name: title}).
		SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", apperrors.NewUploadError("copy template", decodeAPIError(err))
	}
	c.logger.Info("template copied",
		slog.String("title", title),
		slog.String("spreadsheet_id", file.Id))
	return file.Id, nil
}

// Share grants an email address access to a file. Writer access for the
// primary recipient, reader for everyone else.
func (c *Client) Share(ctx context.Context, fileID, email, role string, notify bool) error {
	_, err := c.drive.Permissions.Create(fileID, &drive.Permission{
		Type:         "user",
		Role:         role,
		EmailAddress: email,
	}).SendNotificationEmail(notify).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return apperrors.NewNetworkError(fmt.Sprintf("share with %s", email), decodeAPIError(err))
	}
	return nil
}

// externalChoiceNames are the display names the external-sharing selection
// choice has carried across label revisions.
var externalChoiceNames = []string{"External Allowed", "Externals Allowed"}

// labelChoice addresses one selection value inside a published label.
type labelChoice struct {
	labelID  string
	fieldID  string
	choiceID string
}

// findExternalChoice walks published labels for the selection choice that
// marks a file as cleared for external sharing. Text fields carry no
// choices and are skipped.
func findExternalChoice(labels []*drivelabels.GoogleAppsDriveLabelsV2Label) (labelChoice, bool) {
	for _, l := range labels {
		if l == nil || l.Id == "" {
			continue
		}
		for _, f := range l.Fields {
			if f == nil || f.Id == "" || f.SelectionOptions == nil {
				continue
			}
			for _, choice := range f.SelectionOptions.Choices {
				if choice == nil || choice.Id == "" || choice.Properties == nil {
					continue
				}
				name := strings.TrimSpace(choice.Properties.DisplayName)
				for _, want := range externalChoiceNames {
					if strings.EqualFold(name, want) {
						return labelChoice{labelID: l.Id, fieldID: f.Id, choiceID: choice.Id}, true
					}
				}
			}
		}
	}
	return labelChoice{}, false
}

// ApplyExternalLabel discovers the external-sharing classification in the
// org's published labels and sets the file's selection field to it. Missing
// label support is not an error; the report is complete without the marker.
func (c *Client) ApplyExternalLabel(ctx context.Context, fileID string) error {
	if c.labels == nil {
		return nil
	}
	// The full view is required for the per-field choices to come back.
	var sel labelChoice
	var found bool
	err := c.labels.Labels.List().
		PublishedOnly(true).View("LABEL_VIEW_FULL").PageSize(200).
		Pages(ctx, func(resp *drivelabels.GoogleAppsDriveLabelsV2ListLabelsResponse) error {
			if sel, found = findExternalChoice(resp.Labels); found {
				return errStopPaging
			}
			return nil
		})
	if err != nil && err != errStopPaging {
		return apperrors.NewNetworkError("list drive labels", decodeAPIError(err))
	}
	if !found {
		c.logger.Info("external sharing choice not published, skipping")
		return nil
	}
	_, err = c.drive.Files.ModifyLabels(fileID, &drive.ModifyLabelsRequest{
		// Label ids come back as "labels/<id>"; files.modifyLabels wants
		// the bare id.
		LabelModifications: []*drive.LabelModification{{
			LabelId: strings.TrimPrefix(sel.labelID, "labels/"),
			FieldModifications: []*drive.LabelFieldModification{{
				FieldId:            sel.fieldID,
				SetSelectionValues: []string{sel.choiceID},
			}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return apperrors.NewNetworkError("apply drive label", decodeAPIError(err))
	}
	c.logger.Info("external sharing label applied",
		slog.String("label_id", sel.labelID),
		slog.String("choice_id", sel.choiceID))
	return nil
}

// errStopPaging short-circuits label pagination once a match is found.
var errStopPaging = errors.New("stop paging")

// UploadPNG uploads an image to Drive and makes it readable, preferring a
// public anyone-link and falling back to a per-email grant when link sharing
// is disabled by policy. Returns the file id for IMAGE() formulas.
func (c *Client) UploadPNG(ctx context.Context, path, fallbackEmail string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.NewNotFoundError("open chart image", err)
	}
	defer f.Close()

	file, err := c.drive.Files.Create(&drive.File{
		Name:     filepath.Base(path),
		MimeType: "image/png",
	}).Media(f).Context(ctx).Do()
	if err != nil {
		return "", apperrors.NewUploadError("upload chart image", decodeAPIError(err))
	}

	_, err = c.drive.Permissions.Create(file.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		c.logger.Warn("public link sharing rejected, granting reader to fallback email",
			slog.String("file", filepath.Base(path)),
			slog.String("error", err.Error()))
		if fallbackEmail != "" {
			if shareErr := c.Share(ctx, file.Id, fallbackEmail, "reader", false); shareErr != nil {
				return "", shareErr
			}
		}
	}
	return file.Id, nil
}
