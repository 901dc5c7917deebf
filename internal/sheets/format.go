package sheets

import (
	"context"
	"log/slog"

	sheets "google.golang.org/api/sheets/v4"

	apperrors "orgreport/internal/errors"
	"orgreport/internal/sheetplan"
)

// ApplyBodyFormat applies the report body format (Arial 9, centered both
// ways) to the given rectangles, plus the bold white label variant where
// marked. Rectangles whose sheet cannot be located in sheetIDs are skipped
// with a warning; formatting is best effort throughout.
func (c *Client) ApplyBodyFormat(ctx context.Context, spreadsheetID string, sheetIDs map[string]int64, res sheetplan.Resolution, ranges []sheetplan.FormatRange) error {
	var reqs []*sheets.Request
	for _, fr := range ranges {
		sheetID, ok := lookupSheetID(sheetIDs, res, fr.Sheet)
		if !ok {
			c.logger.Warn("format target sheet not found", slog.String("sheet", fr.Sheet))
			continue
		}
		reqs = append(reqs, repeatCellRequest(sheetID, fr))
	}
	if len(reqs) == 0 {
		return nil
	}
	_, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return apperrors.NewUploadError("apply cell format", decodeAPIError(err))
	}
	return nil
}

// lookupSheetID resolves a logical sheet name to its numeric id, trying the
// resolved title, the logical name itself, and the ordinal-stripped form.
func lookupSheetID(sheetIDs map[string]int64, res sheetplan.Resolution, logical string) (int64, bool) {
	for _, title := range []string{res.Resolve(logical), logical, sheetplan.StripOrdinal(logical)} {
		if id, ok := sheetIDs[title]; ok {
			return id, true
		}
	}
	return 0, false
}

func repeatCellRequest(sheetID int64, fr sheetplan.FormatRange) *sheets.Request {
	format := &sheets.CellFormat{
		TextFormat: &sheets.TextFormat{
			FontFamily: "Arial",
			FontSize:   9,
		},
		HorizontalAlignment: "CENTER",
		VerticalAlignment:   "MIDDLE",
	}
	fields := "userEnteredFormat(textFormat,horizontalAlignment,verticalAlignment)"
	if fr.Bold {
		format.TextFormat.Bold = true
		format.TextFormat.ForegroundColor = &sheets.Color{Red: 1, Green: 1, Blue: 1}
	}
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    int64(fr.StartRow),
				EndRowIndex:      int64(fr.EndRow),
				StartColumnIndex: int64(fr.StartCol),
				EndColumnIndex:   int64(fr.EndCol),
			},
			Cell:   &sheets.CellData{UserEnteredFormat: format},
			Fields: fields,
		},
	}
}

// NumberFormatRange forces a plain integer number format over a rectangle.
// The login analysis columns carry counts that should never render as dates.
func (c *Client) NumberFormatRange(ctx context.Context, spreadsheetID string, sheetID int64, fr sheetplan.FormatRange) error {
	_, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(fr.StartRow),
					EndRowIndex:      int64(fr.EndRow),
					StartColumnIndex: int64(fr.StartCol),
					EndColumnIndex:   int64(fr.EndCol),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{Type: "NUMBER", Pattern: "0"},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return apperrors.NewUploadError("apply number format", decodeAPIError(err))
	}
	return nil
}

// MergeCells merges a rectangle into one cell, used to host chart images.
func (c *Client) MergeCells(ctx context.Context, spreadsheetID string, sheetID int64, fr sheetplan.FormatRange) error {
	_, err := c.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			MergeCells: &sheets.MergeCellsRequest{
				MergeType: "MERGE_ALL",
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(fr.StartRow),
					EndRowIndex:      int64(fr.EndRow),
					StartColumnIndex: int64(fr.StartCol),
					EndColumnIndex:   int64(fr.EndCol),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return apperrors.NewUploadError("merge cells", decodeAPIError(err))
	}
	return nil
}
