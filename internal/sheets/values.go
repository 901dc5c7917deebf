package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/api/googleapi"
	sheets "google.golang.org/api/sheets/v4"

	apperrors "orgreport/internal/errors"
	"orgreport/internal/sheetplan"
)

// SheetTitles returns the document's sheet titles in tab order.
func (c *Client) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	doc, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, apperrors.NewNetworkError("get spreadsheet", decodeAPIError(err))
	}
	titles := make([]string, 0, len(doc.Sheets))
	for _, s := range doc.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// SheetIDs returns the document's title -> sheetId index.
func (c *Client) SheetIDs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	doc, err := c.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties(title,sheetId)").Context(ctx).Do()
	if err != nil {
		return nil, apperrors.NewNetworkError("get spreadsheet", decodeAPIError(err))
	}
	ids := make(map[string]int64, len(doc.Sheets))
	for _, s := range doc.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids, nil
}

// BatchWriteValues dispatches one batch of write operations as a single
// values batchUpdate with USER_ENTERED input. A rejection fails the whole
// batch; the caller decides whether that aborts the run.
func (c *Client) BatchWriteValues(ctx context.Context, spreadsheetID string, ops []sheetplan.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(ops))
	for _, op := range ops {
		data = append(data, &sheets.ValueRange{
			Range:  op.Range,
			Values: op.Values,
		})
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}
	resp, err := c.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return apperrors.NewUploadError("batch value update", decodeAPIError(err))
	}
	c.logger.Debug("batch values written",
		slog.Int("ranges", len(ops)),
		slog.Int64("updated_cells", resp.TotalUpdatedCells))
	return nil
}

// WriteRange enters a single block of values at a range with USER_ENTERED
// input, so formulas are evaluated.
func (c *Client) WriteRange(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := c.sheets.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{
		Range:  rng,
		Values: values,
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return apperrors.NewUploadError("value update", decodeAPIError(err))
	}
	return nil
}

// decodeAPIError surfaces the response body of a googleapi error, which
// carries the range or cell the service rejected.
func decodeAPIError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Body != "" {
		return fmt.Errorf("%w: %s", err, gErr.Body)
	}
	return err
}
