package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"orgreport/internal/sheetplan"
)

// chartSlot pairs a login sheet with the chart image the analysis step
// renders for it.
type chartSlot struct {
	Sheet string // logical sheet name
	File  string // image file name under the analysis directory
}

var chartSlots = []chartSlot{
	{Sheet: sheetplan.SheetApplicationLogins, File: "application_logins_chart.png"},
	{Sheet: sheetplan.SheetInternalLogins, File: "internal_country_logins_barchart.png"},
	{Sheet: sheetplan.SheetLoginFailures, File: "failure_analysis_chart.png"},
}

// chartRegion is the merged rectangle that hosts each chart image: B4:K29.
var chartRegion = sheetplan.FormatRange{StartRow: 3, EndRow: 29, StartCol: 1, EndCol: 11}

// InsertChartImages uploads the rendered chart PNGs concurrently and embeds
// each into its login sheet through an IMAGE() formula over a merged region.
// Sheets whose image is missing on disk are skipped; everything here is best
// effort and a failed slot does not stop the others.
func (c *Client) InsertChartImages(ctx context.Context, spreadsheetID, dir string, res sheetplan.Resolution, fallbackEmail string) error {
	sheetIDs, err := c.SheetIDs(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	fileIDs := make(map[string]string, len(chartSlots))

	g, gctx := errgroup.WithContext(ctx)
	for _, slot := range chartSlots {
		path := filepath.Join(dir, slot.File)
		if _, statErr := os.Stat(path); statErr != nil {
			c.logger.Debug("chart image absent", slog.String("file", slot.File))
			continue
		}
		g.Go(func() error {
			id, upErr := c.UploadPNG(gctx, path, fallbackEmail)
			if upErr != nil {
				return upErr
			}
			mu.Lock()
			fileIDs[slot.Sheet] = id
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, slot := range chartSlots {
		fileID, ok := fileIDs[slot.Sheet]
		if !ok {
			continue
		}
		sheetID, ok := lookupSheetID(sheetIDs, res, slot.Sheet)
		if !ok {
			c.logger.Warn("chart target sheet not found", slog.String("sheet", slot.Sheet))
			continue
		}
		if err := c.MergeCells(ctx, spreadsheetID, sheetID, chartRegion); err != nil {
			c.logger.Warn("merge chart region failed",
				slog.String("sheet", slot.Sheet), slog.String("error", err.Error()))
		}
		// A plain number format keeps the region from rendering the IMAGE()
		// result cell as a date.
		if err := c.NumberFormatRange(ctx, spreadsheetID, sheetID, chartRegion); err != nil {
			c.logger.Warn("number format chart region failed",
				slog.String("sheet", slot.Sheet), slog.String("error", err.Error()))
		}
		formula := fmt.Sprintf(`=IMAGE("https://drive.google.com/uc?id=%s")`, fileID)
		rng := sheetplan.QuoteSheet(res.Resolve(slot.Sheet)) + "!B4"
		if err := c.WriteRange(ctx, spreadsheetID, rng, [][]any{{formula}}); err != nil {
			c.logger.Warn("write chart formula failed",
				slog.String("sheet", slot.Sheet), slog.String("error", err.Error()))
		}
	}
	return nil
}
