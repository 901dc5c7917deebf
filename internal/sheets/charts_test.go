package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"orgreport/internal/sheetplan"
)

// chartBackend fakes the Sheets and Drive endpoints the chart flow touches,
// recording every batchUpdate body for inspection.
type chartBackend struct {
	mu          sync.Mutex
	batchBodies []string
	valuePaths  []string
	uploads     int
}

func (b *chartBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v4/spreadsheets/sheet-1":
		fmt.Fprint(w, `{"sheets":[{"properties":{"title":"1. Application Logins","sheetId":77}}]}`)
	case r.URL.Path == "/v4/spreadsheets/sheet-1:batchUpdate":
		b.batchBodies = append(b.batchBodies, string(body))
		fmt.Fprint(w, `{}`)
	case strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-1/values/"):
		b.valuePaths = append(b.valuePaths, r.URL.Path)
		fmt.Fprint(w, `{}`)
	case r.URL.Path == "/upload/drive/v3/files":
		b.uploads++
		fmt.Fprint(w, `{"id":"img-1"}`)
	case r.URL.Path == "/files/img-1/permissions":
		fmt.Fprint(w, `{}`)
	default:
		http.Error(w, `{"error":{"message":"unexpected request"}}`, http.StatusNotFound)
	}
}

func newBackendClient(t *testing.T, backend *chartBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sheetsSvc, err := sheets.NewService(ctx,
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	driveSvc, err := drive.NewService(ctx,
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	return &Client{
		sheets: sheetsSvc,
		drive:  driveSvc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestInsertChartImagesFormatsMergedRegion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "application_logins_chart.png"), []byte("png"), 0o644))

	backend := &chartBackend{}
	c := newBackendClient(t, backend)
	res := sheetplan.NewResolution([]string{"1. Application Logins"})

	require.NoError(t, c.InsertChartImages(context.Background(), "sheet-1", dir, res, ""))

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 1, backend.uploads, "one image on disk, one upload")
	require.Len(t, backend.valuePaths, 1, "the IMAGE() formula lands once")

	var merged, formatted bool
	for _, body := range backend.batchBodies {
		if strings.Contains(body, `"mergeCells"`) {
			merged = true
		}
		if strings.Contains(body, `"numberFormat"`) && strings.Contains(body, `"pattern":"0"`) {
			formatted = true
			// The plain number format covers the merged B4:K29 block.
			assert.Contains(t, body, `"sheetId":77`)
			assert.Contains(t, body, `"startRowIndex":3`)
			assert.Contains(t, body, `"endRowIndex":29`)
			assert.Contains(t, body, `"startColumnIndex":1`)
			assert.Contains(t, body, `"endColumnIndex":11`)
			assert.Contains(t, body, `"userEnteredFormat.numberFormat"`)
		}
	}
	assert.True(t, merged, "chart region merged")
	assert.True(t, formatted, "merged region forced to a plain number format")
}

func TestInsertChartImagesSkipsMissingFiles(t *testing.T) {
	backend := &chartBackend{}
	c := newBackendClient(t, backend)
	res := sheetplan.NewResolution([]string{"1. Application Logins"})

	require.NoError(t, c.InsertChartImages(context.Background(), "sheet-1", t.TempDir(), res, ""))

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Zero(t, backend.uploads)
	assert.Empty(t, backend.batchBodies)
	assert.Empty(t, backend.valuePaths)
}
