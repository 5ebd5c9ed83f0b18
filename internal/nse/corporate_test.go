package nse

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsecli/internal/shared/testutil"
)

const sampleCorporateActions = `[
  {"symbol": "RELIANCE", "series": "EQ", "subject": "Dividend - Rs 9 Per Share", "exDate": "21-Aug-2023", "recDate": "22-Aug-2023"},
  {"symbol": "RELIANCE", "series": "EQ", "subject": "Annual General Meeting", "exDate": "25-Aug-2023"}
]`

func corporateActionsServer(t *testing.T, payload string) (*httptest.Server, *http.Request) {
	t.Helper()
	captured := &http.Request{}
	mux := http.NewServeMux()
	mux.HandleFunc("/companies-listing/corporate-filings-actions", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/api/corporate-actions", func(w http.ResponseWriter, r *http.Request) {
		*captured = *r
		w.Write([]byte(payload))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, captured
}

func TestDownloadCorporateActions(t *testing.T) {
	ts, captured := corporateActionsServer(t, sampleCorporateActions)
	c, dir := newTestClient(t, ts)

	table, err := c.DownloadCorporateActions(context.Background(), "reliance")
	require.NoError(t, err)

	// Symbol is upper-cased for the query and the artifact names.
	assert.Equal(t, "RELIANCE", captured.URL.Query().Get("index"))

	assert.Equal(t, []string{"symbol", "series", "subject", "exDate", "recDate"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Dividend - Rs 9 Per Share", table.Rows[0][2])
	assert.Nil(t, table.Rows[1][4], "record without recDate leaves the cell empty")

	raws, err := filepath.Glob(filepath.Join(dir, "corporate_actions_RELIANCE_*.json"))
	require.NoError(t, err)
	assert.Len(t, raws, 1)

	books, err := filepath.Glob(filepath.Join(dir, "corporate_actions_RELIANCE_*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestDownloadCorporateActionsEmptyListing(t *testing.T) {
	ts, _ := corporateActionsServer(t, `[]`)

	logger, captured := testutil.NewTestLogger(t)
	dir := t.TempDir()
	c, err := New(dir, logger,
		WithBaseURL(ts.URL),
		WithArchiveURL(ts.URL),
		WithTimeout(5*time.Second),
	)
	require.NoError(t, err)

	_, err = c.DownloadCorporateActions(context.Background(), "INFY")
	require.Error(t, err)
	assert.Equal(t, KindEmpty, KindFor(err))
	assert.Empty(t, dirEntries(t, dir), "empty listing writes nothing")

	// Empty listings are routine, so they log as warnings.
	testutil.AssertLogged(t, captured, slog.LevelWarn, "Download returned no data")
	assert.Empty(t, captured.RecordsAt(slog.LevelError))
}

func TestDownloadCorporateActionsPayloadFailure(t *testing.T) {
	ts, _ := corporateActionsServer(t, `{"not": "an array"}`)
	c, dir := newTestClient(t, ts)

	_, err := c.DownloadCorporateActions(context.Background(), "INFY")
	require.Error(t, err)
	assert.Equal(t, KindPayload, KindFor(err))
	assert.Empty(t, dirEntries(t, dir))
}

func TestDownloadCorporateActionsStatusFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/companies-listing/corporate-filings-actions", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/api/corporate-actions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, dir := newTestClient(t, ts)
	_, err := c.DownloadCorporateActions(context.Background(), "INFY")
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindStatus, fe.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
	assert.Empty(t, dirEntries(t, dir))
}
