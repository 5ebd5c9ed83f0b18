package nse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadBhavcopyURLDerivation(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		path string
	}{
		{
			name: "single digit day and month zero padded",
			date: time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC),
			path: "/content/historical/EQUITIES/2023/JAN/cm_bhavcopy_05012023.zip",
		},
		{
			name: "december",
			date: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
			path: "/content/historical/EQUITIES/2024/DEC/cm_bhavcopy_31122024.zip",
		},
		{
			name: "mid month",
			date: time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC),
			path: "/content/historical/EQUITIES/2025/JUN/cm_bhavcopy_17062025.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte("zipbytes"))
			}))
			defer ts.Close()

			c, _ := newTestClient(t, ts)
			_, err := c.DownloadBhavcopy(context.Background(), tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.path, gotPath)
		})
	}
}

func TestDownloadBhavcopyWritesResponseVerbatim(t *testing.T) {
	payload := []byte("PK\x03\x04 pretend zip contents")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer ts.Close()

	c, dir := newTestClient(t, ts)
	date := time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)

	path, err := c.DownloadBhavcopy(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cm_bhavcopy_08032024.zip"), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestDownloadBhavcopyStatusFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c, dir := newTestClient(t, ts)
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	path, err := c.DownloadBhavcopy(context.Background(), date)
	require.Error(t, err)
	assert.Empty(t, path)
	assert.Equal(t, KindStatus, KindFor(err))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, opBhavcopy, fe.Op)

	assert.Empty(t, dirEntries(t, dir), "no file should be written on failure")
}

func TestDownloadBhavcopyTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	c, dir := newTestClient(t, ts)
	date := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)

	_, err := c.DownloadBhavcopy(context.Background(), date)
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindFor(err))
	assert.Empty(t, dirEntries(t, dir))
}
