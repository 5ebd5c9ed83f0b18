package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsecli/internal/infrastructure"
)

// stubHost records calls and plays back canned results.
type stubHost struct {
	uploadCalls int
	uploaded    []byte
	uploadURL   string
	uploadErr   error

	fetchCalls int
	fetchRows  []map[string]interface{}
	fetchErr   error
}

func (s *stubHost) Upload(ctx context.Context, csvData []byte) (string, error) {
	s.uploadCalls++
	s.uploaded = csvData
	return s.uploadURL, s.uploadErr
}

func (s *stubHost) Fetch(ctx context.Context) ([]map[string]interface{}, error) {
	s.fetchCalls++
	return s.fetchRows, s.fetchErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateCSV(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "nil payload", data: nil, wantErr: ErrEmptyPayload},
		{name: "empty payload", data: []byte(""), wantErr: ErrEmptyPayload},
		{name: "whitespace only", data: []byte("  \n\t "), wantErr: ErrEmptyPayload},
		{name: "single header line", data: []byte("symbol,price\n"), wantErr: nil},
		{name: "header and rows", data: []byte("symbol,price\nTCS,4100.25\nINFY,1890\n"), wantErr: nil},
		{name: "ragged rows accepted", data: []byte("a,b,c\n1,2\n"), wantErr: nil},
		{name: "missing trailing newline", data: []byte("a,b\n1,2"), wantErr: nil},
		{name: "bare quote", data: []byte("a,\"b\nbroken"), wantErr: ErrInvalidCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCSV(tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUpdateDataForwardsValidCSV(t *testing.T) {
	host := &stubHost{uploadURL: "https://cdn.example.com/data.csv"}
	svc := NewRelayService(host, nil, discardLogger())

	csvBody := []byte("symbol,price\nTCS,4100.25\n")
	url, err := svc.UpdateData(context.Background(), csvBody)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/data.csv", url)
	assert.Equal(t, 1, host.uploadCalls)
	assert.Equal(t, csvBody, host.uploaded, "payload forwarded verbatim")
}

func TestUpdateDataRejectsBeforeOutboundCall(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty body", data: []byte(""), wantErr: ErrEmptyPayload},
		{name: "non-csv content", data: []byte("x,\"y\nz"), wantErr: ErrInvalidCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &stubHost{uploadURL: "https://cdn.example.com/data.csv"}
			svc := NewRelayService(host, nil, discardLogger())

			_, err := svc.UpdateData(context.Background(), tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, host.uploadCalls, "invalid payloads must not reach the hosting service")
		})
	}
}

func TestUpdateDataUpstreamFailure(t *testing.T) {
	host := &stubHost{uploadErr: errors.New("status 503")}
	svc := NewRelayService(host, nil, discardLogger())

	_, err := svc.UpdateData(context.Background(), []byte("a,b\n1,2\n"))
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestGetDataPassesRowsThrough(t *testing.T) {
	rows := []map[string]interface{}{
		{"symbol": "TCS", "price": 4100.25},
		{"symbol": "INFY", "price": 1890.0},
	}
	host := &stubHost{fetchRows: rows}
	svc := NewRelayService(host, nil, discardLogger())

	got, err := svc.GetData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rows, got)
	assert.Equal(t, 1, host.fetchCalls)
}

func TestGetDataUpstreamFailure(t *testing.T) {
	host := &stubHost{fetchErr: errors.New("connection reset")}
	svc := NewRelayService(host, nil, discardLogger())

	_, err := svc.GetData(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestRelayMetricsOutcomes(t *testing.T) {
	metrics := infrastructure.NewMetrics()
	host := &stubHost{uploadURL: "https://cdn.example.com/data.csv"}
	svc := NewRelayService(host, metrics, discardLogger())

	_, err := svc.UpdateData(context.Background(), []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	_, _ = svc.UpdateData(context.Background(), []byte(""))
	host.uploadErr = errors.New("boom")
	_, _ = svc.UpdateData(context.Background(), []byte("a,b\n1,2\n"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RelayUploadsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RelayUploadsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RelayUploadsTotal.WithLabelValues("error")))

	_, _ = svc.GetData(context.Background())
	host.fetchErr = errors.New("boom")
	_, _ = svc.GetData(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RelayFetchesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RelayFetchesTotal.WithLabelValues("error")))
}
