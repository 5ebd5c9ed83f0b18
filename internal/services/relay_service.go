package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"nsecli/internal/infrastructure"
)

// HostClient is the slice of the hosting-service client the relay
// needs. Satisfied by *hostcsv.Client.
type HostClient interface {
	Upload(ctx context.Context, csvData []byte) (string, error)
	Fetch(ctx context.Context) ([]map[string]interface{}, error)
}

// RelayService validates inbound CSV payloads, forwards them to the
// hosting service, and reads the hosted dataset back. Validation
// happens locally before any outbound call so malformed input never
// reaches the hosting service.
type RelayService struct {
	host    HostClient
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewRelayService creates a relay service. metrics may be nil when
// recording is not wanted.
func NewRelayService(host HostClient, metrics *infrastructure.Metrics, logger *slog.Logger) *RelayService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelayService{
		host:    host,
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "relay_service"),
	}
}

// ValidateCSV applies the cheap local shape check: the payload must be
// non-empty and contain at least one parsable CSV record.
func ValidateCSV(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyPayload
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // accept ragged rows

	records := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		records++
	}
	if records == 0 {
		return ErrEmptyPayload
	}
	return nil
}

// UpdateData validates csvData and forwards it verbatim to the
// hosting service, returning the public URL of the hosted dataset.
func (s *RelayService) UpdateData(ctx context.Context, csvData []byte) (string, error) {
	if err := ValidateCSV(csvData); err != nil {
		s.recordUpload("rejected")
		s.logger.WarnContext(ctx, "CSV payload rejected",
			slog.String("reason", err.Error()),
			slog.Int("size_bytes", len(csvData)))
		return "", err
	}

	url, err := s.host.Upload(ctx, csvData)
	if err != nil {
		s.recordUpload("error")
		s.logger.ErrorContext(ctx, "CSV forward failed",
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	s.recordUpload("success")
	s.logger.InfoContext(ctx, "CSV forwarded to hosting service",
		slog.Int("size_bytes", len(csvData)),
		slog.String("hosted_url", url))
	return url, nil
}

// GetData returns the hosted dataset's rows unchanged.
func (s *RelayService) GetData(ctx context.Context) ([]map[string]interface{}, error) {
	rows, err := s.host.Fetch(ctx)
	if err != nil {
		s.recordFetch("error")
		s.logger.ErrorContext(ctx, "Dataset fetch failed",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	s.recordFetch("success")
	s.logger.DebugContext(ctx, "Dataset fetched",
		slog.Int("rows", len(rows)))
	return rows, nil
}

func (s *RelayService) recordUpload(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRelayUpload(outcome)
	}
}

func (s *RelayService) recordFetch(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRelayFetch(outcome)
	}
}
