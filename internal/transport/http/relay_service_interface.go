package http

import "context"

// RelayServiceInterface defines the relay operations handlers depend
// on. Using an interface allows for easy mocking in tests and
// decouples the HTTP layer from the service implementation.
type RelayServiceInterface interface {
	// UpdateData validates csvData and forwards it to the hosting
	// service, returning the public URL of the hosted dataset.
	UpdateData(ctx context.Context, csvData []byte) (string, error)

	// GetData returns the hosted dataset's rows unchanged.
	GetData(ctx context.Context) ([]map[string]interface{}, error)
}
