package services

import "errors"

// Relay service errors
var (
	// CSV validation errors
	ErrEmptyPayload = errors.New("empty csv payload")
	ErrInvalidCSV   = errors.New("invalid csv content")

	// Upstream errors
	ErrUpstreamUnavailable = errors.New("hosting service unavailable")
)
