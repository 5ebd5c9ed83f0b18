package nse

import (
	"errors"
	"fmt"
)

// Kind classifies a download failure.
type Kind string

const (
	// KindTransport covers request construction and network failures
	// where no usable HTTP response was received, including fetch
	// deadline expiry.
	KindTransport Kind = "transport"

	// KindStatus marks a response with a non-200 status code.
	KindStatus Kind = "status"

	// KindPayload marks a 200 response whose body could not be decoded
	// or lacked the expected structure.
	KindPayload Kind = "payload"

	// KindEmpty marks a well-formed 200 response that carried no
	// records. Expected on holidays and quiet symbols.
	KindEmpty Kind = "empty"
)

// FetchError describes a failed download operation. Op names the
// operation, URL the upstream endpoint that was hit. StatusCode is set
// only for KindStatus; Err carries the underlying cause when one
// exists.
type FetchError struct {
	Op         string
	URL        string
	Kind       Kind
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e == nil {
		return "unknown fetch error"
	}
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s: unexpected status %d from %s", e.Op, e.StatusCode, e.URL)
	case KindEmpty:
		return fmt.Sprintf("%s: no records returned from %s", e.Op, e.URL)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.URL, e.Err)
		}
		return fmt.Sprintf("%s: request to %s failed", e.Op, e.URL)
	}
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindFor returns the failure kind of err, or the empty string when
// err is not a FetchError.
func KindFor(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
