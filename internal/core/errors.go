package core

import (
	"errors"
	"fmt"
)

// TransportError indicates the prediction service could not be reached at
// all: connection refused, DNS failure, or a request that was never
// answered. Only this kind of failure triggers the offline fallback.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: service unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError indicates the service answered but the response was unusable:
// a non-success status or a malformed body. It does not trigger the offline
// fallback.
type ServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: service returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: unusable service response: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is (or wraps) a TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsServiceError reports whether err is (or wraps) a ServiceError
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
