package dashboard

import "fmt"

// APIError represents a failed dashboard API operation: a non-2xx response
// or exhausted retries. It carries the last HTTP status observed so the
// caller can see why the final attempt failed.
//
// APIError never propagates out of the SDK's call path; the call wrapper
// catches it, logs it and moves on.
type APIError struct {
	// Operation is the API operation that failed (e.g. "post reconciliation log").
	Operation string

	// StatusCode is the last HTTP status code (0 for transport-level failures).
	StatusCode int

	// Status is the last HTTP status text.
	Status string

	// Attempts is the total number of transport attempts made.
	Attempts int

	// Cause is the underlying error for transport-level failures.
	Cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("dashboard %s failed after %d attempts: status %d %s",
			e.Operation, e.Attempts, e.StatusCode, e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("dashboard %s failed after %d attempts: %v", e.Operation, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("dashboard %s failed after %d attempts", e.Operation, e.Attempts)
}

// Unwrap returns the underlying error for error chain support.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// StatusError represents a single non-2xx HTTP response. The retrying
// client converts the last one into an APIError once retries are exhausted.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the HTTP status text.
	Status string

	// Body is the response body, if any.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("dashboard returned status %d %s: %s", e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("dashboard returned status %d %s", e.StatusCode, e.Status)
}

// ConnectionError represents a failure to establish the streaming
// configuration subscription. It is handled internally by falling back to
// polling and is never surfaced to the application.
type ConnectionError struct {
	// Endpoint is the dashboard endpoint that could not be reached.
	Endpoint string

	// Message describes the connection failure.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dashboard connection to %q failed: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("dashboard connection to %q failed: %s", e.Endpoint, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}
