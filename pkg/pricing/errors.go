package pricing

import (
	"fmt"
	"strings"
)

// UnknownModelError indicates that a requested model identifier is not
// present in the current configuration. The message enumerates the
// configured model identifiers so callers can see what is available.
//
// This error is always recoverable: the caller can fall back to a
// configured model or extend the configuration. It is never retried
// automatically.
type UnknownModelError struct {
	// Model is the requested model identifier.
	Model string

	// Available lists the currently configured model identifiers.
	Available []string
}

// Error implements the error interface.
func (e *UnknownModelError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown model %q: no models are configured", e.Model)
	}
	return fmt.Sprintf("unknown model %q: available models are %s",
		e.Model, strings.Join(e.Available, ", "))
}
