package fetch

import (
	"errors"
	"fmt"
)

// Fetch failure modes. Timeout and cancellation both abort the same
// in-flight transfer; the controller tracks which trigger fired so callers
// can tell them apart with errors.Is.
var (
	// ErrTimedOut means the controller's own transfer timer expired.
	ErrTimedOut = errors.New("fetch timed out")

	// ErrCancelled means the caller-supplied cancellation fired.
	ErrCancelled = errors.New("fetch cancelled")
)

// TransportError reports a non-success HTTP response or a failure below the
// HTTP layer (DNS, dial, broken connection).
type TransportError struct {
	// StatusCode is the HTTP status, or zero when the failure happened
	// before a response arrived
	StatusCode int

	// Message describes the failure
	Message string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed: server returned %s", e.Message)
	}
	return fmt.Sprintf("fetch failed: %s", e.Message)
}
