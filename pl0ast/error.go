package pl0ast

import "fmt"

// InternalInvariantError reports a malformed tree reaching a pass that
// relies on parser or optimizer guarantees. It is raised with panic.
type InternalInvariantError struct {
	Message string
}

func (e *InternalInvariantError) Error() string {
	return "internal invariant violated: " + e.Message
}

func Invariantf(format string, args ...any) *InternalInvariantError {
	return &InternalInvariantError{
		Message: fmt.Sprintf(format, args...),
	}
}
