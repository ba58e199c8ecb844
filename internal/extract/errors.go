package extract

import "fmt"

// MaxPageSpan is the largest page range a single extraction call may
// request. It bounds both LLM token cost and cache-miss latency per call.
const MaxPageSpan = 10

// NotFoundError reports an unknown document id. Tool surfaces flatten it
// into a prose message; the HTTP layer maps it to 404.
type NotFoundError struct {
	DocID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s not found", e.DocID)
}

// ValidationError reports a rejected page range or query. The message is
// written for an agent caller, which is expected to adjust its request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
