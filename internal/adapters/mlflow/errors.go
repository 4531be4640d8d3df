package mlflow

import (
	"errors"
	"fmt"
)

// Sentinel kinds for model client errors. These allow errors.Is from callers.
var (
	ErrUnavailable     = errors.New("model unavailable")
	ErrInvalidResponse = errors.New("invalid model response")
	ErrInvalidURL      = errors.New("invalid serving url")
)

// StatusError is returned when the scoring server answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("model server returned status %d", e.Code)
	}
	return fmt.Sprintf("model server returned status %d: %s", e.Code, e.Body)
}
