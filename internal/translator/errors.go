package translator

import (
	"errors"
	"fmt"
)

// ErrMissingTargetLang is returned before any request is made when the target
// language tag is empty.
var ErrMissingTargetLang = errors.New("target language is required")

// TransportError is returned when the upstream answers with a non-success
// status. It carries the raw response so callers can inspect what the server
// actually said (rate limiting and blocking both surface here).
type TransportError struct {
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("deepl returned status %d: %s", e.StatusCode, string(e.Body))
}

// DecodeError is returned when a 200 response body does not match the
// expected reply shape.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode deepl response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
