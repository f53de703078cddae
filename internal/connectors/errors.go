package connectors

import (
	"errors"
	"fmt"
)

// TransientError marks a source failure worth retrying: rate limiting,
// server-side errors and network failures. The fetch orchestrator retries
// these with backoff before giving up.
type TransientError struct {
	Source     string
	StatusCode int // 0 for network-level failures
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: transient source error (HTTP %d): %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: transient source error: %v", e.Source, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a source failure that must not be retried, such as
// a bad request or failed authentication.
type PermanentError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s: permanent source error (HTTP %d): %v", e.Source, e.StatusCode, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanent reports whether err is a non-retryable source error.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// classifyHTTPStatus turns a non-2xx response into the matching error kind.
// 429 and 5xx are transient, every other 4xx is permanent.
func classifyHTTPStatus(source string, status int, body string) error {
	err := fmt.Errorf("unexpected response: %s", body)
	if status == 429 || status >= 500 {
		return &TransientError{Source: source, StatusCode: status, Err: err}
	}
	return &PermanentError{Source: source, StatusCode: status, Err: err}
}

// wrapNetworkError classifies a transport-level failure as transient.
func wrapNetworkError(source string, err error) error {
	return &TransientError{Source: source, Err: err}
}
