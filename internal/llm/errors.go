package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies API failures for retry decisions.
type ErrorKind int

const (
	// KindTransient covers rate limits and temporary server overload.
	KindTransient ErrorKind = iota
	// KindAuth covers invalid or revoked credentials.
	KindAuth
	// KindConfig covers unknown models and malformed requests.
	KindConfig
	// KindParse covers responses that came back 200 but could not be decoded.
	KindParse
	// KindOther covers everything else.
	KindOther
)

// APIError is a classified failure from the Gemini API.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini API error: %s", e.Message)
}

// classifyStatus maps an HTTP status code to an error kind.
func classifyStatus(status int) ErrorKind {
	switch status {
	case 429, 503:
		return KindTransient
	case 401, 403:
		return KindAuth
	case 400, 404:
		return KindConfig
	default:
		return KindOther
	}
}

// IsRetryable reports whether the error is transient or a parse failure,
// both of which are worth another attempt against the same budget.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindTransient || apiErr.Kind == KindParse
	}
	// Network-level failures with no HTTP response are treated as transient.
	return true
}
