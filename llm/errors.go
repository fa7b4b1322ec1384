package llm

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kbukum/llmkit/errors"
	"github.com/kbukum/llmkit/util"
)

// Kind is the closed set of failure categories a provider reports.
type Kind int

const (
	// KindConfiguration is a construction-time validation failure.
	KindConfiguration Kind = iota + 1
	// KindTimeout means the backend did not answer within the configured timeout.
	KindTimeout
	// KindTransport covers connection failures, non-2xx replies and
	// vendor-declared API errors.
	KindTransport
	// KindUnexpectedResponse means the reply did not have the expected shape.
	KindUnexpectedResponse
	// KindResponseParse means structured mode was requested and the
	// generated text was not valid JSON.
	KindResponseParse
	// KindBackend is any other failure raised by the vendor client.
	KindBackend
)

// String returns the kind name used in logs, spans and metrics.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindUnexpectedResponse:
		return "unexpected_response"
	case KindResponseParse:
		return "response_parse"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

const (
	maxCauseRunes   = 512
	parsePreviewLen = 100
	truncateMarker  = "..."
	redacted        = "[REDACTED]"
	minRedactLen = 4
)

// Error is a classified provider failure. Error() returns only Message,
// which never contains the API key or an unbounded payload.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorKind returns the kind name. It satisfies provider.KindedError.
func (e *Error) ErrorKind() string {
	return e.Kind.String()
}

// Retryable reports whether a caller may reasonably retry. The library
// itself never retries.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindTransport
}

// AppError maps e onto the shared application error type.
func (e *Error) AppError() *errors.AppError {
	var appErr *errors.AppError
	switch e.Kind {
	case KindConfiguration:
		appErr = errors.Validation(e.Message)
	case KindTimeout:
		appErr = errors.Timeout(e.Provider, e.Message)
	case KindTransport:
		appErr = errors.ConnectionFailed(e.Provider, e.Message)
	case KindUnexpectedResponse, KindResponseParse, KindBackend:
		appErr = errors.ExternalServiceError(e.Provider, e.Message)
	default:
		appErr = errors.Internal(e)
	}
	return appErr.WithDetail("kind", e.Kind.String())
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ErrBackend marks a transport failure as a vendor-client error that is
// neither a timeout nor a network or API error. Transports tag such
// failures with MarkBackend.
var ErrBackend = stderrors.New("llm: backend error")

type backendError struct {
	err error
}

func (b *backendError) Error() string        { return b.err.Error() }
func (b *backendError) Unwrap() error        { return b.err }
func (b *backendError) Is(target error) bool { return target == ErrBackend }

// MarkBackend tags err so that the client classifies it as KindBackend.
func MarkBackend(err error) error {
	if err == nil {
		return nil
	}
	return &backendError{err: err}
}

// Truncate returns the first n runes of s followed by "..." when s is longer.
func Truncate(s string, n int) string {
	return util.Truncate(s, n, truncateMarker)
}

// sanitize redacts the API key from text and bounds its length. Keys
// shorter than minRedactLen are not redacted, so for them the key may
// appear in the returned text.
func sanitize(text, apiKey string) string {
	if len(apiKey) >= minRedactLen {
		text = strings.ReplaceAll(text, apiKey, redacted)
	}
	return Truncate(text, maxCauseRunes)
}

// ConfigError builds a KindConfiguration error. Vendor packages use it for
// failures while assembling their transport.
func ConfigError(vendor, detail string, cause error) *Error {
	return &Error{
		Kind:     KindConfiguration,
		Provider: vendor,
		Message:  fmt.Sprintf("invalid %s provider configuration: %s", vendor, detail),
		Cause:    cause,
	}
}

func shapeMessage(vendor string) string {
	return fmt.Sprintf("Unexpected response structure from %s API. Please check your model and API configuration.", vendor)
}
