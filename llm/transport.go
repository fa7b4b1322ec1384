package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kbukum/llmkit/httpclient"
)

// Transport sends one vendor payload and returns the raw JSON response.
//
// Implementations must be safe for concurrent use, must make at most one
// attempt per call and must honor the deadline carried by ctx. A reply
// that cannot be decoded is reported as a *ShapeError. Failures that are
// neither timeouts nor network/API errors should be tagged with MarkBackend.
type Transport interface {
	Send(ctx context.Context, payload any) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, payload any) ([]byte, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, payload any) ([]byte, error) {
	return f(ctx, payload)
}

// StatusError is a non-2xx reply. Message is the vendor's own error
// message when one could be read; the raw body is never kept.
type StatusError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// HTTPError converts an httpclient status error into a *StatusError using
// the vendor error envelope in the body. Other errors are returned as is.
func HTTPError(err error) error {
	var hcErr *httpclient.Error
	if !stderrors.As(err, &hcErr) || hcErr.StatusCode == 0 {
		return err
	}
	return &StatusError{StatusCode: hcErr.StatusCode, Message: EnvelopeMessage(hcErr.Body), Err: err}
}

// DecodeError returns a *ShapeError when err comes from decoding a reply
// body that is not the JSON the client expected, and nil otherwise. The
// decoder's message is dropped since it can quote the body.
func DecodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		return NewShapeError("response body is not valid JSON")
	case stderrors.As(err, &typeErr):
		return NewShapeError("response body has unexpected field types")
	}
	return nil
}

// EnvelopeMessage reads the message out of the common error envelopes
// {"error":{"message":"..."}} and {"error":"..."}. It returns "" when the
// body has neither.
func EnvelopeMessage(body []byte) string {
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &env) != nil || len(env.Error) == 0 {
		return ""
	}
	var text string
	if json.Unmarshal(env.Error, &text) == nil {
		return strings.TrimSpace(text)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(env.Error, &obj) == nil {
		return strings.TrimSpace(obj.Message)
	}
	return ""
}
