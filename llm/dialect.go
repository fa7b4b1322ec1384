package llm

// Dialect maps the canonical request onto one vendor's wire format.
//
// Implementations must be stateless and safe for concurrent use.
type Dialect interface {
	// Vendor returns the human-readable vendor name used in error
	// messages, e.g. "OpenAI".
	Vendor() string

	// BuildRequest returns the vendor payload for req. It must be
	// deterministic and must signal JSON output mode if and only if
	// req.Structured() is true.
	BuildRequest(s Settings, req Request) any

	// ExtractText pulls the generated text out of a raw response body.
	// A body that does not have the expected shape yields a *ShapeError.
	ExtractText(body []byte) (string, error)
}

// ShapeError reports a response that did not match the vendor's known
// structure. Reason is a fixed description and never contains response data.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "unexpected response shape: " + e.Reason
}

// NewShapeError creates a ShapeError with a fixed reason.
func NewShapeError(reason string) *ShapeError {
	return &ShapeError{Reason: reason}
}
