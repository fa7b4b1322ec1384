package llm

// Request is one generation call.
type Request struct {
	Prompt string `json:"prompt"`
	// ResponseSchema switches the call into structured (JSON) mode when
	// non-nil. Its content is only a hint for the backend and is not
	// enforced here.
	ResponseSchema any `json:"response_schema,omitempty"`
}

// Structured reports whether the request asks for JSON output.
func (r Request) Structured() bool {
	return r.ResponseSchema != nil
}

// ResultKind tags which variant a Result holds.
type ResultKind int

const (
	// ResultText holds the raw generated text.
	ResultText ResultKind = iota
	// ResultStructured holds the value decoded from the generated JSON.
	ResultStructured
)

// String returns the kind name.
func (k ResultKind) String() string {
	switch k {
	case ResultText:
		return "text"
	case ResultStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Result is the outcome of a successful generation. Exactly one of Text or
// Value is meaningful, selected by Kind.
type Result struct {
	Kind  ResultKind
	Text  string
	Value any
}

// TextResult wraps generated text.
func TextResult(text string) Result {
	return Result{Kind: ResultText, Text: text}
}

// StructuredResult wraps a decoded JSON value.
func StructuredResult(value any) Result {
	return Result{Kind: ResultStructured, Value: value}
}

// IsStructured reports whether r holds a decoded JSON value.
func (r Result) IsStructured() bool {
	return r.Kind == ResultStructured
}
