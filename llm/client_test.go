package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/llmkit/logger"
	"github.com/kbukum/llmkit/provider"
)

// --- mock dialect and transport ---

type mockDialect struct{}

func (mockDialect) Vendor() string { return "Mock" }

func (mockDialect) BuildRequest(s Settings, req Request) any {
	p := map[string]any{
		"model":      s.Model,
		"prompt":     req.Prompt,
		"max_tokens": s.MaxOutputTokens,
	}
	if req.Structured() {
		p["format"] = "json"
	}
	return p
}

func (mockDialect) ExtractText(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", NewShapeError("body is not a JSON object")
	}
	if len(resp.Choices) == 0 {
		return "", NewShapeError("no choices")
	}
	if resp.Choices[0].Message.Content == nil {
		return "", NewShapeError("missing content")
	}
	return *resp.Choices[0].Message.Content, nil
}

type mockTransport struct {
	mu        sync.Mutex
	calls     int
	payloads  []any
	deadlines []time.Duration
	body      []byte
	err       error
}

func (m *mockTransport) Send(ctx context.Context, payload any) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.payloads = append(m.payloads, payload)
	if dl, ok := ctx.Deadline(); ok {
		m.deadlines = append(m.deadlines, time.Until(dl))
	}
	return m.body, m.err
}

func choicesBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func newTestClient(t *testing.T, cfg map[string]any, tr Transport) *Client {
	t.Helper()
	s, err := ParseSettings("Mock", cfg, Settings{})
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	c, err := NewClient("mock", s, mockDialect{}, tr, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func baseConfig() map[string]any {
	return map[string]any{"api_key": "k", "model": "m"}
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return false }

var _ net.Error = timeoutNetError{}

// --- scenarios ---

func TestGenerate_TextResult(t *testing.T) {
	tr := &mockTransport{body: choicesBody(t, "This is a test response")}
	c := newTestClient(t, baseConfig(), tr)

	res, err := c.Generate(context.Background(), "test prompt", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsStructured() || res.Text != "This is a test response" {
		t.Errorf("got %+v, want text result", res)
	}
	if tr.calls != 1 {
		t.Errorf("calls = %d, want 1", tr.calls)
	}
}

func TestGenerate_StructuredResult(t *testing.T) {
	tr := &mockTransport{body: choicesBody(t, `{"answer":"test answer"}`)}
	c := newTestClient(t, baseConfig(), tr)

	schema := map[string]any{"type": "object"}
	res, err := c.Generate(context.Background(), "test prompt", schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsStructured() {
		t.Fatalf("expected structured result, got %s", res.Kind)
	}
	want := map[string]any{"answer": "test answer"}
	if !reflect.DeepEqual(res.Value, want) {
		t.Errorf("value = %#v, want %#v", res.Value, want)
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	tr := &mockTransport{body: []byte(`{"choices":[],"debug":"raw-dump-marker"}`)}
	c := newTestClient(t, baseConfig(), tr)

	_, err := c.Generate(context.Background(), "p", nil)
	if !IsKind(err, KindUnexpectedResponse) {
		t.Fatalf("kind = %v, want unexpected_response (err=%v)", KindOf(err), err)
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "Unexpected response structure from Mock API") {
		t.Errorf("message = %q", msg)
	}
	if strings.Contains(msg, "raw-dump-marker") || strings.Contains(msg, "choices") {
		t.Errorf("message leaks response body: %q", msg)
	}
}

func TestGenerate_InvalidJSONInStructuredMode(t *testing.T) {
	tr := &mockTransport{body: choicesBody(t, "not valid json")}
	c := newTestClient(t, baseConfig(), tr)

	_, err := c.Generate(context.Background(), "p", map[string]any{})
	if !IsKind(err, KindResponseParse) {
		t.Fatalf("kind = %v, want response_parse (err=%v)", KindOf(err), err)
	}
	want := "Error JSON parsing response (first 100 chars): not valid json"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("expected wrapped *json.SyntaxError, got %T", errors.Unwrap(err))
	}
}

func TestGenerate_TimeoutHonorsConfiguredValue(t *testing.T) {
	tests := []struct {
		name    string
		timeout any
		want    time.Duration
	}{
		{"default", nil, DefaultTimeout},
		{"int seconds", 5, 5 * time.Second},
		{"float seconds", 2.5, 2500 * time.Millisecond},
		{"numeric string", "5", 5 * time.Second},
		{"duration string", "5s", 5 * time.Second},
		{"duration", 7 * time.Second, 7 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			if tt.timeout != nil {
				cfg["timeout"] = tt.timeout
			}
			tr := &mockTransport{err: context.DeadlineExceeded}
			c := newTestClient(t, cfg, tr)

			_, err := c.Generate(context.Background(), "p", nil)
			if !IsKind(err, KindTimeout) {
				t.Fatalf("kind = %v, want timeout (err=%v)", KindOf(err), err)
			}
			if !strings.HasPrefix(err.Error(), "Request timed out: ") {
				t.Errorf("message = %q", err.Error())
			}
			if len(tr.deadlines) != 1 {
				t.Fatalf("expected one deadline-bound call, got %d", len(tr.deadlines))
			}
			got := tr.deadlines[0]
			if got > tt.want || got < tt.want-time.Second {
				t.Errorf("deadline = %v, want about %v", got, tt.want)
			}
		})
	}
}

// --- properties ---

func TestParseSettings_FailFast(t *testing.T) {
	tests := []struct {
		name    string
		cfg     map[string]any
		want    []string
		notWant []string
	}{
		{"missing api_key", map[string]any{"model": "m"}, []string{"api_key is required"}, []string{"model is required"}},
		{"blank api_key", map[string]any{"api_key": "  ", "model": "m"}, []string{"api_key is required"}, []string{"model is required"}},
		{"missing model", map[string]any{"api_key": "k"}, []string{"model is required"}, []string{"api_key is required"}},
		{"missing both", map[string]any{}, []string{"api_key is required", "model is required"}, nil},
		{"nil config", nil, []string{"api_key is required", "model is required"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings("Mock", tt.cfg, Settings{})
			if !IsKind(err, KindConfiguration) {
				t.Fatalf("kind = %v, want configuration (err=%v)", KindOf(err), err)
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("message %q missing %q", err.Error(), w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(err.Error(), nw) {
					t.Errorf("message %q should not contain %q", err.Error(), nw)
				}
			}
		})
	}
}

func TestBuildRequest_Deterministic(t *testing.T) {
	c := newTestClient(t, baseConfig(), &mockTransport{})
	for _, schema := range []any{nil, map[string]any{"type": "object"}} {
		req := Request{Prompt: "same prompt", ResponseSchema: schema}
		a, _ := json.Marshal(c.BuildRequest(req))
		b, _ := json.Marshal(c.BuildRequest(req))
		if string(a) != string(b) {
			t.Errorf("payloads differ:\n%s\n%s", a, b)
		}
	}
}

func TestModeExclusivity(t *testing.T) {
	tr := &mockTransport{body: choicesBody(t, `{"looks":"like json"}`)}
	c := newTestClient(t, baseConfig(), tr)

	res, err := c.Generate(context.Background(), "p", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsStructured() || res.Text != `{"looks":"like json"}` {
		t.Errorf("schema absent must yield raw text, got %+v", res)
	}
	if _, ok := tr.payloads[0].(map[string]any)["format"]; ok {
		t.Error("payload signals JSON mode without a schema")
	}

	if _, err := c.Generate(context.Background(), "p", map[string]any{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.payloads[1].(map[string]any)["format"] != "json" {
		t.Error("payload does not signal JSON mode with a schema")
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		err    error
		schema any
		want   Kind
	}{
		{"deadline", nil, context.DeadlineExceeded, nil, KindTimeout},
		{"net timeout", nil, timeoutNetError{}, nil, KindTimeout},
		{"connection refused", nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, nil, KindTransport},
		{"caller canceled", nil, context.Canceled, nil, KindTransport},
		{"backend", nil, MarkBackend(errors.New("sdk exploded")), nil, KindBackend},
		{"not json body", []byte("<html>"), nil, nil, KindUnexpectedResponse},
		{"undecodable reply in transport", nil, DecodeError(&json.SyntaxError{Offset: 1}), nil, KindUnexpectedResponse},
		{"null content", []byte(`{"choices":[{"message":{"content":null}}]}`), nil, nil, KindUnexpectedResponse},
		{"bad structured json", choicesBody(t, "{oops"), nil, map[string]any{}, KindResponseParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &mockTransport{body: tt.body, err: tt.err}
			c := newTestClient(t, baseConfig(), tr)
			_, err := c.Generate(context.Background(), "p", tt.schema)
			if got := KindOf(err); got != tt.want {
				t.Errorf("kind = %v, want %v (err=%v)", got, tt.want, err)
			}
			if tr.calls != 1 {
				t.Errorf("calls = %d, want exactly 1", tr.calls)
			}
		})
	}
}

func TestErrorPrefixes(t *testing.T) {
	tests := []struct {
		err    error
		prefix string
	}{
		{errors.New("dial tcp: connection refused"), "Error making request: dial tcp: connection refused"},
		{MarkBackend(errors.New("boom")), "Mock API error: boom"},
		{context.DeadlineExceeded, "Request timed out: context deadline exceeded"},
	}
	for _, tt := range tests {
		c := newTestClient(t, baseConfig(), &mockTransport{err: tt.err})
		_, err := c.Generate(context.Background(), "p", nil)
		if err == nil || err.Error() != tt.prefix {
			t.Errorf("got %v, want %q", err, tt.prefix)
		}
	}
}

func TestParseError_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 250)
	c := newTestClient(t, baseConfig(), &mockTransport{body: choicesBody(t, long)})

	_, err := c.Generate(context.Background(), "p", map[string]any{})
	if !IsKind(err, KindResponseParse) {
		t.Fatalf("kind = %v, want response_parse", KindOf(err))
	}
	want := "Error JSON parsing response (first 100 chars): " + strings.Repeat("x", 100) + "..."
	if err.Error() != want {
		t.Errorf("message = %q", err.Error())
	}
	if strings.Contains(err.Error(), strings.Repeat("x", 101)) {
		t.Error("message contains more than 100 characters of the response")
	}
}

func TestParseError_ExactlyHundredCharsNotMarked(t *testing.T) {
	text := strings.Repeat("y", 100)
	c := newTestClient(t, baseConfig(), &mockTransport{body: choicesBody(t, text)})

	_, err := c.Generate(context.Background(), "p", map[string]any{})
	if strings.HasSuffix(err.Error(), "...") {
		t.Errorf("text of exactly 100 chars must not be marked truncated: %q", err.Error())
	}
}

// --- secrets and concurrency ---

func TestTransportError_RedactsAPIKey(t *testing.T) {
	cfg := map[string]any{"api_key": "sk-secret-123", "model": "m"}
	tr := &mockTransport{err: errors.New("401 for key sk-secret-123")}
	c := newTestClient(t, cfg, tr)

	_, err := c.Generate(context.Background(), "p", nil)
	if strings.Contains(err.Error(), "sk-secret-123") {
		t.Fatalf("api key leaked: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "[REDACTED]") {
		t.Errorf("expected redaction marker in %q", err.Error())
	}
}

func TestTransportError_BoundsCause(t *testing.T) {
	tr := &mockTransport{err: errors.New(strings.Repeat("e", 2000))}
	c := newTestClient(t, baseConfig(), tr)

	_, err := c.Generate(context.Background(), "p", nil)
	if n := len(err.Error()); n > len("Error making request: ")+maxCauseRunes+len(truncateMarker) {
		t.Errorf("message length %d exceeds bound", n)
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	tr := &mockTransport{body: choicesBody(t, "ok")}
	c := newTestClient(t, baseConfig(), tr)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Generate(context.Background(), "p", nil); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if tr.calls != 16 {
		t.Errorf("calls = %d, want 16", tr.calls)
	}
}

func TestNewClient_RequiresCollaborators(t *testing.T) {
	s, _ := ParseSettings("Mock", baseConfig(), Settings{})
	if _, err := NewClient("mock", s, nil, &mockTransport{}); !IsKind(err, KindConfiguration) {
		t.Errorf("nil dialect: got %v", err)
	}
	if _, err := NewClient("mock", s, mockDialect{}, nil); !IsKind(err, KindConfiguration) {
		t.Errorf("nil transport: got %v", err)
	}
}

func TestClient_SettingsIsCopy(t *testing.T) {
	cfg := baseConfig()
	cfg["headers"] = map[string]any{"X-Trace": "1"}
	c := newTestClient(t, cfg, &mockTransport{})

	s := c.Settings()
	s.Headers["X-Trace"] = "changed"
	if c.Settings().Headers["X-Trace"] != "1" {
		t.Error("Settings() exposed internal map")
	}
}

type probeTransport struct {
	mockTransport
	available bool
	closed    bool
}

func (p *probeTransport) IsAvailable(context.Context) bool { return p.available }
func (p *probeTransport) Close(context.Context) error {
	p.closed = true
	return nil
}

func TestClient_DelegatesAvailabilityAndClose(t *testing.T) {
	plain := newTestClient(t, baseConfig(), &mockTransport{})
	if !plain.IsAvailable(context.Background()) {
		t.Error("transport without probe should be reported available")
	}
	if err := plain.Close(context.Background()); err != nil {
		t.Errorf("Close: %v", err)
	}

	tr := &probeTransport{available: false}
	c := newTestClient(t, baseConfig(), tr)
	if c.IsAvailable(context.Background()) {
		t.Error("expected probe result false")
	}
	if err := c.Close(context.Background()); err != nil || !tr.closed {
		t.Errorf("Close not delegated: err=%v closed=%v", err, tr.closed)
	}
}

func TestWrap_GenerateGoesThroughMiddleware(t *testing.T) {
	tr := &mockTransport{body: choicesBody(t, "ok")}
	c := newTestClient(t, baseConfig(), tr)

	var seen []Request
	record := func(inner provider.RequestResponse[Request, Result]) provider.RequestResponse[Request, Result] {
		return &recordingRR{RequestResponse: inner, seen: &seen}
	}
	p := Wrap(c, provider.WithLogging[Request, Result](logger.Nop()), record)

	res, err := p.Generate(context.Background(), "hello", nil)
	if err != nil || res.Text != "ok" {
		t.Fatalf("got %+v, %v", res, err)
	}
	if len(seen) != 1 || seen[0].Prompt != "hello" {
		t.Errorf("middleware saw %+v", seen)
	}
	if p.Name() != "mock" {
		t.Errorf("Name = %q", p.Name())
	}
}

type recordingRR struct {
	provider.RequestResponse[Request, Result]
	seen *[]Request
}

func (r *recordingRR) Execute(ctx context.Context, req Request) (Result, error) {
	*r.seen = append(*r.seen, req)
	return r.RequestResponse.Execute(ctx, req)
}
