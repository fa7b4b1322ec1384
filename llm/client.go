package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/llmkit/logger"
	"github.com/kbukum/llmkit/observability"
	"github.com/kbukum/llmkit/provider"
)

// Client is a provider built from Settings, a Dialect and a Transport.
// It holds no mutable state and is safe for concurrent use when its
// Transport is.
type Client struct {
	name      string
	settings  Settings
	dialect   Dialect
	transport Transport
	log       *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient assembles a client. settings must come from ParseSettings.
func NewClient(name string, settings Settings, dialect Dialect, transport Transport, opts ...Option) (*Client, error) {
	if dialect == nil {
		return nil, ConfigError(name, "dialect is required", nil)
	}
	if transport == nil {
		return nil, ConfigError(dialect.Vendor(), "transport is required", nil)
	}
	settings.Headers = maps.Clone(settings.Headers)
	c := &Client{
		name:      name,
		settings:  settings,
		dialect:   dialect,
		transport: transport,
		log:       logger.Get("llm"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(map[string]interface{}{
		logger.FieldProvider: name,
		logger.FieldVendor:   dialect.Vendor(),
		logger.FieldModel:    settings.Model,
	})
	return c, nil
}

// Name returns the registered provider name.
func (c *Client) Name() string { return c.name }

// Vendor returns the dialect's vendor name.
func (c *Client) Vendor() string { return c.dialect.Vendor() }

// Settings returns a copy of the resolved settings.
func (c *Client) Settings() Settings {
	s := c.settings
	s.Headers = maps.Clone(c.settings.Headers)
	return s
}

// IsAvailable reports whether the backend can take requests. Transports
// that cannot probe cheaply are assumed available.
func (c *Client) IsAvailable(ctx context.Context) bool {
	if p, ok := c.transport.(interface {
		IsAvailable(ctx context.Context) bool
	}); ok {
		return p.IsAvailable(ctx)
	}
	return true
}

// Close releases the transport if it holds resources.
func (c *Client) Close(ctx context.Context) error {
	if cl, ok := c.transport.(provider.Closeable); ok {
		return cl.Close(ctx)
	}
	return nil
}

// BuildRequest returns the vendor payload Generate would send for req.
func (c *Client) BuildRequest(req Request) any {
	return c.dialect.BuildRequest(c.settings, req)
}

// Generate sends prompt to the backend. A non-nil schema requests JSON
// output and the result then carries the decoded value.
func (c *Client) Generate(ctx context.Context, prompt string, schema any) (Result, error) {
	return c.Execute(ctx, Request{Prompt: prompt, ResponseSchema: schema})
}

// Execute performs exactly one transport call for req and classifies any
// failure into an *Error.
func (c *Client) Execute(ctx context.Context, req Request) (Result, error) {
	requestID := uuid.NewString()
	structured := req.Structured()
	observability.SetSpanAttribute(ctx, observability.AttrRequestID, requestID)
	observability.SetSpanAttribute(ctx, observability.AttrVendor, c.dialect.Vendor())
	observability.SetSpanAttribute(ctx, observability.AttrModel, c.settings.Model)
	observability.SetSpanAttribute(ctx, observability.AttrStructured, structured)

	start := time.Now()
	res, err := c.execute(ctx, req)

	fields := map[string]interface{}{
		logger.FieldRequestID: requestID,
		logger.FieldDuration:  time.Since(start).Milliseconds(),
		"structured":          structured,
	}
	if err != nil {
		fields[logger.FieldKind] = KindOf(err).String()
		c.log.Debug("generate failed", fields)
		return Result{}, err
	}
	c.log.Debug("generate ok", fields)
	return res, nil
}

func (c *Client) execute(ctx context.Context, req Request) (Result, error) {
	payload := c.dialect.BuildRequest(c.settings, req)

	callCtx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	body, err := c.transport.Send(callCtx, payload)
	if err != nil {
		return Result{}, c.classify(callCtx, err)
	}

	text, err := c.dialect.ExtractText(body)
	if err != nil {
		return Result{}, &Error{
			Kind:     KindUnexpectedResponse,
			Provider: c.name,
			Message:  shapeMessage(c.dialect.Vendor()),
			Cause:    err,
		}
	}

	if !req.Structured() {
		return TextResult(text), nil
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return Result{}, &Error{
			Kind:     KindResponseParse,
			Provider: c.name,
			Message:  "Error JSON parsing response (first 100 chars): " + Truncate(text, parsePreviewLen),
			Cause:    err,
		}
	}
	return StructuredResult(value), nil
}

type timeouter interface {
	Timeout() bool
}

func (c *Client) classify(ctx context.Context, err error) *Error {
	cause := sanitize(err.Error(), c.settings.APIKey)

	var t timeouter
	var shape *ShapeError
	switch {
	case stderrors.Is(err, context.DeadlineExceeded),
		stderrors.As(err, &t) && t.Timeout(),
		stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Provider: c.name, Message: "Request timed out: " + cause, Cause: err}
	case stderrors.As(err, &shape):
		return &Error{Kind: KindUnexpectedResponse, Provider: c.name, Message: shapeMessage(c.dialect.Vendor()), Cause: shape}
	case stderrors.Is(err, ErrBackend):
		return &Error{
			Kind:     KindBackend,
			Provider: c.name,
			Message:  fmt.Sprintf("%s API error: %s", c.dialect.Vendor(), cause),
			Cause:    err,
		}
	default:
		return &Error{Kind: KindTransport, Provider: c.name, Message: "Error making request: " + cause, Cause: err}
	}
}
