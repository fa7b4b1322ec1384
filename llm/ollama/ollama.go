// Package ollama implements an llm provider for a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kbukum/llmkit/httpclient"
	"github.com/kbukum/llmkit/llm"
	"github.com/kbukum/llmkit/provider"
	"github.com/kbukum/llmkit/validation"
)

const (
	// ProviderName is the registered name for the Ollama provider.
	ProviderName = "ollama"
	// Vendor is used in error messages.
	Vendor = "Ollama"
	// DefaultBaseURL is the address of a local Ollama server.
	DefaultBaseURL = "http://localhost:11434"

	chatPath = "/api/chat"
	tagsPath = "/api/tags"
)

// --- internal Ollama API types ---

// ChatRequest is the /api/chat payload built by Dialect.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  Options       `json:"options"`
}

// ChatMessage is one chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are the sampling options Ollama accepts per request.
type Options struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Message *struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Dialect maps requests onto the /api/chat endpoint with streaming off.
type Dialect struct{}

var _ llm.Dialect = Dialect{}

// Vendor returns "Ollama".
func (Dialect) Vendor() string { return Vendor }

// BuildRequest returns a *ChatRequest. JSON mode sets format to "json".
func (Dialect) BuildRequest(s llm.Settings, req llm.Request) any {
	r := &ChatRequest{
		Model:    s.Model,
		Messages: []ChatMessage{{Role: "user", Content: req.Prompt}},
		Stream:   false,
		Options: Options{
			NumPredict:  s.MaxOutputTokens,
			Temperature: s.Temperature,
			TopP:        s.TopP,
		},
	}
	if req.Structured() {
		r.Format = "json"
	}
	return r
}

// ExtractText reads message.content.
func (Dialect) ExtractText(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", llm.NewShapeError("response is not a chat object")
	}
	if resp.Message == nil || resp.Message.Content == nil {
		return "", llm.NewShapeError("response has no message content")
	}
	return *resp.Message.Content, nil
}

// Transport posts chat requests to the Ollama server.
type Transport struct {
	client *httpclient.Client
}

// NewTransport builds the HTTP transport from resolved settings. The
// api_key, when set, is sent as a bearer token for authenticating proxies.
func NewTransport(s llm.Settings) (*Transport, error) {
	var auth *httpclient.AuthConfig
	if s.APIKey != "" {
		auth = httpclient.BearerAuth(s.APIKey)
	}
	hc, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: s.BaseURL,
		Timeout: s.Timeout,
		Auth:    auth,
		TLS:     s.TLS,
		Headers: s.Headers,
	})
	if err != nil {
		return nil, err
	}
	return &Transport{client: hc}, nil
}

// Send posts payload to /api/chat.
func (t *Transport) Send(ctx context.Context, payload any) ([]byte, error) {
	resp, err := t.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   chatPath,
		Body:   payload,
	})
	if err != nil {
		return nil, llm.HTTPError(err)
	}
	return resp.Body, nil
}

// IsAvailable checks if the Ollama server is reachable.
func (t *Transport) IsAvailable(ctx context.Context) bool {
	resp, err := httpclient.Get[tagsResponse](t.client, ctx, tagsPath)
	return err == nil && resp.StatusCode == http.StatusOK
}

// Close releases idle connections.
func (t *Transport) Close(ctx context.Context) error {
	return t.client.Close(ctx)
}

// New validates cfg and builds a client. No network I/O happens here.
func New(cfg map[string]any, opts ...llm.Option) (*llm.Client, error) {
	s, err := parseSettings(cfg)
	if err != nil {
		return nil, err
	}
	tr, err := NewTransport(s)
	if err != nil {
		return nil, llm.ConfigError(Vendor, err.Error(), err)
	}
	return llm.NewClient(ProviderName, s, Dialect{}, tr, opts...)
}

// NewWithTransport validates cfg and builds a client around tr.
func NewWithTransport(cfg map[string]any, tr llm.Transport, opts ...llm.Option) (*llm.Client, error) {
	s, err := parseSettings(cfg)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(ProviderName, s, Dialect{}, tr, opts...)
}

func parseSettings(cfg map[string]any) (llm.Settings, error) {
	s, err := llm.ParseSettings(Vendor, cfg,
		llm.Settings{BaseURL: DefaultBaseURL, Transport: llm.TransportHTTP},
		llm.WithOptionalAPIKey(),
	)
	if err != nil {
		return llm.Settings{}, err
	}
	if appErr := validation.New().OneOf("transport", s.Transport, []string{llm.TransportHTTP}).Validate(); appErr != nil {
		return llm.Settings{}, llm.ConfigError(Vendor, appErr.Message, appErr)
	}
	return s, nil
}

// Factory returns a provider.Factory that creates Ollama clients from a
// generic config map.
func Factory(opts ...llm.Option) llm.Factory {
	return func(cfg map[string]any) (llm.Provider, error) {
		c, err := New(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Register adds the Ollama factory to reg. Calling it again is a no-op.
func Register(reg *provider.Registry[llm.Provider], opts ...llm.Option) {
	if reg.Has(ProviderName) {
		return
	}
	reg.RegisterFactory(ProviderName, Factory(opts...))
}
