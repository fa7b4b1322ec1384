// Package openai implements an llm provider for the OpenAI chat
// completions API, over the official SDK or raw HTTP.
package openai

import (
	"github.com/kbukum/llmkit/llm"
	"github.com/kbukum/llmkit/provider"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"
	// Vendor is used in error messages.
	Vendor = "OpenAI"
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"
)

// New validates cfg and builds a client. No network I/O happens here.
func New(cfg map[string]any, opts ...llm.Option) (*llm.Client, error) {
	s, err := parseSettings(cfg)
	if err != nil {
		return nil, err
	}
	var tr llm.Transport
	switch s.Transport {
	case llm.TransportHTTP:
		tr, err = newHTTPTransport(s)
	default:
		tr, err = newSDKTransport(s)
	}
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
	return llm.ParseSettings(Vendor, cfg, llm.Settings{BaseURL: DefaultBaseURL})
}

// Factory returns a provider.Factory that creates OpenAI clients from a
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

// Register adds the OpenAI factory to reg. Calling it again is a no-op.
func Register(reg *provider.Registry[llm.Provider], opts ...llm.Option) {
	if reg.Has(ProviderName) {
		return
	}
	reg.RegisterFactory(ProviderName, Factory(opts...))
}
