package llm

import (
	"context"

	"github.com/kbukum/llmkit/provider"
)

// Provider is the uniform generation contract every vendor implements.
type Provider interface {
	provider.RequestResponse[Request, Result]
	// Generate is shorthand for Execute(ctx, Request{prompt, schema}).
	Generate(ctx context.Context, prompt string, schema any) (Result, error)
}

// Factory creates a Provider from a generic option map.
type Factory = provider.Factory[Provider]

// NewRegistry creates an empty provider registry.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// NewManager creates a provider manager backed by reg.
func NewManager(reg *provider.Registry[Provider]) *provider.Manager[Provider] {
	return provider.NewManager(reg)
}

// Wrap applies middlewares to p and returns a Provider whose Generate goes
// through the wrapped Execute.
func Wrap(p Provider, middlewares ...provider.Middleware[Request, Result]) Provider {
	if len(middlewares) == 0 {
		return p
	}
	return &wrapped{
		RequestResponse: provider.Chain(middlewares...)(p),
		inner:           p,
	}
}

type wrapped struct {
	provider.RequestResponse[Request, Result]
	inner Provider
}

func (w *wrapped) Generate(ctx context.Context, prompt string, schema any) (Result, error) {
	return w.Execute(ctx, Request{Prompt: prompt, ResponseSchema: schema})
}

// Close releases the wrapped provider.
func (w *wrapped) Close(ctx context.Context) error {
	if c, ok := w.inner.(provider.Closeable); ok {
		return c.Close(ctx)
	}
	return nil
}
