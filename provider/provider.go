package provider

import (
	"context"
	"errors"
)

// Provider is the base interface all providers must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider instance from configuration.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// RequestResponse is a provider that takes one input and returns one output.
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Closeable is implemented by providers holding resources that need
// explicit release. Manager.Close calls it.
type Closeable interface {
	Close(ctx context.Context) error
}

// KindedError is implemented by errors that carry a stable category name.
// Middlewares use it to label logs, spans and metrics.
type KindedError interface {
	error
	ErrorKind() string
}

// ErrorKind returns the category of err, "error" for uncategorized errors
// and "" for nil.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var k KindedError
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return "error"
}
