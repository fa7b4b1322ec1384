// Package errors provides the shared structured error type used across llmkit.
// It carries machine-readable codes, HTTP status mapping and retryable
// detection so that callers embedding a provider in a service can surface
// failures uniformly.
package errors
