// Package version exposes build information for llmkit binaries and the
// User-Agent sent to LLM backends.
//
// Values are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/llmkit/version.Version=1.0.0"
package version
