// Package security holds transport security settings for outbound
// connections to LLM backends.
//
//	cfg := security.TLSConfig{CAFile: "/etc/llmkit/ca.pem"}
//	tlsConfig, err := cfg.Build()
package security
