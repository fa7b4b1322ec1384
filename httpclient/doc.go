// Package httpclient is the HTTP transport used by llmkit's raw-HTTP
// provider backends.
//
// A Client wraps one *http.Client built at construction and reused for
// every call. Do makes exactly one attempt and classifies failures into
// *Error values:
//
//	c, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.openai.com/v1",
//	    Timeout: 60 * time.Second,
//	    Auth:    httpclient.BearerAuth(apiKey),
//	})
//	resp, err := httpclient.Post[map[string]any](c, ctx, "/chat/completions", payload)
//
// Error messages never contain the response body; callers that need it
// read Error.Body explicitly.
package httpclient
