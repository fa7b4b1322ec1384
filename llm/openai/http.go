package openai

import (
	"context"
	"net/http"

	"github.com/kbukum/llmkit/httpclient"
	"github.com/kbukum/llmkit/llm"
)

const chatPath = "/chat/completions"

// httpTransport posts the payload to {base_url}/chat/completions.
type httpTransport struct {
	client *httpclient.Client
}

func newHTTPTransport(s llm.Settings) (*httpTransport, error) {
	hc, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: s.BaseURL,
		Timeout: s.Timeout,
		Auth:    httpclient.BearerAuth(s.APIKey),
		TLS:     s.TLS,
		Headers: s.Headers,
	})
	if err != nil {
		return nil, err
	}
	return &httpTransport{client: hc}, nil
}

func (t *httpTransport) Send(ctx context.Context, payload any) ([]byte, error) {
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

func (t *httpTransport) Close(ctx context.Context) error {
	return t.client.Close(ctx)
}
