package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbukum/llmkit/httpclient"
	"github.com/kbukum/llmkit/llm"
)

// httpTransport posts to {base_url}/{version}/models/{model}:generateContent.
type httpTransport struct {
	client *httpclient.Client
}

func newHTTPTransport(s llm.Settings) (*httpTransport, error) {
	hc, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: s.BaseURL,
		Timeout: s.Timeout,
		Auth:    httpclient.APIKeyAuth(s.APIKey, apiKeyHeader),
		TLS:     s.TLS,
		Headers: s.Headers,
	})
	if err != nil {
		return nil, err
	}
	return &httpTransport{client: hc}, nil
}

func (t *httpTransport) Send(ctx context.Context, payload any) ([]byte, error) {
	req, ok := payload.(*GenerateRequest)
	if !ok {
		return nil, llm.MarkBackend(fmt.Errorf("gemini: unsupported payload %T", payload))
	}
	resp, err := t.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   generatePath(req.Model),
		Body:   req,
	})
	if err != nil {
		return nil, llm.HTTPError(err)
	}
	return resp.Body, nil
}

func (t *httpTransport) Close(ctx context.Context) error {
	return t.client.Close(ctx)
}

func generatePath(model string) string {
	return fmt.Sprintf("/%s/models/%s:generateContent", APIVersion, url.PathEscape(model))
}
