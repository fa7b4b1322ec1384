package gemini

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/url"

	"google.golang.org/genai"

	"github.com/kbukum/llmkit/httpclient"
	"github.com/kbukum/llmkit/llm"
	"github.com/kbukum/llmkit/util"
)

// sdkTransport calls Models.GenerateContent on the official client and
// re-encodes the typed response so the dialect reads one format.
type sdkTransport struct {
	client *genai.Client
	http   *httpclient.Client
}

func newSDKTransport(ctx context.Context, s llm.Settings) (*sdkTransport, error) {
	hc, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		Timeout: s.Timeout,
		TLS:     s.TLS,
	})
	if err != nil {
		return nil, err
	}
	headers := make(map[string][]string, len(s.Headers))
	for k, v := range s.Headers {
		headers[k] = []string{v}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     s.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc.HTTPClient(),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    s.BaseURL + "/",
			APIVersion: APIVersion,
			Headers:    headers,
		},
	})
	if err != nil {
		return nil, err
	}
	return &sdkTransport{client: client, http: hc}, nil
}

func (t *sdkTransport) Send(ctx context.Context, payload any) ([]byte, error) {
	req, ok := payload.(*GenerateRequest)
	if !ok {
		return nil, llm.MarkBackend(fmt.Errorf("gemini: unsupported payload %T", payload))
	}

	contents := make([]*genai.Content, 0, len(req.Contents))
	for _, c := range req.Contents {
		parts := make([]*genai.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			parts = append(parts, &genai.Part{Text: p.Text})
		}
		contents = append(contents, &genai.Content{Role: c.Role, Parts: parts})
	}
	gc := req.GenerationConfig
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(gc.MaxOutputTokens),
		Temperature:      util.Ptr(float32(gc.Temperature)),
		TopP:             util.Ptr(float32(gc.TopP)),
		ResponseMIMEType: gc.ResponseMIMEType,
	}

	resp, err := t.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, sdkError(err)
	}
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, llm.MarkBackend(fmt.Errorf("gemini: encode response: %w", err))
	}
	return body, nil
}

func (t *sdkTransport) Close(ctx context.Context) error {
	return t.http.Close(ctx)
}

func sdkError(err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return &llm.StatusError{StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if stderrors.As(err, &apiErrPtr) {
		return &llm.StatusError{StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	if shapeErr := llm.DecodeError(err); shapeErr != nil {
		return shapeErr
	}
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case stderrors.Is(err, context.DeadlineExceeded),
		stderrors.Is(err, context.Canceled),
		stderrors.As(err, &urlErr),
		stderrors.As(err, &netErr):
		return err
	}
	return llm.MarkBackend(err)
}
