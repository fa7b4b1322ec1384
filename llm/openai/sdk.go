package openai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/url"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/kbukum/llmkit/httpclient"
	"github.com/kbukum/llmkit/llm"
)

// sdkTransport sends chat completions through the official client. SDK
// retries are disabled so every Send is a single attempt.
type sdkTransport struct {
	client sdk.Client
	http   *httpclient.Client
}

func newSDKTransport(s llm.Settings) (*sdkTransport, error) {
	hc, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		Timeout: s.Timeout,
		TLS:     s.TLS,
	})
	if err != nil {
		return nil, err
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithBaseURL(s.BaseURL),
		option.WithHTTPClient(hc.HTTPClient()),
		option.WithRequestTimeout(s.Timeout),
		option.WithMaxRetries(0),
	}
	for k, v := range s.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	return &sdkTransport{client: sdk.NewClient(opts...), http: hc}, nil
}

func (t *sdkTransport) Send(ctx context.Context, payload any) ([]byte, error) {
	req, ok := payload.(*ChatRequest)
	if !ok {
		return nil, llm.MarkBackend(fmt.Errorf("openai: unsupported payload %T", payload))
	}

	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(req.Model),
		Messages:    make([]sdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
		MaxTokens:   sdk.Int(int64(req.MaxTokens)),
		Temperature: sdk.Float(req.Temperature),
		TopP:        sdk.Float(req.TopP),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, sdk.SystemMessage(m.Content))
		default:
			params.Messages = append(params.Messages, sdk.UserMessage(m.Content))
		}
	}
	if req.ResponseFormat != nil {
		params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := t.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, sdkError(err)
	}
	return []byte(resp.RawJSON()), nil
}

func (t *sdkTransport) Close(ctx context.Context) error {
	return t.http.Close(ctx)
}

// sdkError keeps API and network errors as transport failures, reports
// undecodable replies as shape errors and tags everything else as a
// backend failure.
func sdkError(err error) error {
	var apiErr *sdk.Error
	if stderrors.As(err, &apiErr) {
		return &llm.StatusError{StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
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
