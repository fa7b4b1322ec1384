package openai

import (
	"encoding/json"

	"github.com/kbukum/llmkit/llm"
)

// ChatRequest is the chat completions payload built by Dialect.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	TopP           float64         `json:"top_p"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage is one chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat selects the output mode.
type ResponseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the subset of a chat completion the dialect reads.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Dialect maps requests onto the chat completions API.
type Dialect struct{}

var _ llm.Dialect = Dialect{}

// Vendor returns "OpenAI".
func (Dialect) Vendor() string { return Vendor }

// BuildRequest returns a *ChatRequest. JSON mode is requested with
// response_format {"type":"json_object"} only when req carries a schema.
func (Dialect) BuildRequest(s llm.Settings, req llm.Request) any {
	r := &ChatRequest{
		Model:       s.Model,
		Messages:    []ChatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   s.MaxOutputTokens,
		Temperature: s.Temperature,
		TopP:        s.TopP,
	}
	if req.Structured() {
		r.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	return r
}

// ExtractText reads choices[0].message.content.
func (Dialect) ExtractText(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", llm.NewShapeError("response is not a chat completion object")
	}
	if len(resp.Choices) == 0 {
		return "", llm.NewShapeError("response has no choices")
	}
	content := resp.Choices[0].Message.Content
	if content == nil {
		return "", llm.NewShapeError("first choice has no message content")
	}
	return *content, nil
}
