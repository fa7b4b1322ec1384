package gemini

import (
	"encoding/json"

	"github.com/kbukum/llmkit/llm"
)

// GenerateRequest is the generateContent payload built by Dialect. Model
// travels in the URL path, not the body.
type GenerateRequest struct {
	Model            string           `json:"-"`
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// Content is one turn of the conversation.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a text fragment of a Content.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig carries sampling options and the output MIME type.
type GenerationConfig struct {
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Dialect maps requests onto the generateContent API.
type Dialect struct{}

var _ llm.Dialect = Dialect{}

// Vendor returns "Gemini".
func (Dialect) Vendor() string { return Vendor }

// BuildRequest returns a *GenerateRequest. JSON mode sets
// responseMimeType to application/json.
func (Dialect) BuildRequest(s llm.Settings, req llm.Request) any {
	r := &GenerateRequest{
		Model:    s.Model,
		Contents: []Content{{Role: "user", Parts: []Part{{Text: req.Prompt}}}},
		GenerationConfig: GenerationConfig{
			MaxOutputTokens: s.MaxOutputTokens,
			Temperature:     s.Temperature,
			TopP:            s.TopP,
		},
	}
	if req.Structured() {
		r.GenerationConfig.ResponseMIMEType = jsonMIMEType
	}
	return r
}

// ExtractText reads candidates[0].content.parts[0].text.
func (Dialect) ExtractText(body []byte) (string, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", llm.NewShapeError("response is not a generateContent object")
	}
	if len(resp.Candidates) == 0 {
		return "", llm.NewShapeError("response has no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", llm.NewShapeError("first candidate has no content parts")
	}
	if content.Parts[0].Text == nil {
		return "", llm.NewShapeError("first content part has no text")
	}
	return *content.Parts[0].Text, nil
}
