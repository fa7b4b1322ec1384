package openai

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/kbukum/llmkit/llm"
)

func testSettings() llm.Settings {
	return llm.Settings{Model: "gpt-test", MaxOutputTokens: 2048, Temperature: 0.1, TopP: 0.1}
}

func TestBuildRequest_Text(t *testing.T) {
	got := Dialect{}.BuildRequest(testSettings(), llm.Request{Prompt: "hello"})
	want := &ChatRequest{
		Model:       "gpt-test",
		Messages:    []ChatMessage{{Role: "user", Content: "hello"}},
		MaxTokens:   2048,
		Temperature: 0.1,
		TopP:        0.1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	body, _ := json.Marshal(got)
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	if _, ok := raw["response_format"]; ok {
		t.Errorf("text request must not carry response_format: %s", body)
	}
}

func TestBuildRequest_Structured(t *testing.T) {
	got := Dialect{}.BuildRequest(testSettings(), llm.Request{Prompt: "p", ResponseSchema: map[string]any{"type": "object"}})
	body, _ := json.Marshal(got)
	want := `{"model":"gpt-test","messages":[{"role":"user","content":"p"}],"max_tokens":2048,"temperature":0.1,"top_p":0.1,"response_format":{"type":"json_object"}}`
	if string(body) != want {
		t.Errorf("payload:\n got %s\nwant %s", body, want)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"ok", `{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`, "hi", false},
		{"empty content", `{"choices":[{"message":{"content":""}}]}`, "", false},
		{"no choices", `{"choices":[]}`, "", true},
		{"missing choices", `{"id":"x"}`, "", true},
		{"null content", `{"choices":[{"message":{"content":null}}]}`, "", true},
		{"missing message", `{"choices":[{"index":0}]}`, "", true},
		{"non-string content", `{"choices":[{"message":{"content":42}}]}`, "", true},
		{"not json", `upstream error`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Dialect{}.ExtractText([]byte(tt.body))
			if tt.wantErr {
				var se *llm.ShapeError
				if !errors.As(err, &se) {
					t.Fatalf("expected *llm.ShapeError, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("got %q, %v", got, err)
			}
		})
	}
}
