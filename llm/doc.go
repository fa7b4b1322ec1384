// Package llm provides a uniform contract for calling third-party LLM
// text-generation backends.
//
// A [Client] composes three parts:
//   - [Settings]: the validated, immutable provider configuration
//   - [Dialect]: maps a [Request] onto a vendor payload and extracts the
//     generated text from the vendor response
//   - [Transport]: performs exactly one network call (vendor SDK or raw HTTP)
//
// Every failure is returned as an [*Error] carrying one [Kind] and a
// bounded message with a stable prefix, so callers can match on either.
//
// # Usage
//
// Vendor packages (llm/openai, llm/gemini, llm/ollama) build clients from a
// generic option map and register factories explicitly:
//
//	reg := llm.NewRegistry()
//	openai.Register(reg)
//
//	p, err := reg.Create("openai", map[string]any{
//	    "api_key": os.Getenv("OPENAI_API_KEY"),
//	    "model":   "gpt-4o-mini",
//	})
//
//	res, err := p.Generate(ctx, "Summarize this log line", nil)
//
// Passing a non-nil schema switches the backend into JSON output mode and
// the result carries the decoded value instead of text:
//
//	res, err := p.Generate(ctx, prompt, map[string]any{"type": "object"})
//	var out Summary
//	err = llm.Decode(res, &out)
//
// # Writing a Dialect
//
// A dialect must be pure: BuildRequest is deterministic for a given
// (Settings, Request) pair and ExtractText never embeds response data in
// its errors. See [Dialect] and [ShapeError].
package llm
