// Package provider is a small generic framework for named, swappable
// backends.
//
// A Registry maps names to factories that build a provider from a raw
// option map. A Manager owns the initialized instances and tracks a default.
// Registration is always explicit:
//
//	reg := provider.NewRegistry[llm.Provider]()
//	reg.RegisterFactory("openai", openai.Factory())
//	mgr := provider.NewManager(reg)
//	if err := mgr.Initialize("openai", opts); err != nil { ... }
//
// # Middleware
//
// Middleware[I, O] wraps a RequestResponse provider without changing its
// semantics. Use Chain to compose them; the first is outermost:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("llm.generate"),
//	)(p)
//
// Middlewares never retry, cache or hold per-call state.
package provider
