// Package providers implements the upstream side of the gateway: the
// provider registry and the shared OpenAI-compatible HTTP client.
//
// Every upstream (Groq, Together, Cerebras, SambaNova, OpenRouter, or any
// other OpenAI-compatible endpoint) is described by the same Descriptor;
// there is no per-provider adapter type. A single Client speaks the
// chat-completions protocol against whichever descriptor routing selects,
// in unary or streaming form.
//
// Gateway-only request fields (provider, cache) are stripped before the
// request leaves the process, and the stream flag is forced to match the
// invocation mode.
package providers
