// llmux is an OpenAI-compatible gateway that multiplexes chat-completion
// traffic across upstream LLM providers.
//
// It exposes a single OpenAI-shaped API and routes each request to one of
// the configured providers (Groq, Together, Cerebras, SambaNova, OpenRouter,
// or any other OpenAI-compatible endpoint), with model aliasing,
// cross-provider fallback, response caching, and an OpenResponses
// translation layer.
//
// Usage:
//
//	# Start the gateway
//	llmux serve --config llmux.yaml
//
//	# Check a configuration file without starting
//	llmux validate --config llmux.yaml
//
//	# Show version information
//	llmux version
package main

func main() {
	Execute()
}
