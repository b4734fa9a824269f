// Package providers implements the Generator interface for each supported
// model vendor and the ordered-chain Invoker that drives fallback.
//
// Supported vendors: Google (Gemini), Anthropic (Claude), and OpenAI (GPT).
// The vendor is inferred from the model identifier prefix, so a chain like
// "gemini-2.0-flash,claude-sonnet-4" mixes vendors freely.
//
// Every Generate error carries one of three classifications: quota_exceeded
// and transient_error advance the chain to the next model, fatal_error
// (auth failure, malformed request) aborts the whole chain. Constructors take
// API keys explicitly; nothing in this package reads the environment.
package providers
