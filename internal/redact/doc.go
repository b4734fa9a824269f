// Package redact strips secret-shaped strings from review context before it
// leaves the process. Detection is heuristic: API key assignments, bearer
// tokens, JWTs, private key blocks, and well-known provider token formats.
package redact
