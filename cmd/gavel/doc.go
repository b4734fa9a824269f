// Gavel reviews pull requests with AI models and posts the result back to
// the PR conversation.
//
// It gathers the PR diff, the comment thread, and a snapshot of the
// repository's tracked files, fits them into a context budget, and runs the
// assembled prompt through either a direct model fallback chain or a remote
// agent session.
//
// Usage:
//
//	gavel review --repo acme/widgets --pr 42
//	gavel review --backend agent --branch feature/login
//	gavel review --mode directed --directive "focus on concurrency"
//
// Configuration merges defaults, .gavel.toml, environment variables, and
// flags, in that order. Credentials come from the environment only.
package main
