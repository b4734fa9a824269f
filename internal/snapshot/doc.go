// Package snapshot collects a repository's tracked text files into a single
// block of prompt context.
package snapshot
