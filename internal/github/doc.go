// Package github is a minimal GitHub REST client for the review pipeline:
// pull request diffs, issue comment threads, and comment posting. It covers
// only the endpoints the pipeline uses rather than wrapping the full API.
package github
