// Package review is the core pipeline: it budgets raw pull request context
// against a character ceiling, assembles the delimited review prompt, runs it
// through a backend, and hands the result to a publisher.
//
// Budgeting is lossy only for the repository snapshot. The diff and the
// conversation thread are never truncated: reviewing the wrong diff is worse
// than reviewing with less background.
package review
