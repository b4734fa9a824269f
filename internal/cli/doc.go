// Package cli wires the pipeline together behind the gavel command tree:
// config loading and validation, context gathering, backend selection, and
// result reporting with stable exit codes.
package cli
