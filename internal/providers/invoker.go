package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Generation parameters for review calls: bounded output, low randomness.
// Review is an evaluative task; consistency beats creativity.
const (
	reviewMaxTokens   = 4000
	reviewTemperature = 0.1
)

// ErrChainExhausted is returned when every model in the chain failed with a
// recoverable error.
var ErrChainExhausted = errors.New("all models in chain failed")

// Attempt records the outcome of one model in the chain.
type Attempt struct {
	ModelID  string
	Outcome  Outcome
	Response string
	Err      error
}

// Factory builds a Generator for a model identifier. Tests swap this out.
type Factory func(modelID string) (Generator, error)

// Invoker tries an ordered model chain until one call succeeds.
type Invoker struct {
	factory Factory
}

// NewInvoker creates an Invoker backed by the real provider factory.
func NewInvoker(creds Credentials) *Invoker {
	return &Invoker{factory: func(modelID string) (Generator, error) {
		return New(modelID, creds)
	}}
}

// NewInvokerWithFactory creates an Invoker with a custom factory.
func NewInvokerWithFactory(factory Factory) *Invoker {
	return &Invoker{factory: factory}
}

// Invoke sends the prompt to each model in order. Quota and transient
// failures advance to the next model; a fatal failure aborts the chain
// immediately since a different model cannot fix a broken request. The full
// attempt log is always returned.
func (inv *Invoker) Invoke(ctx context.Context, system, prompt string, chain []string) (string, string, []Attempt, error) {
	if len(chain) == 0 {
		return "", "", nil, fmt.Errorf("model chain is empty")
	}

	attempts := make([]Attempt, 0, len(chain))
	for _, modelID := range chain {
		gen, err := inv.factory(modelID)
		if err != nil {
			// A model we cannot even construct is a configuration problem.
			attempts = append(attempts, Attempt{ModelID: modelID, Outcome: OutcomeFatal, Err: err})
			return "", "", attempts, fmt.Errorf("model %s: %w", modelID, err)
		}

		resp, err := gen.Generate(ctx, Request{
			System:      system,
			Prompt:      prompt,
			MaxTokens:   reviewMaxTokens,
			Temperature: reviewTemperature,
		})
		outcome := ClassifyErr(err)
		attempts = append(attempts, Attempt{
			ModelID:  modelID,
			Outcome:  outcome,
			Response: resp.Content,
			Err:      err,
		})

		switch outcome {
		case OutcomeSuccess:
			return resp.Content, modelID, attempts, nil
		case OutcomeFatal:
			return "", "", attempts, fmt.Errorf("model %s: %w", modelID, err)
		default:
			// quota_exceeded or transient_error: fall through to next model
		}
		if ctx.Err() != nil {
			return "", "", attempts, ctx.Err()
		}
	}

	return "", "", attempts, fmt.Errorf("%w: %s", ErrChainExhausted, summarize(attempts))
}

func summarize(attempts []Attempt) string {
	parts := make([]string, len(attempts))
	for i, a := range attempts {
		parts[i] = fmt.Sprintf("%s=%s", a.ModelID, a.Outcome)
	}
	return strings.Join(parts, ", ")
}
