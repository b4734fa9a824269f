package review

import (
	"context"
	"fmt"

	"github.com/gavel-dev/gavel/internal/providers"
)

// Backend produces a review from an assembled prompt. Implementations either
// call models directly through the provider chain or delegate to a remote
// agent session.
type Backend interface {
	Review(ctx context.Context, system, prompt string) (text string, model string, err error)
}

// Publisher delivers finished review text to the pull request.
type Publisher interface {
	Publish(ctx context.Context, review, modelUsed string) (int, error)
}

// DirectBackend runs the prompt through the model fallback chain.
type DirectBackend struct {
	Invoker *providers.Invoker
	Chain   []string
}

// Review implements Backend.
func (d *DirectBackend) Review(ctx context.Context, system, prompt string) (string, string, error) {
	text, model, _, err := d.Invoker.Invoke(ctx, system, prompt, d.Chain)
	return text, model, err
}

// Options configures one engine run.
type Options struct {
	MaxContextChars int
	Backend         Backend
	Publisher       Publisher
}

// Result summarizes a completed run.
type Result struct {
	ModelUsed         string
	SnapshotTruncated bool
	PromptChars       int
	CommentsPosted    int
}

// Run executes the pipeline: budget the context, assemble the prompt, obtain
// the review, publish it. Budgeting and assembly cannot fail; any error comes
// from the backend or the publisher and is returned with the partial Result.
func Run(ctx context.Context, req Request, opts Options) (*Result, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("no review backend configured")
	}

	budgeted := BudgetContext(req.Snapshot, req.Diff, req.Conversation, opts.MaxContextChars)
	prompt := Assemble(budgeted, req.Mode, req.Directive)

	result := &Result{
		SnapshotTruncated: budgeted.Truncated,
		PromptChars:       len(prompt),
	}

	text, model, err := opts.Backend.Review(ctx, SystemPrompt(), prompt)
	if err != nil {
		return result, fmt.Errorf("obtaining review: %w", err)
	}
	result.ModelUsed = model

	if opts.Publisher != nil {
		n, err := opts.Publisher.Publish(ctx, text, model)
		result.CommentsPosted = n
		if err != nil {
			return result, fmt.Errorf("publishing review: %w", err)
		}
	}
	return result, nil
}
