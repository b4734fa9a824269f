package publish

import (
	"context"
	"fmt"
	"time"
)

// decorationHeadroom reserves room in each comment for the part header and
// attribution footer added around the chunked body.
const decorationHeadroom = 256

// Poster posts a single comment to a pull request thread.
type Poster interface {
	PostIssueComment(ctx context.Context, owner, repo string, prNumber int, body string) error
}

// Error reports which chunk failed to post. Earlier chunks stay published;
// there is no rollback.
type Error struct {
	ChunkIndex int
	Total      int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("posting review part %d/%d: %v", e.ChunkIndex+1, e.Total, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Publisher posts review text to a pull request, splitting it into multiple
// comments when it exceeds the per-comment size limit.
type Publisher struct {
	poster   Poster
	owner    string
	repo     string
	prNumber int
	maxChars int
	delay    time.Duration
	// mode tags the attribution footer (e.g. "automatic", "directed").
	mode  string
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPublisher creates a Publisher. maxChars is the per-comment ceiling for
// the review body; it should sit comfortably under the platform's hard limit
// so decorations never push a comment over.
func NewPublisher(poster Poster, owner, repo string, prNumber, maxChars int, delay time.Duration, mode string) *Publisher {
	return &Publisher{
		poster:   poster,
		owner:    owner,
		repo:     repo,
		prNumber: prNumber,
		maxChars: maxChars,
		delay:    delay,
		mode:     mode,
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
	}
}

// Publish posts the review as one or more comments, in order, pausing
// between posts to stay clear of abuse-rate limits. It returns the number of
// comments successfully posted. On failure the error is an *Error naming the
// chunk that failed; comments already posted are left in place.
func (p *Publisher) Publish(ctx context.Context, review, modelUsed string) (int, error) {
	budget := p.maxChars - decorationHeadroom
	if budget <= 0 {
		budget = p.maxChars
	}
	chunks := Chunk(review, budget)
	if len(chunks) == 0 {
		return 0, nil
	}

	total := len(chunks)
	for i, chunk := range chunks {
		body := decorate(chunk, i, total, modelUsed, p.mode)
		if err := p.poster.PostIssueComment(ctx, p.owner, p.repo, p.prNumber, body); err != nil {
			return i, &Error{ChunkIndex: i, Total: total, Err: err}
		}
		if i < total-1 && p.delay > 0 {
			if err := p.sleep(ctx, p.delay); err != nil {
				return i + 1, err
			}
		}
	}
	return total, nil
}

// decorate wraps a chunk with its part header and, on the final chunk, the
// attribution footer. Single-chunk reviews get no part header.
func decorate(chunk string, index, total int, modelUsed, mode string) string {
	body := chunk
	if total > 1 {
		body = fmt.Sprintf("**Review part %d/%d**\n\n%s", index+1, total, body)
	}
	if index == total-1 && modelUsed != "" {
		kind := "review"
		if mode != "" {
			kind = mode + " review"
		}
		body += fmt.Sprintf("\n\n---\n*Automated %s by %s*", kind, modelUsed)
	}
	return body
}
