package agent

import (
	"context"
	"fmt"
)

// ReviewBackend runs a review as a managed remote session: resolve the
// source, start the session, then poll its activity stream for the result.
// It satisfies the review engine's Backend interface.
type ReviewBackend struct {
	Client *Client
	Poller *Poller
	// Source is the logical repository identifier to resolve against the
	// backend's registered sources.
	Source string
	Branch string
	Title  string
}

// Review executes the full session lifecycle and returns the extracted
// review text. The returned model string names the session for attribution.
func (b *ReviewBackend) Review(ctx context.Context, system, prompt string) (string, string, error) {
	src, err := b.Client.FindSource(ctx, b.Source)
	if err != nil {
		return "", "", err
	}

	full := prompt
	if system != "" {
		full = system + "\n\n" + prompt
	}

	sess, err := b.Client.CreateSession(ctx, CreateSessionRequest{
		Prompt:         full,
		Source:         src,
		StartingBranch: b.Branch,
		Title:          b.Title,
	})
	if err != nil {
		return "", "", err
	}

	text, err := b.Poller.Await(ctx, sess.ID)
	if err != nil {
		return "", "", err
	}
	return text, fmt.Sprintf("agent session %s", sess.ID), nil
}
