package review

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeBackend struct {
	gotSystem string
	gotPrompt string
	text      string
	model     string
	err       error
}

func (f *fakeBackend) Review(ctx context.Context, system, prompt string) (string, string, error) {
	f.gotSystem = system
	f.gotPrompt = prompt
	return f.text, f.model, f.err
}

type fakePublisher struct {
	gotReview string
	gotModel  string
	n         int
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, review, modelUsed string) (int, error) {
	f.gotReview = review
	f.gotModel = modelUsed
	return f.n, f.err
}

func TestRun(t *testing.T) {
	backend := &fakeBackend{text: "## Summary\nFine.", model: "gemini-2.0-flash"}
	publisher := &fakePublisher{n: 1}

	req := Request{
		Snapshot:     "=== main.go ===\npackage main\n",
		Diff:         "diff --git a/main.go b/main.go\n",
		Conversation: "No prior conversation.",
		Mode:         ModeAutomatic,
	}
	result, err := Run(context.Background(), req, Options{
		MaxContextChars: 100000,
		Backend:         backend,
		Publisher:       publisher,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.ModelUsed != "gemini-2.0-flash" {
		t.Errorf("ModelUsed = %q", result.ModelUsed)
	}
	if result.SnapshotTruncated {
		t.Error("small context should not be truncated")
	}
	if result.CommentsPosted != 1 {
		t.Errorf("CommentsPosted = %d, want 1", result.CommentsPosted)
	}
	if backend.gotSystem != SystemPrompt() {
		t.Error("backend should receive the standard system prompt")
	}
	if !strings.Contains(backend.gotPrompt, req.Diff) {
		t.Error("prompt should carry the diff")
	}
	if publisher.gotReview != "## Summary\nFine." || publisher.gotModel != "gemini-2.0-flash" {
		t.Errorf("publisher got (%q, %q)", publisher.gotReview, publisher.gotModel)
	}
}

func TestRunTruncatesSnapshotOnly(t *testing.T) {
	backend := &fakeBackend{text: "ok", model: "m"}
	req := Request{
		Snapshot:     strings.Repeat("s", 10000),
		Diff:         "diff --git a/f b/f\n",
		Conversation: "thread",
		Mode:         ModeAutomatic,
	}
	result, err := Run(context.Background(), req, Options{
		MaxContextChars: 2000,
		Backend:         backend,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !result.SnapshotTruncated {
		t.Error("expected snapshot truncation")
	}
	if !strings.Contains(backend.gotPrompt, req.Diff) {
		t.Error("diff must survive budgeting untouched")
	}
	if !strings.Contains(backend.gotPrompt, "thread") {
		t.Error("conversation must survive budgeting untouched")
	}
}

func TestRunBackendFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("all models exhausted")}
	publisher := &fakePublisher{}

	result, err := Run(context.Background(), Request{Diff: "d"}, Options{
		MaxContextChars: 1000,
		Backend:         backend,
		Publisher:       publisher,
	})
	if err == nil {
		t.Fatal("expected backend error")
	}
	if result == nil || result.CommentsPosted != 0 {
		t.Error("nothing should be published when the backend fails")
	}
	if publisher.gotReview != "" {
		t.Error("publisher must not be called on backend failure")
	}
}

func TestRunPublishFailure(t *testing.T) {
	backend := &fakeBackend{text: "review", model: "m"}
	publisher := &fakePublisher{n: 1, err: errors.New("rate limited")}

	result, err := Run(context.Background(), Request{Diff: "d"}, Options{
		MaxContextChars: 1000,
		Backend:         backend,
		Publisher:       publisher,
	})
	if err == nil || !strings.Contains(err.Error(), "publishing review") {
		t.Fatalf("error = %v, want publish failure", err)
	}
	if result.CommentsPosted != 1 {
		t.Errorf("CommentsPosted = %d, want the partial count", result.CommentsPosted)
	}
	if result.ModelUsed != "m" {
		t.Error("ModelUsed should be recorded before publish")
	}
}

func TestRunRequiresBackend(t *testing.T) {
	if _, err := Run(context.Background(), Request{}, Options{MaxContextChars: 100}); err == nil {
		t.Fatal("expected error when no backend configured")
	}
}
